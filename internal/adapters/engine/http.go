// Package engine provides Calculator adapters for the external
// computation service, plus a deterministic mock for local runs.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/mkuleshov/pgdbot/internal/logging"
	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// HTTPCalculator talks to the engine's JSON API. Every failure mode,
// from transport errors to undecodable payloads, is folded into
// domain.ErrCalculation so the dialog layer has a single error kind to
// act on.
type HTTPCalculator struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures the HTTPCalculator.
type Option func(*HTTPCalculator)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPCalculator) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the underlying client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPCalculator) {
		c.client = client
	}
}

// NewHTTP creates a Calculator against the engine at baseURL.
func NewHTTP(baseURL string, timeout time.Duration, opts ...Option) *HTTPCalculator {
	c := &HTTPCalculator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type personPayload struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender,omitempty"`
}

func encodePerson(p domain.Person) personPayload {
	return personPayload{
		Name:      p.Name,
		BirthDate: domain.FormatBirthDate(p.BirthDate),
		Gender:    string(p.Gender),
	}
}

// resultPayload mirrors domain.Result but is decoded leniently: the
// engine is free to add fields without breaking the adapter.
type resultPayload struct {
	Tables []struct {
		Title string `mapstructure:"title"`
		Rows  []struct {
			Label string `mapstructure:"label"`
			Value string `mapstructure:"value"`
		} `mapstructure:"rows"`
	} `mapstructure:"tables"`
	Sections []struct {
		Title string `mapstructure:"title"`
		Body  string `mapstructure:"body"`
	} `mapstructure:"sections"`
}

// ComputeSingle requests the one-person analysis.
func (c *HTTPCalculator) ComputeSingle(ctx context.Context, p domain.Person) (*domain.Result, error) {
	return c.post(ctx, "/v1/compute/single", map[string]any{
		"person": encodePerson(p),
	})
}

// ComputePair requests the two-person analysis.
func (c *HTTPCalculator) ComputePair(ctx context.Context, a, b domain.Person) (*domain.Result, error) {
	return c.post(ctx, "/v1/compute/pair", map[string]any{
		"first":  encodePerson(a),
		"second": encodePerson(b),
	})
}

func (c *HTTPCalculator) post(ctx context.Context, path string, body map[string]any) (*domain.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrCalculation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrCalculation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCalculation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrCalculation, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("engine request failed", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: engine returned status %d", domain.ErrCalculation, resp.StatusCode)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrCalculation, err)
	}

	var decoded resultPayload
	if err := mapstructure.Decode(generic, &decoded); err != nil {
		return nil, fmt.Errorf("%w: map response: %v", domain.ErrCalculation, err)
	}

	result := &domain.Result{}
	for _, table := range decoded.Tables {
		rows := make([]domain.SummaryRow, 0, len(table.Rows))
		for _, row := range table.Rows {
			rows = append(rows, domain.SummaryRow{Label: row.Label, Value: row.Value})
		}
		result.Tables = append(result.Tables, domain.SummaryTable{Title: table.Title, Rows: rows})
	}
	for _, sec := range decoded.Sections {
		result.Sections = append(result.Sections, domain.Section{Title: sec.Title, Body: sec.Body})
	}

	if len(result.Sections) == 0 {
		return nil, fmt.Errorf("%w: engine returned no sections", domain.ErrCalculation)
	}
	return result, nil
}
