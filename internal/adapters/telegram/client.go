// Package telegram adapts the Bot API to the dialog's transport and
// update-dispatch boundaries using plain HTTP, no bot framework.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// parseModeMarkdownV2 is the only parse mode the bot sends. All bodies
// are pre-escaped by the dialog formatter.
const parseModeMarkdownV2 = "MarkdownV2"

// Client is a minimal Bot API client covering the handful of methods the
// bot needs.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API host, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a Bot API client. The HTTP timeout must exceed the
// long-poll timeout used with GetUpdates.
func NewClient(token string, pollTimeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: pollTimeout + 15*time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Update is one inbound event: either a text message or a callback query.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *Message       `json:"message,omitempty"`
	Callback *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message,omitempty"`
}

// InlineKeyboardButton is the wire form of one button.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboardMarkup is the wire form of a button grid.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// GetUpdates long-polls for new updates at or past offset and returns
// them along with the next offset to poll from.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	values := url.Values{}
	values.Set("timeout", strconv.Itoa(int(timeout.Seconds())))
	values.Set("allowed_updates", `["message","callback_query"]`)
	if offset > 0 {
		values.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.method("getUpdates")+"?"+values.Encode(), nil)
	if err != nil {
		return nil, offset, err
	}

	raw, err := c.do(req)
	if err != nil {
		return nil, offset, fmt.Errorf("getUpdates: %w", err)
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, offset, fmt.Errorf("getUpdates: decode result: %w", err)
	}

	next := offset
	for _, upd := range updates {
		if upd.UpdateID >= next {
			next = upd.UpdateID + 1
		}
	}
	return updates, next, nil
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends a MarkdownV2 message, optionally with an inline
// keyboard, and returns the new message ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (int64, error) {
	raw, err := c.postJSON(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseModeMarkdownV2,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, fmt.Errorf("sendMessage: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, fmt.Errorf("sendMessage: decode result: %w", err)
	}
	return msg.MessageID, nil
}

type editMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText replaces the body and keyboard of an existing message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	_, err := c.postJSON(ctx, "editMessageText", editMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   parseModeMarkdownV2,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("editMessageText: %w", err)
	}
	return nil
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its progress spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	_, err := c.postJSON(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID})
	if err != nil {
		return fmt.Errorf("answerCallbackQuery: %w", err)
	}
	return nil
}

// SendDocument uploads a file as a document attachment.
func (c *Client) SendDocument(ctx context.Context, chatID int64, data []byte, filename string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method("sendDocument"), &buf)
	if err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	return nil
}

func (c *Client) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, name)
}

func (c *Client) postJSON(ctx context.Context, name string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method(name), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !api.OK {
		if api.Description == "" {
			return nil, fmt.Errorf("http %d: request failed", resp.StatusCode)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, api.Description)
	}
	return api.Result, nil
}
