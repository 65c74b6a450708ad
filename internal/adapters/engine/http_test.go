package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

func testPerson(t *testing.T, name, date string, gender domain.Gender) domain.Person {
	t.Helper()
	d, err := domain.ParseBirthDate(date)
	require.NoError(t, err)
	return domain.Person{Name: name, BirthDate: d, Gender: gender}
}

func TestComputeSingleDecodesResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"tables": []map[string]any{
				{"title": "Key numbers", "rows": []map[string]any{
					{"label": "Task", "value": "7"},
				}},
			},
			"sections": []map[string]any{
				{"title": "Character", "body": "A **strong** will."},
			},
			"engine_version": "2.3.1", // unknown fields are ignored
		})
	}))
	defer srv.Close()

	calc := NewHTTP(srv.URL, time.Second)
	result, err := calc.ComputeSingle(context.Background(), testPerson(t, "Anna", "09.10.1988", domain.GenderFemale))
	require.NoError(t, err)

	assert.Equal(t, "/v1/compute/single", gotPath)
	person := gotBody["person"].(map[string]any)
	assert.Equal(t, "Anna", person["name"])
	assert.Equal(t, "09.10.1988", person["birth_date"])
	assert.Equal(t, "F", person["gender"])

	require.Len(t, result.Tables, 1)
	assert.Equal(t, "Key numbers", result.Tables[0].Title)
	require.Len(t, result.Sections, 1)
	assert.Equal(t, "A **strong** will.", result.Sections[0].Body)
}

func TestComputePairSendsBothPersons(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/compute/pair", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"sections": []map[string]any{{"title": "Compatibility", "body": "ok"}},
		})
	}))
	defer srv.Close()

	calc := NewHTTP(srv.URL, time.Second)
	_, err := calc.ComputePair(context.Background(),
		testPerson(t, "Ivan", "12.03.1985", ""),
		testPerson(t, "Maria", "25.07.1990", ""))
	require.NoError(t, err)

	first := gotBody["first"].(map[string]any)
	second := gotBody["second"].(map[string]any)
	assert.Equal(t, "Ivan", first["name"])
	assert.Equal(t, "Maria", second["name"])
	_, hasGender := first["gender"]
	assert.False(t, hasGender, "pair flow carries no gender")
}

func TestEngineFailuresMapToErrCalculation(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway timeout</html>"))
		}},
		{"empty sections", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"sections": []any{}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			calc := NewHTTP(srv.URL, time.Second)
			_, err := calc.ComputeSingle(context.Background(), testPerson(t, "Anna", "09.10.1988", domain.GenderFemale))
			assert.ErrorIs(t, err, domain.ErrCalculation)
		})
	}
}

func TestEngineUnreachableMapsToErrCalculation(t *testing.T) {
	calc := NewHTTP("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := calc.ComputeSingle(context.Background(), testPerson(t, "Anna", "09.10.1988", domain.GenderFemale))
	assert.ErrorIs(t, err, domain.ErrCalculation)
}

func TestMockIsDeterministic(t *testing.T) {
	mock := NewMock()
	p := testPerson(t, "Anna", "09.10.1988", domain.GenderFemale)

	a, err := mock.ComputeSingle(context.Background(), p)
	require.NoError(t, err)
	b, err := mock.ComputeSingle(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.Sections)

	pair1, err := mock.ComputePair(context.Background(), p, testPerson(t, "Boris", "01.01.1990", ""))
	require.NoError(t, err)
	assert.NotEmpty(t, pair1.Sections)
}
