package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostResultSendsJSONPayload(t *testing.T) {
	var got ResultPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	payload := ResultPayload{
		ExamID:      3,
		ExamName:    "Test wewnętrzny",
		UserID:      5,
		Email:       "anna@example.com",
		Score:       17,
		MaxScore:    20,
		SubmittedAt: time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC),
	}
	require.NoError(t, NewClient(srv.URL).PostResult(context.Background(), payload))
	assert.Equal(t, payload, got)
}

func TestPostResultNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).PostResult(context.Background(), ResultPayload{ExamID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
