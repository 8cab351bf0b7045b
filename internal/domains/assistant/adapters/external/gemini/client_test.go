package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
)

func geminiReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	}))
}

func TestClient_Recommend(t *testing.T) {
	var gotPath, gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		geminiReply(t, w, `{"suggestions":[{"itemName":"Spanish Latte","baristaTip":"Ask for less ice"}]}`)
	}))
	defer srv.Close()

	client := NewClient("secret", WithBaseURL(srv.URL), WithModel("test-model"), WithHTTPClient(srv.Client()))
	got, err := client.Recommend(context.Background(), "something creamy", []domain.MenuEntry{{Name: "Spanish Latte", Description: "Condensed milk"}})
	require.NoError(t, err)
	require.Equal(t, []domain.Suggestion{{ItemName: "Spanish Latte", BaristaTip: "Ask for less ice"}}, got)

	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotBody, `something creamy`)
	assert.Contains(t, gotBody, `Singgah Kita Coffee`)
	assert.Contains(t, gotBody, `"responseMimeType":"application/json"`)
}

func TestClient_Advise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.True(t, strings.Contains(string(raw), "Americano"))
		geminiReply(t, w, `{"tips":["Promote Americano mornings","Bundle pastries","Track wait times"]}`)
	}))
	defer srv.Close()

	client := NewClient("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	tips, err := client.Advise(context.Background(), []domain.OrderSummary{{Total: 27500, ItemNames: []string{"Americano"}}})
	require.NoError(t, err)
	assert.Len(t, tips, 3)
}

func TestClient_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "non-2xx", handler: func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}},
		{name: "no candidates", handler: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}},
		{name: "non-json text", handler: func(w http.ResponseWriter, _ *http.Request) {
			geminiReply(t, w, "Sure! Here are some ideas")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			client := NewClient("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
			_, err := client.Recommend(context.Background(), "latte", nil)
			require.Error(t, err)
		})
	}
}

func TestClient_RespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	client := NewClient("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := client.Advise(ctx, nil)
	require.Error(t, err)
}

func TestClient_MissingKey(t *testing.T) {
	_, err := NewClient("").Recommend(context.Background(), "latte", nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}
