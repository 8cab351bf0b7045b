package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
	"github.com/Apurer/singgah-pos/internal/domains/assistant/ports"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-3-flash-preview"

	maxResponseBytes = 1 << 20
)

var (
	ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")
	ErrEmptyResponse = errors.New("empty gemini response")
)

// Client calls the Gemini generateContent endpoint with a JSON response schema.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

// WithBaseURL points the client at another endpoint, e.g. an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if u := strings.TrimSpace(baseURL); u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Recommend(ctx context.Context, query string, menu []domain.MenuEntry) ([]domain.Suggestion, error) {
	menuJSON, err := json.Marshal(menu)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`As an expert barista for %q, suggest items based on: %q. Menu: %s Respond in JSON.`,
		domain.ShopName, query, menuJSON)
	schema := object(map[string]any{
		"suggestions": map[string]any{
			"type": "ARRAY",
			"items": object(map[string]any{
				"itemName":   map[string]any{"type": "STRING"},
				"baristaTip": map[string]any{"type": "STRING"},
			}, "itemName", "baristaTip"),
		},
	}, "suggestions")

	var out struct {
		Suggestions []domain.Suggestion `json:"suggestions"`
	}
	if err := c.generate(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func (c *Client) Advise(ctx context.Context, orders []domain.OrderSummary) ([]string, error) {
	if orders == nil {
		orders = []domain.OrderSummary{}
	}
	summary, err := json.Marshal(orders)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`As a coffee shop consultant, analyze these orders: %s. Give 3 short, actionable business tips for %s. Respond in JSON.`,
		summary, domain.ShopName)
	schema := object(map[string]any{
		"tips": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
	}, "tips")

	var out struct {
		Tips []string `json:"tips"`
	}
	if err := c.generate(ctx, prompt, schema, &out); err != nil {
		return nil, err
	}
	return out.Tips, nil
}

func (c *Client) generate(ctx context.Context, prompt string, schema map[string]any, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":      0.4,
			"responseMimeType": "application/json",
			"responseSchema":   schema,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini api error: status %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("decode gemini envelope: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return ErrEmptyResponse
	}
	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("gemini returned non-json output: %w", err)
	}
	return nil
}

func object(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "OBJECT",
		"properties": properties,
		"required":   required,
	}
}

func truncate(raw []byte, n int) string {
	if len(raw) <= n {
		return string(raw)
	}
	return string(raw[:n]) + "..."
}

var _ ports.Generator = (*Client)(nil)
