// Package pinecone is a focused client for the two Pinecone calls this
// service needs: inference embeddings and vector index queries.
package pinecone

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

	"portfolio-rag/internal/domain"
)

const (
	defaultControlURL = "https://api.pinecone.io"
	apiVersion        = "2024-10"
)

// embedRequest is the request shape for the inference embed endpoint.
type embedRequest struct {
	Model      string          `json:"model"`
	Parameters embedParameters `json:"parameters"`
	Inputs     []embedInput    `json:"inputs"`
}

type embedParameters struct {
	InputType string `json:"input_type"`
}

type embedInput struct {
	Text string `json:"text"`
}

// embedResponse is the minimal response shape for the inference embed endpoint.
type embedResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Values []float32 `json:"values"`
	} `json:"data"`
}

// queryRequest is the request shape for the index query endpoint.
type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

// queryResponse is the minimal response shape for the index query endpoint.
type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
	Namespace string `json:"namespace"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("pinecone: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the Pinecone inference API (embeddings, via the control
// plane URL) and to one index host (queries). Immutable after construction.
type Client struct {
	controlURL string
	indexHost  string
	apiKey     string
	embedModel string
	httpClient *http.Client
}

type Option func(*Client)

// WithControlURL overrides the inference/control plane base URL (tests).
func WithControlURL(u string) Option {
	return func(c *Client) {
		c.controlURL = strings.TrimSpace(u)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client bound to one index host and one embedding model.
func NewClient(apiKey, indexHost, embedModel string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("pinecone: api key must not be empty")
	}
	indexHost = strings.TrimRight(strings.TrimSpace(indexHost), "/")
	if indexHost == "" {
		return nil, errors.New("pinecone: index host must not be empty")
	}
	if strings.TrimSpace(embedModel) == "" {
		return nil, errors.New("pinecone: embed model must not be empty")
	}
	c := &Client{
		controlURL: defaultControlURL,
		indexHost:  indexHost,
		apiKey:     apiKey,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EmbedQuery embeds a single query string using the configured inference
// model with input_type=query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{
		Model:      c.embedModel,
		Parameters: embedParameters{InputType: "query"},
		Inputs:     []embedInput{{Text: text}},
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: marshal embed request: %w", err)
	}

	url := strings.TrimRight(c.controlURL, "/") + "/embed"
	raw, err := c.doJSONRequest(ctx, url, body)
	if err != nil {
		return nil, fmt.Errorf("pinecone: embed request failed: %w", err)
	}

	var payload embedResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("pinecone: decode embed response: %w", decErr)
	}
	if len(payload.Data) == 0 {
		return nil, errors.New("pinecone: no embeddings in response")
	}
	return payload.Data[0].Values, nil
}

// Query searches the index for the topK nearest neighbors of vector within
// namespace, metadata included.
func (c *Client) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]domain.IndexMatch, error) {
	if len(vector) == 0 {
		return nil, errors.New("pinecone: query vector must not be empty")
	}

	body, err := json.Marshal(queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       namespace,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: marshal query request: %w", err)
	}

	url := c.indexHost + "/query"
	raw, err := c.doJSONRequest(ctx, url, body)
	if err != nil {
		return nil, fmt.Errorf("pinecone: query request failed: %w", err)
	}

	var payload queryResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("pinecone: decode query response: %w", decErr)
	}

	matches := make([]domain.IndexMatch, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		matches = append(matches, domain.IndexMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (c *Client) doJSONRequest(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)

	res, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
