package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTavilyURL is the Tavily search endpoint.
const DefaultTavilyURL = "https://api.tavily.com/search"

// TavilyClient implements Searcher against the Tavily search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// TavilyOption configures the Tavily client.
type TavilyOption func(*TavilyClient)

// WithBaseURL overrides the search endpoint. Used by tests.
func WithBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) {
		c.httpClient = client
	}
}

// NewTavilyClient creates a Searcher backed by the Tavily API.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:  apiKey,
		baseURL: DefaultTavilyURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// Search runs the query against Tavily and returns the synthesized answer
// and ranked results.
func (c *TavilyClient) Search(ctx context.Context, query string) (*Result, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:             query,
		SearchDepth:       "basic",
		IncludeAnswer:     true,
		IncludeRawContent: false,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d", rsp.StatusCode)
	}

	result := &Result{
		Answer: gjson.GetBytes(body, "answer").String(),
	}
	for _, r := range gjson.GetBytes(body, "results").Array() {
		result.Results = append(result.Results, RankedResult{
			Title: r.Get("title").String(),
			URL:   r.Get("url").String(),
		})
	}
	return result, nil
}
