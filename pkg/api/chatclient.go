// Package api provides client functionality for interacting with the
// Casebot relay service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// ChatClient is a client for the relay's chat endpoint. Unlike the server,
// which is stateless between turns, the client owns the conversation state:
// it remembers the thread identifier from the first reply and sends it on
// every later turn, so callers never handle identifiers themselves.
type ChatClient struct {
	httpClient *http.Client
	baseURL    string
	config     clientConfig

	mu       sync.Mutex
	threadID string
}

// ClientOption is a function type for configuring client behavior.
type ClientOption func(*clientConfig)

type clientConfig struct {
	httpTimeout time.Duration
	maxRetries  uint
	retryDelay  time.Duration
	httpClient  *http.Client
}

// WithHTTPTimeout sets the overall timeout for each chat request. Relay
// turns can take a while when the assistant runs tools, so the default is
// generous.
func WithHTTPTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.httpTimeout = timeout
	}
}

// WithMaxRetries sets the maximum number of attempts for failed requests.
// Only transport failures are retried; the relay reports application errors
// with an HTTP status, and those are returned to the caller immediately.
func WithMaxRetries(maxRetries uint) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
	}
}

// WithRetryDelay sets the base delay between retry attempts.
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.retryDelay = delay
	}
}

// WithHTTPClient overrides the HTTP client. Used by tests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// NewChatClient creates a new ChatClient for the relay at the given base
// URL. Returns an error if the base URL is empty.
func NewChatClient(baseURL string, opts ...ClientOption) (*ChatClient, error) {
	config := clientConfig{
		httpTimeout: 120 * time.Second,
		maxRetries:  3,
		retryDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&config)
	}

	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := config.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.httpTimeout}
	}

	return &ChatClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		config:     config,
	}, nil
}

// ThreadID returns the current conversation thread identifier, or the empty
// string before the first successful turn.
func (c *ChatClient) ThreadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threadID
}

// Reset clears the conversation state. The next message starts a fresh
// thread.
func (c *ChatClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threadID = ""
}

// SendMessage sends one chat turn and returns the assistant's response.
// Transport failures are retried with backoff; HTTP error responses from
// the relay are not retried, since the turn may have partially executed.
func (c *ChatClient) SendMessage(ctx context.Context, query string) (string, error) {
	msg := ChatMessage{Query: query}
	if tid := c.ThreadID(); tid != "" {
		msg.ThreadID = tid
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	var reply ChatReply
	err = retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		rsp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer rsp.Body.Close()

		rspBody, err := io.ReadAll(rsp.Body)
		if err != nil {
			return err
		}
		if rsp.StatusCode != http.StatusOK {
			return retry.Unrecoverable(fmt.Errorf("chat turn failed: %s", string(rspBody)))
		}

		if err := json.Unmarshal(rspBody, &reply); err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to decode reply: %w", err))
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(c.config.maxRetries),
		retry.Delay(c.config.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	if tid, ok := reply.ThreadID.(string); ok && tid != "" {
		c.mu.Lock()
		c.threadID = tid
		c.mu.Unlock()
	}

	return reply.Response, nil
}
