package subgraph

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

	"go.uber.org/zap"

	"pairScope/internal/metrics"
)

// ErrGraphQL marks a response that carried a GraphQL errors payload.
var ErrGraphQL = errors.New("graphql error")

// Querier executes a GraphQL document and decodes the data object into out.
type Querier interface {
	Query(ctx context.Context, query string, vars map[string]any, out any) error
}

// Config controls a subgraph client.
type Config struct {
	Name         string
	URL          string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client posts GraphQL documents to one subgraph endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewClient(cfg Config, m *metrics.Metrics, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("subgraph url is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.URL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		metrics: m,
		logger:  logger,
	}, nil
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query runs the document with retries. GraphQL errors and 4xx responses are not retried.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	start := time.Now()
	err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		err := c.do(ctx, query, vars, out)
		if err != nil {
			c.logger.Warn("subgraph query failed", zap.String("source", c.cfg.Name), zap.Error(err))
		}
		return err
	})
	c.metrics.ObserveQuery(c.cfg.Name, err, time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return permanent(fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("subgraph status %d: %s", resp.StatusCode, truncate(payload, 200))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return permanent(err)
		}
		return err
	}

	var decoded response
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return permanent(fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return permanent(fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; ")))
	}
	if out == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return permanent(fmt.Errorf("decode data: %w", err))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
