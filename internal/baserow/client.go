// Package baserow implements the HTTP client for the Baserow rows API:
// paginated table fetches with bounded retry on transient failure.
package baserow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stacksight/pipeline/internal/config"
	"github.com/stacksight/pipeline/internal/models"
)

// Retry policy. RetryDelays is the backoff ladder; with a budget of
// MaxAttempts total attempts only the first MaxAttempts-1 delays are
// ever consumed. Both values are part of the observable contract.
const MaxAttempts = 3

var RetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

const requestTimeout = 30 * time.Second

// ErrRetriesExhausted means a page request kept failing transiently
// until the retry budget ran out.
var ErrRetriesExhausted = errors.New("baserow: retries exhausted")

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("baserow: HTTP %d from %s", e.Code, e.URL)
}

// Retryable reports whether the status is worth retrying:
// rate limiting or a server-side failure.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client fetches rows from a Baserow instance.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	pageSize    int
	maxAttempts int
	retryDelays []time.Duration
	logger      *zap.Logger
}

// NewClient builds a client from the pipeline config.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		pageSize:    cfg.PageSize,
		maxAttempts: MaxAttempts,
		retryDelays: RetryDelays,
		logger:      logger,
	}
}

// pageResponse is the envelope of one rows-API page.
type pageResponse struct {
	Count   int64        `json:"count"`
	Next    *string      `json:"next"`
	Results []models.Row `json:"results"`
}

// FetchTable retrieves the complete contents of one table by following
// next-page pointers until none remain, an empty page is returned, or
// limit rows (when limit > 0) have been accumulated. The returned slice
// is truncated to exactly the limit when it is exceeded.
func (c *Client) FetchTable(ctx context.Context, table config.Table, limit int) ([]models.Row, error) {
	rows := []models.Row{}
	url := fmt.Sprintf("%s/api/database/rows/table/%d/?size=%d", c.baseURL, table.ID, c.pageSize)

	c.logger.Info("fetching table", zap.String("table", table.Name), zap.Int64("table_id", table.ID))

	page := 1
	for url != "" {
		resp, err := c.getPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", table.Name, page, err)
		}
		if len(resp.Results) == 0 {
			break
		}
		rows = append(rows, resp.Results...)

		if limit > 0 && len(rows) >= limit {
			rows = rows[:limit]
			break
		}

		if resp.Next == nil {
			break
		}
		url = *resp.Next
		page++
	}

	c.logger.Info("table fetched", zap.String("table", table.Name), zap.Int("rows", len(rows)), zap.Int("pages", page))
	return rows, nil
}

// getPage requests a single page, retrying the same URL on transient
// failure up to the attempt budget.
func (c *Client) getPage(ctx context.Context, url string) (*pageResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		resp, err := c.tryPage(ctx, url)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt < c.maxAttempts-1 {
			delay := c.retryDelays[attempt]
			c.logger.Warn("transient failure, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.maxAttempts),
				zap.Duration("delay", delay),
				zap.Error(err))
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// tryPage performs one GET of one page.
func (c *Client) tryPage(ctx context.Context, url string) (*pageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &page, nil
}

// transportError wraps a network-level failure; always retryable.
type transportError struct{ err error }

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var te *transportError
	return errors.As(err, &te)
}

// sleep blocks for the backoff delay, or returns early if the context
// is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
