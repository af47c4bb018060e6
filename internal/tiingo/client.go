// Package tiingo fetches end-of-day price series from the Tiingo daily
// prices API.
package tiingo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cef-signal/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.tiingo.com"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

const dateLayout = "2006-01-02"

// Client fetches EOD price data over HTTP.
type Client struct {
	baseURL     string
	token       string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Tiingo API client. The token authenticates
// every request as a query parameter.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		token:       token,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DailyPrices fetches EOD observations for symbol within [start, end].
// Dates with no vendor data are simply absent from the result; an empty
// slice with a nil error means the vendor had nothing for the range.
// Transport and decode failures are returned as errors so callers can
// tell them apart from malformed data, though the scoring path treats
// both as a no-data outcome.
func (c *Client) DailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices", c.baseURL, url.PathEscape(symbol))

	query := url.Values{}
	query.Set("startDate", start.UTC().Format(dateLayout))
	query.Set("endDate", end.UTC().Format(dateLayout))
	query.Set("token", c.token)

	body, err := c.get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch daily prices for %s: %w", symbol, err)
	}

	var records []dailyPrice
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode daily prices for %s: %w", symbol, err)
	}

	points := make([]domain.PricePoint, 0, len(records))
	for _, r := range records {
		p, err := r.toPricePoint()
		if err != nil {
			return nil, fmt.Errorf("parse record for %s: %w", symbol, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// get performs a GET with retries and exponential backoff.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("http status %d", resp.StatusCode)
			continue
		default:
			// Client errors (bad symbol, bad token) won't improve on retry.
			return nil, fmt.Errorf("http status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}
