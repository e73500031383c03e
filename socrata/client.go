package socrata

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/opencontratos/secop"
)

// DefaultEndpoint is the SECOP II electronic-contracts dataset on the
// Colombian open-data portal.
const DefaultEndpoint = "https://www.datos.gov.co/resource/jbjy-vk9h.json"

const defaultPageSize = 1000

// Client queries a Socrata tabular dataset. An app token raises the
// server-side throttling limits but is not required.
type Client struct {
	endpoint string
	appToken string
	client   *http.Client
	gate     secop.Gate
	cache    *diskCache
	pageSize int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the dataset endpoint (tests point it at a local
// server).
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithAppToken sets the X-App-Token credential. An empty token is
// accepted: requests simply run unauthenticated.
func WithAppToken(token string) ClientOption {
	return func(c *Client) { c.appToken = token }
}

// WithHTTPClient replaces the default HTTP client. The default transport
// honors HTTPS_PROXY/HTTP_PROXY.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithGate applies a rolling-window limiter before every request.
func WithGate(gate secop.Gate) ClientOption {
	return func(c *Client) { c.gate = gate }
}

// WithCache stores response pages under dir for ttl.
func WithCache(dir string, ttl time.Duration) ClientOption {
	return func(c *Client) { c.cache = newDiskCache(dir, ttl) }
}

// WithPageSize sets the pagination page size used by ContractsAll.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient constructs a Client with optional configuration.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contracts fetches a single page of rows matching the query.
func (c *Client) Contracts(ctx context.Context, q Query) ([]Contract, error) {
	if q.Limit <= 0 {
		q.Limit = c.pageSize
	}
	return c.fetchPage(ctx, q.Params())
}

// ContractsAll pages through every row matching the query. When q.Limit
// is set it caps the total row count instead of sizing one page.
func (c *Client) ContractsAll(ctx context.Context, q Query) ([]Contract, error) {
	total := q.Limit
	var all []Contract
	for offset := q.Offset; ; offset += c.pageSize {
		size := c.pageSize
		if total > 0 && total-len(all) < size {
			size = total - len(all)
		}
		if size <= 0 {
			break
		}
		page, err := c.fetchPage(ctx, q.WithPage(size, offset).Params())
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < size {
			break
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, params url.Values) ([]Contract, error) {
	body, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	var rows []Contract
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Body: "undecodable response: " + err.Error()}
	}
	return rows, nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	if data, ok := c.cache.get(c.endpoint, params); ok {
		slog.Debug("socrata cache hit", "params", params.Encode())
		return data, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.appToken != "" {
			req.Header.Set("X-App-Token", c.appToken)
		}

		resp, err = c.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay each time up to 30 s.
		slog.Debug("socrata throttled, backing off", "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := c.cache.put(c.endpoint, params, body); err != nil {
		slog.Warn("socrata cache write failed", "error", err)
	}
	return body, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.gate == nil {
		return nil
	}
	return c.gate.Wait(ctx)
}
