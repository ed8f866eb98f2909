// Package catalog provides a client for the software catalog REST API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/italia/publiccode-issueopener/internal/domain"
	"golang.org/x/time/rate"
)

// Ensure Client implements domain.Catalog.
var _ domain.Catalog = (*Client)(nil)

const (
	pageSize  = 100
	userAgent = "publiccode-issueopener"
	// maxErrorBody bounds how much of a failed response is kept in errors.
	maxErrorBody = 512
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	HTTPClient        *http.Client
	RequestsPerSecond float64 // 0 disables throttling
}

// Client reads logs and software records from the catalog API.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewClient creates a Client for the API rooted at baseURL
// (e.g. https://api.developers.italia.it/v1).
func NewClient(baseURL string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: time.Minute}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		http:    hc,
		limiter: limiter,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// page is the envelope of every paginated collection.
type page[T any] struct {
	Data  []T `json:"data"`
	Links struct {
		Prev string `json:"prev"`
		Next string `json:"next"`
	} `json:"links"`
}

// ListLogs returns every log entry created at or after since.
func (c *Client) ListLogs(ctx context.Context, since time.Time) ([]domain.LogEntry, error) {
	params := url.Values{}
	params.Set("from", since.UTC().Format("2006-01-02T15:04:05Z"))
	return fetchAll[domain.LogEntry](ctx, c, "/logs", params)
}

// GetSoftware fetches the software record at entity, a path relative to
// the API root such as "/software/<id>".
func (c *Client) GetSoftware(ctx context.Context, entity string) (*domain.Software, error) {
	var sw domain.Software
	if err := c.getJSON(ctx, c.baseURL+entity, &sw); err != nil {
		return nil, fmt.Errorf("get software %s: %w", entity, err)
	}
	sw.Name = SoftwareName(sw.PubliccodeYml)
	return &sw, nil
}

// LogURL returns the API URL of a log entry.
func (c *Client) LogURL(id string) string {
	return c.baseURL + "/logs/" + id
}

// fetchAll follows the "next" cursor of a collection until it is empty.
func fetchAll[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	var all []T

	query := cloneValues(params)
	query.Set("page[size]", strconv.Itoa(pageSize))

	seen := map[string]bool{}
	for {
		var p page[T]
		if err := c.getJSON(ctx, c.baseURL+path+"?"+query.Encode(), &p); err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		all = append(all, p.Data...)

		next := p.Links.Next
		if next == "" {
			return all, nil
		}
		if seen[next] {
			return nil, fmt.Errorf("list %s: %w: %s", path, domain.ErrPaginationLoop, next)
		}
		seen[next] = true

		q, err := nextQuery(next, params)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		query = q
	}
}

// nextQuery builds the query of the following page from the "next" link,
// which is a query string such as "?page[after]=...". Parameters missing
// from the link are carried over from the first request.
func nextQuery(next string, params url.Values) (url.Values, error) {
	u, err := url.Parse(next)
	if err != nil {
		return nil, fmt.Errorf("invalid next link %q: %w", next, err)
	}

	q := u.Query()
	for k, v := range params {
		if !q.Has(k) {
			q[k] = v
		}
	}
	if !q.Has("page[size]") {
		q.Set("page[size]", strconv.Itoa(pageSize))
	}
	return q, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
