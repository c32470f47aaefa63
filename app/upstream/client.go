package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/semerproje/newswire/app/ratelimit"
)

// maxSearchLimit is the upstream's hard per-request page size. Larger limits
// are clamped, not rejected.
const maxSearchLimit = 100

const maxResponseBytes = 4 << 20

// Client is the authenticated gateway to the wire-service API. Every network
// call acquires the shared rate limiter first. The client performs no retries;
// retry and backoff policy belongs to the ingestion scheduler and the
// freshness cache.
type Client struct {
	baseURL     string
	username    string
	password    string
	userAgent   string
	archiveDays int
	httpClient  *http.Client
	limiter     *ratelimit.Limiter

	mu         sync.RWMutex
	taxonomies map[string]*Taxonomy
}

func NewClient(baseURL, username, password, userAgent string, archiveDays int,
	httpClient *http.Client, limiter *ratelimit.Limiter) *Client {
	return &Client{
		baseURL:     baseURL,
		username:    username,
		password:    password,
		userAgent:   userAgent,
		archiveDays: archiveDays,
		httpClient:  httpClient,
		limiter:     limiter,
		taxonomies:  make(map[string]*Taxonomy),
	}
}

// Discover returns the filter taxonomy for a language. The taxonomy rarely
// changes, so it is cached for the process lifetime; InvalidateTaxonomy clears
// the cache.
func (c *Client) Discover(ctx context.Context, language string) (*Taxonomy, error) {
	c.mu.RLock()
	cached, ok := c.taxonomies[language]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	body, err := c.doGet(ctx, "discover", fmt.Sprintf("%s/discover/%s", c.baseURL, language))
	if err != nil {
		return nil, err
	}

	var resp discoverResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransientError{Op: "discover", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if !resp.Response.Success {
		return nil, &TransientError{Op: "discover", Err: fmt.Errorf("upstream reported failure: %s", resp.Response.Message)}
	}

	taxonomy := resp.Data
	c.mu.Lock()
	c.taxonomies[language] = &taxonomy
	c.mu.Unlock()

	return &taxonomy, nil
}

func (c *Client) InvalidateTaxonomy() {
	c.mu.Lock()
	c.taxonomies = make(map[string]*Taxonomy)
	c.mu.Unlock()
}

// Search runs a windowed, paginated query. The time window is silently clamped
// to the subscription's archive retention and the page size to the upstream's
// per-request maximum.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	now := time.Now().UTC()

	end := params.End
	if end.IsZero() || end.After(now) {
		end = now
	}

	start := params.Start
	earliest := now.AddDate(0, 0, -c.archiveDays)
	if start.IsZero() || start.Before(earliest) {
		start = earliest
	}
	if start.After(end) {
		start = end
	}

	limit := params.Limit
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	reqBody := searchRequest{
		StartDate:      start.Format(time.RFC3339),
		EndDate:        end.Format(time.RFC3339),
		FilterCategory: params.Categories,
		FilterPriority: params.Priorities,
		FilterType:     params.Types,
		FilterLanguage: params.Language,
		SearchString:   params.Query,
		Offset:         params.Offset,
		Limit:          limit,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	body, err := c.doPost(ctx, "search", c.baseURL+"/search", payload)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransientError{Op: "search", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if !resp.Response.Success {
		return nil, &TransientError{Op: "search", Err: fmt.Errorf("upstream reported failure: %s", resp.Response.Message)}
	}

	items := make([]RawItem, 0, len(resp.Data.Result))
	for _, raw := range resp.Data.Result {
		items = append(items, normalizeItem(raw, now))
	}

	return &SearchResult{
		Items:  items,
		Total:  resp.Data.Total,
		Offset: params.Offset,
		Limit:  limit,
	}, nil
}

// Document fetches the complete article body for items whose search result was
// a truncated summary. The returned markup is treated as opaque text; use
// StripMarkup for plain-text extraction.
func (c *Client) Document(ctx context.Context, id, format string) (string, error) {
	body, err := c.doGet(ctx, "document", fmt.Sprintf("%s/document/%s/%s", c.baseURL, id, format))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Token resolves short-lived download URLs for a media group.
func (c *Client) Token(ctx context.Context, groupID, format string) ([]string, error) {
	body, err := c.doGet(ctx, "token", fmt.Sprintf("%s/token/%s/%s", c.baseURL, groupID, format))
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransientError{Op: "token", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if !resp.Response.Success {
		return nil, &TransientError{Op: "token", Err: fmt.Errorf("upstream reported failure: %s", resp.Response.Message)}
	}

	return resp.Data, nil
}

// Subscription returns the account's daily quota usage and archive retention.
func (c *Client) Subscription(ctx context.Context) (*Quota, error) {
	body, err := c.doGet(ctx, "subscription", c.baseURL+"/subscription")
	if err != nil {
		return nil, err
	}

	var resp subscriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransientError{Op: "subscription", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if !resp.Response.Success {
		return nil, &TransientError{Op: "subscription", Err: fmt.Errorf("upstream reported failure: %s", resp.Response.Message)}
	}

	quota := resp.Data
	return &quota, nil
}

func (c *Client) doGet(ctx context.Context, op, url string) ([]byte, error) {
	return c.do(ctx, op, http.MethodGet, url, nil)
}

func (c *Client) doPost(ctx context.Context, op, url string, payload []byte) ([]byte, error) {
	return c.do(ctx, op, http.MethodPost, url, payload)
}

func (c *Client) do(ctx context.Context, op, method, url string, payload []byte) ([]byte, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, &TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransientError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode, Message: string(body)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &QuotaError{Message: string(body)}
	case resp.StatusCode != http.StatusOK:
		return nil, &TransientError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))}
	}

	return body, nil
}

// normalizeItem converts a wire item to the internal representation. Missing
// dates default to the fetch time.
func normalizeItem(raw searchResponseItem, now time.Time) RawItem {
	date := now
	if raw.Date != "" {
		if parsed, err := time.Parse(time.RFC3339, raw.Date); err == nil {
			date = parsed.UTC()
		}
	}

	return RawItem{
		ID:           raw.ID,
		Title:        raw.Title,
		Content:      raw.Content,
		Summary:      raw.Summary,
		Text:         raw.Text,
		Date:         date,
		CategoryCode: raw.CategoryCode,
		PriorityCode: raw.PriorityCode,
		TypeCode:     raw.TypeCode,
		GroupID:      raw.GroupID,
		LanguageCode: raw.LanguageCode,
		Keywords:     raw.Keywords,
	}
}
