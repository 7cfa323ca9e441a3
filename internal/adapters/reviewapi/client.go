// internal/adapters/reviewapi/client.go
package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"festival_reviews/internal/adapters/observability"
	"festival_reviews/internal/domain"
)

// Client talks to the review service's REST API. It never retries: every
// non-2xx answer or network failure comes back as a *domain.TransportError.
type Client struct {
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	service string
}

func New(base string, rps int) (*Client, error) {
	return newClient("review-api", base, rps)
}

func newClient(service, base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("%s: base URL is required", service)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%s: bad base URL: %w", service, err)
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		service: service,
	}, nil
}

// ---- Public API ----

func (c *Client) FetchAll(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	return out, c.do(ctx, http.MethodGet, "/api/reviews", "list", nil, &out)
}

func (c *Client) FetchByID(ctx context.Context, id string) (domain.Review, error) {
	var out domain.Review
	return out, c.do(ctx, http.MethodGet, "/api/reviews/"+url.PathEscape(id), "get", nil, &out)
}

func (c *Client) FetchBySubject(ctx context.Context, t domain.SubjectType, subjectID string) ([]domain.Review, error) {
	var out []domain.Review
	p := fmt.Sprintf("/api/reviews/subject/%s/%s", url.PathEscape(string(t)), url.PathEscape(subjectID))
	return out, c.do(ctx, http.MethodGet, p, "by_subject", nil, &out)
}

func (c *Client) FetchStats(ctx context.Context, t domain.SubjectType, subjectID string) (domain.SubjectStats, error) {
	var out domain.SubjectStats
	p := fmt.Sprintf("/api/reviews/stats/%s/%s", url.PathEscape(string(t)), url.PathEscape(subjectID))
	return out, c.do(ctx, http.MethodGet, p, "stats", nil, &out)
}

func (c *Client) Create(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	var out domain.Review
	return out, c.do(ctx, http.MethodPost, "/api/reviews", "create", in, &out)
}

func (c *Client) Update(ctx context.Context, id string, in domain.ReviewInput) (domain.Review, error) {
	var out domain.Review
	return out, c.do(ctx, http.MethodPut, "/api/reviews/"+url.PathEscape(id), "update", in, &out)
}

func (c *Client) DeleteByID(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/reviews/"+url.PathEscape(id), "delete", nil, nil)
}

// ---- Internals ----

// do sends one request and decodes a JSON answer into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out any) error {
	op := method + " " + path
	if err := c.rl.Wait(ctx); err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "festival-reviews/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domain.TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
		}
		return nil

	default:
		// keep a small error body for the caller to show
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		te := &domain.TransportError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		if resp.StatusCode == http.StatusNotFound {
			te.Err = domain.ErrNotFound
		}
		return te
	}
}

// IsNotFound reports whether err is a 404 from the remote side.
func IsNotFound(err error) bool {
	var te *domain.TransportError
	return errors.As(err, &te) && te.Status == http.StatusNotFound
}
