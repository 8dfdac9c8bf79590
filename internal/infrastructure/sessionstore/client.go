package sessionstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shopbridge/internal/domain"
	"shopbridge/internal/infrastructure/metrics"
	"shopbridge/internal/ports"
)

// DefaultTimeout bounds every backend round trip.
const DefaultTimeout = 5 * time.Second

// PersistenceError wraps any transport failure or unexpected backend status.
// A 404 on Load/FindByShop is not an error; it maps to the absent value.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Client delegates session CRUD to the backend session API over HTTP.
// Every call is a single attempt: no retries, no caching. Callers that need
// resilience wrap calls themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a session store client for the given backend base URL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return NewClientWithTimeout(baseURL, DefaultTimeout, logger)
}

// NewClientWithTimeout creates a client with an explicit request timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// sessionRecord is the backend wire shape. Only the fields below are mapped
// back into a Session; anything else the backend sends is ignored.
type sessionRecord struct {
	ID               string                   `json:"id"`
	Shop             string                   `json:"shop"`
	State            string                   `json:"state,omitempty"`
	IsOnline         bool                     `json:"isOnline"`
	AccessToken      string                   `json:"accessToken,omitempty"`
	Scope            string                   `json:"scope,omitempty"`
	Expires          *string                  `json:"expires,omitempty"`
	OnlineAccessInfo *domain.OnlineAccessInfo `json:"onlineAccessInfo,omitempty"`
}

func recordFromSession(s *domain.Session) *sessionRecord {
	rec := &sessionRecord{
		ID:               s.ID,
		Shop:             s.Shop,
		State:            s.State,
		IsOnline:         s.IsOnline,
		AccessToken:      s.AccessToken,
		Scope:            s.Scope,
		OnlineAccessInfo: s.OnlineAccessInfo,
	}
	if s.Expires != nil {
		v := s.Expires.UTC().Format(time.RFC3339Nano)
		rec.Expires = &v
	}
	return rec
}

func (r *sessionRecord) toSession() (*domain.Session, error) {
	s := &domain.Session{
		ID:               r.ID,
		Shop:             r.Shop,
		State:            r.State,
		IsOnline:         r.IsOnline,
		AccessToken:      r.AccessToken,
		Scope:            r.Scope,
		OnlineAccessInfo: r.OnlineAccessInfo,
	}
	if r.Expires != nil && *r.Expires != "" {
		t, err := time.Parse(time.RFC3339Nano, *r.Expires)
		if err != nil {
			return nil, fmt.Errorf("parse expires %q: %w", *r.Expires, err)
		}
		s.Expires = &t
	}
	return s, nil
}

// Store serializes the full session, secret token included, and performs a
// create-or-replace call keyed by session.ID.
func (c *Client) Store(ctx context.Context, session *domain.Session) error {
	body, err := json.Marshal(recordFromSession(session))
	if err != nil {
		return c.fail("store", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/sessions", body)
	if err != nil {
		return c.fail("store", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return c.fail("store", statusError(resp))
	}

	metrics.SessionStoreRequests.WithLabelValues("store", "ok").Inc()
	c.logger.Debug().Str("session_id", session.ID).Str("shop", session.Shop).Msg("Session stored")
	return nil
}

// Load fetches one session by id. A backend 404 yields (nil, nil).
func (c *Client) Load(ctx context.Context, id string) (*domain.Session, error) {
	resp, err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, c.fail("load", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.SessionStoreRequests.WithLabelValues("load", "not_found").Inc()
		return nil, nil
	}
	if !is2xx(resp.StatusCode) {
		return nil, c.fail("load", statusError(resp))
	}

	var rec sessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, c.fail("load", fmt.Errorf("decode body: %w", err))
	}
	session, err := rec.toSession()
	if err != nil {
		return nil, c.fail("load", err)
	}

	metrics.SessionStoreRequests.WithLabelValues("load", "ok").Inc()
	return session, nil
}

// Delete removes one session by id. Not retried: a duplicate DELETE could
// have backend-visible side effects.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return c.fail("delete", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return c.fail("delete", statusError(resp))
	}

	metrics.SessionStoreRequests.WithLabelValues("delete", "ok").Inc()
	return nil
}

// DeleteMany removes several sessions in one backend call.
func (c *Client) DeleteMany(ctx context.Context, ids []string) error {
	body, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return c.fail("delete_many", err)
	}

	resp, err := c.do(ctx, http.MethodDelete, "/sessions", body)
	if err != nil {
		return c.fail("delete_many", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return c.fail("delete_many", statusError(resp))
	}

	metrics.SessionStoreRequests.WithLabelValues("delete_many", "ok").Inc()
	return nil
}

// FindByShop returns the backend-ordered sessions for a shop. A 404 yields
// an empty slice.
func (c *Client) FindByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	resp, err := c.do(ctx, http.MethodGet, "/sessions/shop/"+url.PathEscape(shop), nil)
	if err != nil {
		return nil, c.fail("find_by_shop", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.SessionStoreRequests.WithLabelValues("find_by_shop", "not_found").Inc()
		return []*domain.Session{}, nil
	}
	if !is2xx(resp.StatusCode) {
		return nil, c.fail("find_by_shop", statusError(resp))
	}

	var recs []sessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, c.fail("find_by_shop", fmt.Errorf("decode body: %w", err))
	}

	sessions := make([]*domain.Session, 0, len(recs))
	for i := range recs {
		session, err := recs[i].toSession()
		if err != nil {
			return nil, c.fail("find_by_shop", err)
		}
		sessions = append(sessions, session)
	}

	metrics.SessionStoreRequests.WithLabelValues("find_by_shop", "ok").Inc()
	return sessions, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) fail(op string, err error) error {
	metrics.SessionStoreRequests.WithLabelValues(op, "error").Inc()
	return &PersistenceError{Op: op, Err: err}
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) == 0 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
}

var _ ports.SessionStore = (*Client)(nil)
