// Package ledgerapi is the HTTP client of the SafeLedger REST backend. It carries the
// backend's session and CSRF cookies on behalf of a dashboard session and never
// follows redirects: a redirect is reported as a *domain.BackendError.
package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/metrics"
	"github.com/safeledger/dashboard/internal/core/domain"
)

const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"

	maxBodyBytes = 32 << 20
)

// Config captures the settings of the backend client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests bounded only by their context.
	Timeout time.Duration
}

// Client implements the ports.SessionAPI, ports.PostingAPI, ports.DirectoryAPI and
// ports.ModelAPI interfaces.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the backend at cfg.BaseURL.
func New(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}
}

// call describes one backend request. endpoint is the path template used as metric label.
type call struct {
	method   string
	path     string
	endpoint string
	body     any
	out      any
}

// do sends c with creds attached and decodes a 2xx JSON body into c.out. It returns
// the cookies set by the response.
func (cl *Client) do(ctx context.Context, creds domain.Credentials, c call) ([]*http.Cookie, error) {
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", c.method, c.endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, cl.baseURL+c.path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", c.method, c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds.SessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: creds.SessionID})
	}
	if creds.CSRFToken != "" {
		req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: creds.CSRFToken})
		if c.method != http.MethodGet {
			req.Header.Set(CSRFHeader, creds.CSRFToken)
			req.Header.Set("Referer", cl.baseURL+"/")
		}
	}

	start := time.Now()
	resp, err := cl.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(c.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(c.endpoint, c.method, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		cl.log.Warn().Err(err).Str("endpoint", c.endpoint).Str("method", c.method).Msg("ledger backend request failed")
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, c.method, c.endpoint, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestsTotal.WithLabelValues(c.endpoint, c.method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrBackendUnavailable, c.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		be := &domain.BackendError{Status: resp.StatusCode}
		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) == nil {
			be.Fields = fields
		}
		cl.log.Debug().Int("status", resp.StatusCode).Str("endpoint", c.endpoint).Str("method", c.method).Msg("ledger backend rejected request")
		return resp.Cookies(), be
	}

	if c.out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, c.out); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, c.endpoint, err)
		}
	}
	return resp.Cookies(), nil
}

// withCookies returns creds updated from the named response cookies.
func withCookies(creds domain.Credentials, cookies []*http.Cookie) domain.Credentials {
	for _, ck := range cookies {
		switch ck.Name {
		case SessionCookie:
			creds.SessionID = ck.Value
		case CSRFCookie:
			creds.CSRFToken = ck.Value
		}
	}
	return creds
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + "/"
}

// FetchCSRF implements ports.SessionAPI.
func (cl *Client) FetchCSRF(ctx context.Context, creds domain.Credentials) (domain.Credentials, error) {
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	cookies, err := cl.do(ctx, creds, call{method: http.MethodGet, path: "/csrf/", endpoint: "/csrf/", out: &body})
	if err != nil {
		return creds, err
	}
	updated := withCookies(creds, cookies)
	if updated.CSRFToken == "" {
		updated.CSRFToken = body.CSRFToken
	}
	if updated.CSRFToken == "" {
		return creds, fmt.Errorf("%w: no csrf token issued", domain.ErrMalformedResponse)
	}
	return updated, nil
}

// Login implements ports.SessionAPI.
func (cl *Client) Login(ctx context.Context, creds domain.Credentials, email, password string) (domain.Credentials, error) {
	cookies, err := cl.do(ctx, creds, call{
		method:   http.MethodPost,
		path:     "/login/",
		endpoint: "/login/",
		body:     map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return creds, err
	}
	updated := withCookies(creds, cookies)
	if updated.SessionID == "" {
		return creds, fmt.Errorf("%w: login did not set a session cookie", domain.ErrMalformedResponse)
	}
	return updated, nil
}

// Logout implements ports.SessionAPI.
func (cl *Client) Logout(ctx context.Context, creds domain.Credentials) error {
	_, err := cl.do(ctx, creds, call{method: http.MethodPost, path: "/logout/", endpoint: "/logout/"})
	return err
}

// UserDetails implements ports.SessionAPI.
func (cl *Client) UserDetails(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var body userDetailsResponse
	if _, err := cl.do(ctx, creds, call{method: http.MethodGet, path: "/user-details/", endpoint: "/user-details/", out: &body}); err != nil {
		return nil, err
	}
	if !body.IsAuthenticated || body.User == nil {
		return nil, domain.ErrUnauthenticated
	}
	return body.User.toDomain()
}

// ListPostings implements ports.PostingAPI.
func (cl *Client) ListPostings(ctx context.Context, creds domain.Credentials, company string) ([]domain.Posting, error) {
	path := "/postings/"
	if company != "" {
		path += "?" + url.Values{"company": {company}}.Encode()
	}
	var body []postingDTO
	if _, err := cl.do(ctx, creds, call{method: http.MethodGet, path: path, endpoint: "/postings/", out: &body}); err != nil {
		return nil, err
	}
	out := make([]domain.Posting, 0, len(body))
	for i, dto := range body {
		p, err := dto.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: posting %d: %v", domain.ErrMalformedResponse, i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Retrain implements ports.ModelAPI.
func (cl *Client) Retrain(ctx context.Context, creds domain.Credentials, company string) (string, error) {
	req := map[string]any{}
	if company != "" {
		id, err := strconv.ParseInt(company, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: company %q", domain.ErrInvalidInput, company)
		}
		req["company_id"] = id
	}
	var body struct {
		Message string `json:"message"`
	}
	if _, err := cl.do(ctx, creds, call{method: http.MethodPost, path: "/retrain-ml/", endpoint: "/retrain-ml/", body: req, out: &body}); err != nil {
		return "", err
	}
	return body.Message, nil
}
