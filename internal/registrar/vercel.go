package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gatherly/gatherly-server/internal/ratelimit"
)

const (
	// Vercel allows roughly 100 domain writes per hour per project; stay well under.
	vercelRPS   = 1.0
	vercelBurst = 5

	vercelTimeout = 15 * time.Second

	// DefaultVercelBaseURL is the production Vercel REST API.
	DefaultVercelBaseURL = "https://api.vercel.com"
)

// VercelConfig configures a Vercel project-domains client.
type VercelConfig struct {
	BaseURL   string
	Token     string
	ProjectID string
	TeamID    string // Optional
}

// Vercel attaches custom domains to a Vercel project.
type Vercel struct {
	cfg     VercelConfig
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

var _ Registrar = (*Vercel)(nil)

// NewVercel creates a new Vercel registrar client.
func NewVercel(cfg VercelConfig, logger *slog.Logger) *Vercel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultVercelBaseURL
	}
	return &Vercel{
		cfg: cfg,
		http: &http.Client{
			Timeout: vercelTimeout,
		},
		limiter: ratelimit.New(vercelRPS, vercelBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (v *Vercel) Close() {
	v.limiter.Stop()
}

// vercelError is the error body returned by the Vercel API.
type vercelError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AddDomain implements Registrar.
func (v *Vercel) AddDomain(ctx context.Context, domain string) error {
	body, err := json.Marshal(map[string]string{"name": domain})
	if err != nil {
		return err
	}

	path := "/v10/projects/" + url.PathEscape(v.cfg.ProjectID) + "/domains"
	status, respBody, err := v.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return &OpError{Op: "add", Provider: "vercel", Domain: domain, Err: err}
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return nil
	case status == http.StatusConflict || status == http.StatusBadRequest:
		var ve vercelError
		_ = json.Unmarshal(respBody, &ve)
		if ve.Error.Code == "domain_already_in_use_by_project" || ve.Error.Code == "domain_already_exists" {
			// Already attached to this project.
			return nil
		}
		if status == http.StatusConflict {
			return &OpError{Op: "add", Provider: "vercel", Domain: domain, Err: ErrConflict}
		}
		return &OpError{Op: "add", Provider: "vercel", Domain: domain,
			Err: fmt.Errorf("bad request: %s", ve.Error.Message)}
	default:
		return &OpError{Op: "add", Provider: "vercel", Domain: domain, Err: statusError(status, respBody)}
	}
}

// RemoveDomain implements Registrar.
func (v *Vercel) RemoveDomain(ctx context.Context, domain string) error {
	path := "/v9/projects/" + url.PathEscape(v.cfg.ProjectID) + "/domains/" + url.PathEscape(domain)
	status, respBody, err := v.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return &OpError{Op: "remove", Provider: "vercel", Domain: domain, Err: err}
	}

	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return &OpError{Op: "remove", Provider: "vercel", Domain: domain, Err: statusError(status, respBody)}
	}
}

// do executes a rate limited request against the Vercel API.
func (v *Vercel) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := v.limiter.Wait(ctx, v.cfg.ProjectID); err != nil {
		return 0, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(v.cfg.BaseURL + path)
	if err != nil {
		return 0, nil, fmt.Errorf("build url: %w", err)
	}
	if v.cfg.TeamID != "" {
		q := u.Query()
		q.Set("teamId", v.cfg.TeamID)
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	v.logger.Debug("vercel request",
		"method", method,
		"path", path,
	)

	resp, err := v.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// statusError maps an unexpected response status to an error.
func statusError(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return fmt.Errorf("unexpected status %d: %s", status, string(body))
	}
}
