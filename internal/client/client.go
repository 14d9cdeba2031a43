// Package client talks to the identity service over HTTP.
package client

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

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"

	"go.uber.org/zap"
)

const (
	loginPath  = "api/v1/auth/login"
	signupPath = "api/v1/auth/signup"
	mePath     = "api/v1/auth/me"

	maxBodyBytes = 1 << 20
)

// TransportError means no interpretable response was obtained: the request
// failed on the wire, or the body could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("identity service %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("identity service %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == xerrors.ErrTransport }

type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the identity service rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity service url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid identity service url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SubmitLogin posts credentials. A non-nil response with Success=false is an
// explicit rejection; transport problems come back as *TransportError.
func (c *Client) SubmitLogin(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	return c.postAuth(ctx, "login", loginPath, auth.LoginRequest{Email: email, Password: password})
}

func (c *Client) SubmitSignup(ctx context.Context, email, password, name string) (*auth.AuthResponse, error) {
	return c.postAuth(ctx, "signup", signupPath, auth.SignupRequest{Email: email, Password: password, Name: name})
}

type meResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *auth.Identity `json:"data"`
}

// Me reads the identity behind a bearer token.
func (c *Client) Me(ctx context.Context, accessToken string) (*auth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(mePath), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, &TransportError{Op: "me", Err: err}
	}
	if status == http.StatusUnauthorized {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "identity service me")
	}

	var resp meResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: "me", StatusCode: status, Err: fmt.Errorf("decode body: %w", err)}
	}
	if status < 200 || status > 299 || !resp.Success || resp.Data == nil {
		msg := resp.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, fmt.Errorf("identity service me: %s", msg)
	}
	return resp.Data, nil
}

func (c *Client) postAuth(ctx context.Context, op, path string, payload interface{}) (*auth.AuthResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	var resp auth.AuthResponse
	decodeErr := json.Unmarshal(body, &resp)
	if len(bytes.TrimSpace(body)) == 0 {
		decodeErr = fmt.Errorf("empty body")
	}

	if status >= 200 && status <= 299 {
		if decodeErr != nil {
			return nil, &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("decode body: %w", decodeErr)}
		}
		return &resp, nil
	}

	// A non-2xx status is a rejection only when the service explained itself.
	if decodeErr != nil {
		return nil, &TransportError{Op: op, StatusCode: status, Err: fmt.Errorf("unexpected status %s", http.StatusText(status))}
	}
	resp.Success = false
	return &resp, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("identity service request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}

	c.logger.Debug("identity service request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}
