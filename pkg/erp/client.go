package erp

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ofuentes/wms-bridge/pkg/config"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/logger"
)

const (
	sessionCookieName = "B1SESSION"
	loginPath         = "/b1s/v1/Login"
	basePath          = "/b1s/v1"

	// session cookies expire server-side; renew a minute early
	sessionSlack = time.Minute
)

var errLoggerRequired = errors.New("erp logger is required")

// ErrOffline is returned for document operations when the Service Layer
// connection is not configured.
var ErrOffline = pkgerrors.New(pkgerrors.CodeDependency, "erp connection not configured")

// Client talks to the Service Layer with centralized session handling,
// logging, and error mapping. A client built from an incomplete config runs
// in offline mode: lookups and postings fail fast with ErrOffline.
type Client struct {
	cfg        config.ERPConfig
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger

	mu             sync.Mutex
	sessionID      string
	sessionExpires time.Time
}

// NewClient initializes the Service Layer wrapper.
func NewClient(ctx context.Context, cfg config.ERPConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	transport := http.DefaultTransport
	if cfg.SkipVerifyTLS {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logg,
	}

	if !cfg.Configured() {
		logg.Warn(ctx, "erp client running in offline mode")
		return c, nil
	}

	logg.Info(ctx, "erp client initialized")
	return c, nil
}

// Offline reports whether the client lacks a usable Service Layer config.
func (c *Client) Offline() bool {
	return !c.cfg.Configured()
}

// Ping verifies a session can be established.
func (c *Client) Ping(ctx context.Context) error {
	if c.Offline() {
		return ErrOffline
	}
	_, err := c.session(ctx)
	return err
}

// session returns a valid session cookie, logging in when needed.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" && time.Now().Before(c.sessionExpires) {
		return c.sessionID, nil
	}
	return c.loginLocked(ctx)
}

// invalidateSession drops the cached cookie so the next call logs in again.
func (c *Client) invalidateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = ""
}

func (c *Client) loginLocked(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{
		UserName:  c.cfg.Username,
		Password:  c.cfg.Password,
		CompanyDB: c.cfg.CompanyDB,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "erp login failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.mapError(resp, "login")
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode erp login response")
	}
	if lr.SessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "erp login returned empty session")
	}

	ttl := time.Duration(lr.SessionTimeout) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c.sessionID = lr.SessionID
	c.sessionExpires = time.Now().Add(ttl - sessionSlack)

	c.logger.Info(ctx, "erp session established")
	return c.sessionID, nil
}

// do issues one authenticated request, retrying exactly once on a 401 by
// re-logging in.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.Offline() {
		return ErrOffline
	}

	for attempt := 0; attempt < 2; attempt++ {
		sessionID, err := c.session(ctx)
		if err != nil {
			return err
		}

		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("marshal erp request: %w", err)
			}
			reader = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, reader)
		if err != nil {
			return fmt.Errorf("build erp request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("erp %s %s failed", method, path))
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.invalidateSession()
			continue
		}

		return c.finish(resp, method, path, out)
	}

	return pkgerrors.New(pkgerrors.CodeDependency, "erp session could not be renewed")
}

func (c *Client) finish(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp, fmt.Sprintf("%s %s", method, path))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode erp response")
	}
	return nil
}

// getList fetches a collection endpoint following odata.nextLink paging up
// to the configured page cap.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	next := path
	for i := 0; i < 20 && next != ""; i++ {
		var page odataList[T]
		if err := c.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Value...)
		next = ""
		if page.NextLink != nil {
			// nextLink is relative to the service root
			next = "/" + strings.TrimPrefix(*page.NextLink, "/")
		}
	}
	return all, nil
}

func (c *Client) mapError(resp *http.Response, op string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := strings.TrimSpace(string(raw))
	var slErr serviceLayerError
	if err := json.Unmarshal(raw, &slErr); err == nil && slErr.Error.Message.Value != "" {
		message = slErr.Error.Message.Value
	}

	code := domainCodeForStatus(resp.StatusCode)
	err := pkgerrors.New(code, fmt.Sprintf("erp %s failed: %s", op, message))
	if pkgerrors.MetadataFor(code).DetailsAllowed {
		return err.WithDetails(map[string]any{"status": resp.StatusCode})
	}
	return err
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeDependency
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}

func escapeKey(value string) string {
	return url.PathEscape(strings.ReplaceAll(value, "'", "''"))
}
