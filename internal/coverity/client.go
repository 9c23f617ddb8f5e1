package coverity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"covcheck/internal/logging"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const (
	viewsPath        = "/api/views/v1"
	viewContentsPath = "/api/viewContents/issues/v1/"

	// maxErrorBody caps how much of an error response body is echoed back.
	maxErrorBody = 512
)

// Client is a [Connector] speaking the Coverity Connect REST API with HTTP
// basic auth.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new REST client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("coverity")
	return c
}

// Connect verifies the server answers an authenticated view listing and
// returns a session bound to cfg.
func (c *Client) Connect(ctx context.Context, cfg ServerConfig) (Session, error) {
	s := &restSession{client: c, cfg: cfg}
	if _, err := s.ListViews(ctx); err != nil {
		return nil, err
	}
	c.logger.Debug("connected", zap.String(logging.KeyInstanceURL, cfg.String()))
	return s, nil
}

// AttemptConnection probes the view listing endpoint and reports the
// outcome without returning an error.
func (c *Client) AttemptConnection(ctx context.Context, cfg ServerConfig) ConnectionResult {
	resp, err := c.get(ctx, cfg, cfg.Endpoint(viewsPath, nil))
	if err != nil {
		return ConnectionResult{Failure: true, FailureMessage: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	code := resp.StatusCode
	if code < 200 || code > 299 {
		return ConnectionResult{
			Failure:        true,
			FailureMessage: http.StatusText(code),
			HTTPStatusCode: &code,
		}
	}
	return ConnectionResult{HTTPStatusCode: &code}
}

func (c *Client) get(ctx context.Context, cfg ServerConfig, endpoint string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cfg.Credentials != nil {
		req.SetBasicAuth(cfg.Credentials.Username, cfg.Credentials.Password)
	}

	c.logger.Debug("request", zap.String("endpoint", endpoint))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, pkgerrors.Wrap(err, "coverity request failed")
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// getJSON decodes a successful response into v, converting HTTP failures
// into [*WebServiceError] and undecodable bodies into [*IntegrationError].
func (c *Client) getJSON(ctx context.Context, cfg ServerConfig, endpoint string, v interface{}) error {
	resp, err := c.get(ctx, cfg, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newWebServiceError(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &IntegrationError{Message: "failed to decode response from " + endpoint, Err: err}
	}
	return nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

type restSession struct {
	client *Client
	cfg    ServerConfig
}

type viewsResponse struct {
	Views []View `json:"views"`
}

type viewContentsResponse struct {
	ViewContents *struct {
		TotalRows int `json:"totalRows"`
	} `json:"viewContentsV1"`
}

func (s *restSession) ListViews(ctx context.Context) ([]View, error) {
	var out viewsResponse
	if err := s.client.getJSON(ctx, s.cfg, s.cfg.Endpoint(viewsPath, nil), &out); err != nil {
		return nil, err
	}
	return out.Views, nil
}

func (s *restSession) IssueCount(ctx context.Context, projectName, viewName string) (int, error) {
	if projectName == "" || viewName == "" {
		return 0, fmt.Errorf("%w: project and view names are required", ErrIllegalArgument)
	}
	query := url.Values{}
	query.Set("projectId", projectName)
	query.Set("rowCount", "1")
	endpoint := s.cfg.Endpoint(viewContentsPath+viewName, query)

	var out viewContentsResponse
	if err := s.client.getJSON(ctx, s.cfg, endpoint, &out); err != nil {
		var wsErr *WebServiceError
		if errors.As(err, &wsErr) && wsErr.StatusCode == http.StatusNotFound {
			return 0, &IntegrationError{Message: fmt.Sprintf("could not find view %q for project %q", viewName, projectName)}
		}
		return 0, err
	}
	if out.ViewContents == nil {
		return 0, &IntegrationError{Message: fmt.Sprintf("view %q returned no contents", viewName)}
	}
	return out.ViewContents.TotalRows, nil
}
