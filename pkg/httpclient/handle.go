package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// HeaderContentType is the only default header every service handle carries.
	HeaderContentType = "Content-Type"
	// ContentTypeJSON is the value bound to HeaderContentType.
	ContentTypeJSON = "application/json"

	defaultTimeout = 10 * time.Second
)

// JSONHeaders returns a fresh default header set for JSON services.
func JSONHeaders() map[string]string {
	return map[string]string{HeaderContentType: ContentTypeJSON}
}

// Handle is an HTTP client bound to a fixed base URL and default headers.
// It is safe for concurrent use and is never mutated after New returns.
type Handle struct {
	baseURL string
	headers map[string]string
	client  *resty.Client
	limiter *rate.Limiter
}

var _ Client = (*Handle)(nil)

type options struct {
	timeout time.Duration
	rps     float64
	logger  resty.Logger
}

// Option tunes the transport behind a handle.
type Option func(*options)

// WithTimeout bounds every request made through the handle.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRateLimiter caps outgoing requests per second. Requests over the cap
// wait for a slot or until their context ends.
func WithRateLimiter(rps float64) Option {
	return func(o *options) {
		if rps > 0 {
			o.rps = rps
		}
	}
}

// WithLogger routes resty's internal warnings (for example a *zap.SugaredLogger).
func WithLogger(l resty.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a handle for baseURL whose requests always carry headers.
// The headers map is copied; later changes by the caller are not observed.
func New(baseURL string, headers map[string]string, opts ...Option) (*Handle, error) {
	baseURL = strings.TrimSpace(baseURL)
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}

	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	hdrs := copyHeaders(headers)

	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(o.timeout)
	if len(hdrs) > 0 {
		c.SetHeaders(hdrs)
	}
	if o.logger != nil {
		c.SetLogger(o.logger)
	}

	h := &Handle{
		baseURL: baseURL,
		headers: hdrs,
		client:  c,
	}
	if o.rps > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}
	return h, nil
}

// MustNew is like New but panics on an invalid base URL.
func MustNew(baseURL string, headers map[string]string, opts ...Option) *Handle {
	h, err := New(baseURL, headers, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q in %q", ErrInvalidBaseURL, u.Scheme, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidBaseURL, raw)
	}
	return nil
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}

// BaseURL returns the base URL exactly as configured.
func (h *Handle) BaseURL() string { return h.baseURL }

// DefaultHeaders returns a copy of the headers attached to every request.
func (h *Handle) DefaultHeaders() map[string]string { return copyHeaders(h.headers) }

// Get issues a GET for path and decodes a JSON response into out.
func (h *Handle) Get(ctx context.Context, path string, out any) error {
	return h.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with body encoded as JSON and decodes the response into out.
func (h *Handle) Post(ctx context.Context, path string, body, out any) error {
	return h.do(ctx, http.MethodPost, path, body, out)
}

func (h *Handle) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := h.Execute(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, h.resolve(path), err)
	}
	return nil
}

// Execute sends a request relative to the base URL. Non-2xx statuses are
// returned as *StatusError alongside a nil response.
func (h *Handle) Execute(ctx context.Context, method, path string, body any) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait %s %s: %w", method, h.resolve(path), err)
		}
	}
	req := h.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("http request %s %s: %w", method, h.resolve(path), err)
	}
	if code := resp.StatusCode(); code/100 != 2 {
		return nil, &StatusError{
			Method:  method,
			URL:     h.resolve(path),
			Code:    code,
			Snippet: readBodySnippet(resp.Body()),
		}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func (h *Handle) resolve(path string) string {
	return strings.TrimRight(h.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
