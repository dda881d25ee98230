package publishers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/library-maintenance/libclient/internal/logger"
	"github.com/library-maintenance/libclient/pkg/httpclient"
)

type httpPublisher struct {
	id     string
	typ    string
	method string
	path   string
	handle *httpclient.Handle
	log    logger.Logger
}

// newHTTPPublisher splits the sink URL into a handle base and a request path
// so the configured URL is hit verbatim.
func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	u, err := url.Parse(cfg.HTTP.URL)
	if err != nil {
		return nil, fmt.Errorf("publisher %q: parse url: %w", cfg.ID, err)
	}
	base := u.Scheme + "://" + u.Host

	headers := httpclient.JSONHeaders()
	for k, v := range cfg.HTTP.Headers {
		if strings.EqualFold(k, httpclient.HeaderContentType) {
			continue
		}
		headers[k] = v
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	handle, err := httpclient.New(base, headers, httpclient.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}

	method := cfg.HTTP.Method
	if method == "" {
		method = httpDefaultMethod
	}

	return &httpPublisher{
		id:     cfg.ID,
		typ:    TypeHTTP,
		method: method,
		path:   u.RequestURI(),
		handle: handle,
		log:    logger.Ensure(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return h.typ }

// Publish sends the event as a JSON body; non-2xx responses are errors.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	if _, err := h.handle.Execute(ctx, h.method, h.path, evt); err != nil {
		h.log.ErrorObj("http publisher send failed", "publisher_http_error", map[string]any{
			"publisher_id": h.id,
			"error":        err.Error(),
		})
		return err
	}
	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"event_id":     evt.ID,
	})
	return nil
}
