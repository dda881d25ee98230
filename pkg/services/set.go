package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/library-maintenance/libclient/internal/logger"
	"github.com/library-maintenance/libclient/pkg/httpclient"
)

// Set holds the constructed client handles keyed by service name.
type Set struct {
	handles map[string]*httpclient.Handle
}

// Build creates one handle per enabled service. Every handle carries
// Content-Type: application/json regardless of configured extras.
func Build(cfgs []ServiceConfig, log logger.Logger, opts ...httpclient.Option) (*Set, error) {
	log = logger.Ensure(log)
	set := &Set{handles: make(map[string]*httpclient.Handle, len(cfgs))}

	for _, raw := range cfgs {
		cfg := sanitizeServiceConfig(raw)
		if !cfg.EnabledValue() {
			log.DebugObj("service disabled; skipping", "service", cfg.Name)
			continue
		}
		if err := validateServiceConfig(cfg); err != nil {
			return nil, err
		}
		if _, dup := set.handles[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate service name %q", cfg.Name)
		}

		headers := httpclient.JSONHeaders()
		for k, v := range cfg.Headers {
			if strings.EqualFold(k, httpclient.HeaderContentType) {
				continue
			}
			headers[k] = v
		}

		handleOpts := append([]httpclient.Option{
			httpclient.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
			httpclient.WithRateLimiter(cfg.RequestsPerSecond),
		}, opts...)

		h, err := httpclient.New(cfg.BaseURL, headers, handleOpts...)
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", cfg.Name, err)
		}
		set.handles[cfg.Name] = h

		log.DebugObj("service handle created", "service_handle", map[string]any{
			"name":     cfg.Name,
			"base_url": h.BaseURL(),
		})
	}

	return set, nil
}

// Handle returns the handle registered under name.
func (s *Set) Handle(name string) (*httpclient.Handle, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s != nil {
		if h, ok := s.handles[key]; ok {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownService, name)
}

// Album returns the album service handle.
func (s *Set) Album() (*httpclient.Handle, error) { return s.Handle(Album) }

// Song returns the song service handle.
func (s *Set) Song() (*httpclient.Handle, error) { return s.Handle(Song) }

// YouTube returns the youtube service handle.
func (s *Set) YouTube() (*httpclient.Handle, error) { return s.Handle(YouTube) }

// Names lists the configured service names in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.handles))
	for name := range s.handles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of handles in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.handles)
}
