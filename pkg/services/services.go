package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Well-known service names.
	Album   = "album"
	Song    = "song"
	YouTube = "youtube"

	// Profiles select one of the known youtube deployments.
	ProfileZelda  = "zelda"
	ProfileLocal  = "local"
	ProfileLegacy = "legacy"

	DefaultProfile = ProfileZelda

	defaultTimeoutSeconds = 10
)

// ErrUnknownService is returned when a handle name is not configured.
var ErrUnknownService = errors.New("unknown service")

// configFile represents the structure of the services configuration file.
type configFile struct {
	Services []ServiceConfig `json:"services" yaml:"services"`
}

// ServiceConfig describes one backend the client talks to.
type ServiceConfig struct {
	Name              string            `json:"name" yaml:"name"`
	BaseURL           string            `json:"base_url" yaml:"base_url"`
	Headers           map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds    int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64           `json:"requests_per_second" yaml:"requests_per_second"`
	Enabled           *bool             `json:"enabled" yaml:"enabled"`
}

var profiles = map[string]map[string]string{
	ProfileZelda: {
		Album:   "http://zelda:5000",
		Song:    "http://zelda:5001",
		YouTube: "http://zelda:5001",
	},
	ProfileLocal: {
		Album:   "http://zelda:5000",
		Song:    "http://zelda:5001",
		YouTube: "http://localhost:8080",
	},
	ProfileLegacy: {
		Album:   "http://zelda:5000",
		Song:    "http://zelda:5001",
		YouTube: "http://zelda:6000",
	},
}

// Profiles lists the known profile names in sorted order.
func Profiles() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Defaults returns the hard-coded service set for profile. An empty profile
// selects DefaultProfile.
func Defaults(profile string) ([]ServiceConfig, error) {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		profile = DefaultProfile
	}
	urls, ok := profiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown service profile %q (known: %s)", profile, strings.Join(Profiles(), ", "))
	}

	out := make([]ServiceConfig, 0, len(urls))
	for _, name := range []string{Album, Song, YouTube} {
		out = append(out, sanitizeServiceConfig(ServiceConfig{Name: name, BaseURL: urls[name]}))
	}
	return out, nil
}

// ConfigRegistry holds service definitions loaded from a config file.
type ConfigRegistry struct {
	mu       sync.RWMutex
	services []ServiceConfig
	idx      map[string]ServiceConfig
}

// LoadRegistry loads service definitions from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("services file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read services file: %w", err)
	}

	fileReg, err := parseServiceRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Services) == 0 {
		return nil, errors.New("services file contains no services entries")
	}

	return newConfigRegistry(fileReg.Services)
}

func newConfigRegistry(cfgs []ServiceConfig) (*ConfigRegistry, error) {
	reg := &ConfigRegistry{
		services: make([]ServiceConfig, len(cfgs)),
		idx:      make(map[string]ServiceConfig, len(cfgs)),
	}
	for i := range cfgs {
		cfg := sanitizeServiceConfig(cfgs[i])
		if err := validateServiceConfig(cfg); err != nil {
			return nil, fmt.Errorf("services[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.Name]; exists {
			return nil, fmt.Errorf("duplicate service name %q", cfg.Name)
		}
		reg.services[i] = cfg
		reg.idx[cfg.Name] = cfg
	}
	return reg, nil
}

func parseServiceRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("services file format not recognized (expected YAML or JSON)")
}

// sanitizeServiceConfig trims fields and fills defaults. Base URLs are kept
// verbatim apart from surrounding whitespace.
func sanitizeServiceConfig(cfg ServiceConfig) ServiceConfig {
	cfg.Name = strings.ToLower(strings.TrimSpace(cfg.Name))
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Headers = sanitizeHeaders(cfg.Headers)
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.RequestsPerSecond < 0 {
		cfg.RequestsPerSecond = 0
	}
	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	return cfg
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateServiceConfig(cfg ServiceConfig) error {
	if cfg.Name == "" {
		return errors.New("name is required")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required for service %q", cfg.Name)
	}
	return nil
}

// ByName returns the service config by name.
func (r *ConfigRegistry) ByName(name string) (ServiceConfig, bool) {
	if r == nil {
		return ServiceConfig{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[name]
	return cfg, ok
}

// All returns all configured services in file order.
func (r *ConfigRegistry) All() []ServiceConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ServiceConfig, len(r.services))
	copy(out, r.services)
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg ServiceConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// Merge overlays overrides onto base by service name. Fields left empty in an
// override keep the base value; unknown names are appended.
func Merge(base []ServiceConfig, overrides ...ServiceConfig) []ServiceConfig {
	out := make([]ServiceConfig, 0, len(base)+len(overrides))
	pos := make(map[string]int, len(base))
	for _, cfg := range base {
		cfg = sanitizeServiceConfig(cfg)
		pos[cfg.Name] = len(out)
		out = append(out, cfg)
	}

	for _, o := range overrides {
		name := strings.ToLower(strings.TrimSpace(o.Name))
		i, ok := pos[name]
		if !ok {
			pos[name] = len(out)
			out = append(out, sanitizeServiceConfig(o))
			continue
		}
		cur := out[i]
		if v := strings.TrimSpace(o.BaseURL); v != "" {
			cur.BaseURL = v
		}
		if hdrs := sanitizeHeaders(o.Headers); len(hdrs) > 0 {
			merged := make(map[string]string, len(cur.Headers)+len(hdrs))
			for k, v := range cur.Headers {
				merged[k] = v
			}
			for k, v := range hdrs {
				merged[k] = v
			}
			cur.Headers = merged
		}
		if o.TimeoutSeconds > 0 {
			cur.TimeoutSeconds = o.TimeoutSeconds
		}
		if o.RequestsPerSecond > 0 {
			cur.RequestsPerSecond = o.RequestsPerSecond
		}
		if o.Enabled != nil {
			v := *o.Enabled
			cur.Enabled = &v
		}
		out[i] = cur
	}
	return out
}
