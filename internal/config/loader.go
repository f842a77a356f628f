package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	cfg.Adapter.DefaultDisplayIsVoice = true
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills in unset optional values.
func applyDefaults(cfg *Config) {
	if cfg.Adapter.Route == "" {
		cfg.Adapter.Route = DefaultRoute
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Adapter.Entities == nil {
		cfg.Adapter.Entities = map[string]string{}
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Adapter
	if !strings.HasPrefix(cfg.Adapter.Route, "/") {
		errs = append(errs, fmt.Errorf("adapter.route %q must start with %q", cfg.Adapter.Route, "/"))
	}
	if cfg.Adapter.DefaultLanguage == "" {
		errs = append(errs, errors.New("adapter.default_language is required"))
	}
	for name, value := range cfg.Adapter.AuthenticationHeaders {
		if name == "" || value == "" {
			errs = append(errs, fmt.Errorf("adapter.authentication_headers entry %q must have a non-empty name and value", name))
		}
	}
	if len(cfg.Adapter.AuthenticationHeaders) == 0 {
		// The extractor refuses all requests without authentication headers;
		// a missing map is only fatal at request time, so warn here.
		slog.Warn("adapter.authentication_headers is empty; all webhook requests will be rejected")
	}
	for logical, dataType := range cfg.Adapter.Entities {
		if dataType == "" {
			errs = append(errs, fmt.Errorf("adapter.entities[%q] must name a Dialogflow type", logical))
		}
	}

	return errors.Join(errs...)
}
