// Package config provides the configuration schema and loader for the
// dialogforge adapter.
package config

import (
	"os"
	"path/filepath"
)

// LogLevel controls log verbosity for the adapter.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for dialogforge.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Adapter AdapterConfig `yaml:"adapter"`
	Deploy  DeployConfig  `yaml:"deploy"`
}

// ServerConfig holds network and logging settings for the standalone webhook
// server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// AdapterConfig holds the Dialogflow adapter settings shared by the webhook
// and the generator.
type AdapterConfig struct {
	// Route is the webhook path Dialogflow fulfillment requests arrive on.
	// Must start with "/". Default: "/apiai".
	Route string `yaml:"route"`

	// DefaultLanguage is the agent's default language tag (e.g., "en").
	// Generation requires intent configurations for this language.
	DefaultLanguage string `yaml:"default_language"`

	// DefaultDisplayIsVoice copies the voice message into the response's
	// display text when no chat bubbles are set. Default: true.
	DefaultDisplayIsVoice bool `yaml:"default_display_is_voice"`

	// Entities maps logical entity-type names to Dialogflow system types
	// (e.g., number: "@sys.number"). Logical types absent from this map are
	// generated as custom entity types when a value list is supplied.
	Entities map[string]string `yaml:"entities"`

	// AuthenticationHeaders lists header name/value pairs that must be
	// present verbatim on every inbound webhook request. Configure the same
	// pairs in the Dialogflow console's fulfillment settings. Required:
	// requests cannot be authenticated without at least one pair.
	AuthenticationHeaders map[string]string `yaml:"authentication_headers"`
}

// DeployConfig holds settings for deploying generated agent bundles.
type DeployConfig struct {
	// CredentialsFile is the path to the Google service-account key JSON.
	// The GOOGLE_APPLICATION_CREDENTIALS environment variable takes
	// precedence; when both are empty, [DefaultCredentialsFile] is used.
	CredentialsFile string `yaml:"credentials_file"`

	// ProjectID overrides the Google Cloud project the agent lives in.
	// When empty, the project_id from the credentials file is used.
	ProjectID string `yaml:"project_id"`
}

// DefaultRoute is the webhook route used when none is configured.
const DefaultRoute = "/apiai"

// DefaultCredentialsFile returns the fallback service-account key location
// under the user's config directory.
func DefaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dialogforge", "credentials.json")
}
