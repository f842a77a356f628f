// Package deploy uploads generated agent bundles to Dialogflow, backing up
// the currently deployed configuration first.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/internal/observe"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// defaultBaseURL is the Dialogflow v2 projects endpoint.
const defaultBaseURL = "https://dialogflow.googleapis.com/v2/projects"

// credentialsEnvVar names the environment variable that overrides the
// configured service-account key path.
const credentialsEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"

// scopes are the OAuth scopes required for agent export/restore.
var scopes = []string{
	"https://www.googleapis.com/auth/dialogflow",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Client calls the Dialogflow v2 agent API with bearer-token authentication
// derived from a Google service-account key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	metrics    *observe.Metrics
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithBaseURL overrides the Dialogflow API endpoint. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the authenticated HTTP client. Used in tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMetrics sets the metrics instance API-call telemetry is recorded to.
func WithMetrics(m *observe.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a [Client] from the deployment configuration. The
// service-account key is resolved from the GOOGLE_APPLICATION_CREDENTIALS
// environment variable, then the configured path, then the default config
// location; a missing or unreadable key file fails here, before any network
// call.
func NewClient(ctx context.Context, cfg config.DeployConfig, opts ...ClientOption) (*Client, error) {
	path := resolveCredentialsFile(cfg)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deploy: google application credentials file %q is not readable: %w", path, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("deploy: parse credentials %q: %w", path, err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("deploy: no project id in %q and deploy.project_id is not set", path)
	}

	c := &Client{
		httpClient: oauth2.NewClient(ctx, creds.TokenSource),
		baseURL:    defaultBaseURL,
		projectID:  projectID,
	}
	for _, o := range opts {
		o(c)
	}
	if c.metrics == nil {
		c.metrics = observe.Default()
	}
	return c, nil
}

// resolveCredentialsFile picks the service-account key path: environment
// variable first, then configuration, then the per-user default.
func resolveCredentialsFile(cfg config.DeployConfig) string {
	if path := os.Getenv(credentialsEnvVar); path != "" {
		return path
	}
	if cfg.CredentialsFile != "" {
		return cfg.CredentialsFile
	}
	return config.DefaultCredentialsFile()
}

// ExportAgent exports the currently deployed agent. The returned operation
// carries the agent zip base64-encoded in its response.
func (c *Client) ExportAgent(ctx context.Context) (*dialogflow.ExportAgentOperation, error) {
	var operation dialogflow.ExportAgentOperation
	if err := c.post(ctx, "export", struct{}{}, &operation); err != nil {
		return nil, err
	}
	if operation.Response == nil || operation.Response.AgentContent == "" {
		return nil, fmt.Errorf("deploy: agent export for project %q returned no agent content", c.projectID)
	}
	return &operation, nil
}

// RestoreAgent replaces the deployed agent with the given base64-encoded
// agent zip.
func (c *Client) RestoreAgent(ctx context.Context, agentContent string) error {
	return c.post(ctx, "restore", dialogflow.RestoreAgentRequest{AgentContent: agentContent}, nil)
}

// post issues one agent:<operation> call and decodes the JSON response into
// out when non-nil.
func (c *Client) post(ctx context.Context, operation string, body, out any) error {
	status := "ok"
	defer func() {
		c.metrics.DeployRequests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		status = "error"
		return fmt.Errorf("deploy: marshal agent:%s request: %w", operation, err)
	}

	url := fmt.Sprintf("%s/%s/agent:%s", c.baseURL, c.projectID, operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		status = "error"
		return fmt.Errorf("deploy: build agent:%s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status = "error"
		return fmt.Errorf("deploy: agent:%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status = fmt.Sprint(resp.StatusCode)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("deploy: agent:%s returned %s: %s", operation, resp.Status, snippet)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		status = "error"
		return fmt.Errorf("deploy: decode agent:%s response: %w", operation, err)
	}
	return nil
}
