package deploy_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/internal/deploy"
	"github.com/MrWong99/dialogforge/pkg/dialogflow"
)

// writeCredentials places a user-credential key file in a temp dir and points
// GOOGLE_APPLICATION_CREDENTIALS at it. User credentials parse without any
// token exchange, which keeps client construction offline.
func writeCredentials(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	key := `{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"token"}`
	if err := os.WriteFile(path, []byte(key), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
}

func newTestClient(t *testing.T, srv *httptest.Server) *deploy.Client {
	t.Helper()
	writeCredentials(t)
	client, err := deploy.NewClient(context.Background(), config.DeployConfig{ProjectID: "my-project"},
		deploy.WithBaseURL(srv.URL),
		deploy.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_MissingCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "nope.json"))

	_, err := deploy.NewClient(context.Background(), config.DeployConfig{ProjectID: "my-project"})
	if err == nil {
		t.Fatal("NewClient succeeded without a credentials file, want error")
	}
	if !strings.Contains(err.Error(), "credentials") {
		t.Errorf("error %q does not mention credentials", err)
	}
}

func TestNewClient_ProjectIDRequired(t *testing.T) {
	writeCredentials(t)

	_, err := deploy.NewClient(context.Background(), config.DeployConfig{})
	if err == nil {
		t.Fatal("NewClient succeeded without a project id, want error")
	}
	if !strings.Contains(err.Error(), "project id") {
		t.Errorf("error %q does not mention the project id", err)
	}
}

func TestExportAgent(t *testing.T) {
	content := base64.StdEncoding.EncodeToString([]byte("old-agent"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/my-project/agent:export" {
			t.Errorf("path = %q, want /my-project/agent:export", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		json.NewEncoder(w).Encode(dialogflow.ExportAgentOperation{
			Name:     "projects/my-project/operations/op-1",
			Done:     true,
			Response: &dialogflow.ExportAgentResponse{AgentContent: content},
		})
	}))
	defer srv.Close()

	operation, err := newTestClient(t, srv).ExportAgent(context.Background())
	if err != nil {
		t.Fatalf("ExportAgent: %v", err)
	}
	if operation.Response.AgentContent != content {
		t.Errorf("AgentContent = %q, want the exported zip", operation.Response.AgentContent)
	}
}

func TestExportAgent_EmptyContentFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dialogflow.ExportAgentOperation{Done: true})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ExportAgent(context.Background())
	if err == nil {
		t.Fatal("ExportAgent succeeded with no agent content, want error")
	}
}

func TestRestoreAgent(t *testing.T) {
	var gotBody dialogflow.RestoreAgentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/my-project/agent:restore" {
			t.Errorf("path = %q, want /my-project/agent:restore", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode restore body: %v", err)
		}
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	if err := newTestClient(t, srv).RestoreAgent(context.Background(), "Ym9keQ=="); err != nil {
		t.Fatalf("RestoreAgent: %v", err)
	}
	if gotBody.AgentContent != "Ym9keQ==" {
		t.Errorf("agentContent = %q, want the encoded bundle", gotBody.AgentContent)
	}
}

func TestRestoreAgent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"permission denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).RestoreAgent(context.Background(), "Ym9keQ==")
	if err == nil {
		t.Fatal("RestoreAgent succeeded on a 403, want error")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("error %q does not carry the response snippet", err)
	}
}

func TestDeployer_Execute(t *testing.T) {
	buildDir := t.TempDir()
	bundle := []byte("new-agent-zip")
	if err := os.MkdirAll(filepath.Join(buildDir, "apiai"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, "apiai", "bundle.zip"), bundle, 0o644); err != nil {
		t.Fatal(err)
	}

	var restored string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/my-project/agent:export":
			json.NewEncoder(w).Encode(dialogflow.ExportAgentOperation{
				Done: true,
				Response: &dialogflow.ExportAgentResponse{
					AgentContent: base64.StdEncoding.EncodeToString([]byte("old-agent-zip")),
				},
			})
		case "/my-project/agent:restore":
			var body dialogflow.RestoreAgentRequest
			json.NewDecoder(r.Body).Decode(&body)
			restored = body.AgentContent
			w.Write([]byte("{}"))
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	deployer := deploy.NewDeployer(newTestClient(t, srv))
	if err := deployer.Execute(context.Background(), buildDir); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	backup, err := os.ReadFile(filepath.Join(buildDir, "deployments", "backup-dialogflow.zip"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "old-agent-zip" {
		t.Errorf("backup = %q, want the exported agent", backup)
	}

	decoded, err := base64.StdEncoding.DecodeString(restored)
	if err != nil {
		t.Fatalf("decode restored content: %v", err)
	}
	if string(decoded) != string(bundle) {
		t.Errorf("restored = %q, want the generated bundle", decoded)
	}
}

func TestDeployer_Execute_MissingBundle(t *testing.T) {
	var restoreCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "agent:restore") {
			restoreCalled = true
		}
		json.NewEncoder(w).Encode(dialogflow.ExportAgentOperation{
			Done: true,
			Response: &dialogflow.ExportAgentResponse{
				AgentContent: base64.StdEncoding.EncodeToString([]byte("old-agent-zip")),
			},
		})
	}))
	defer srv.Close()

	deployer := deploy.NewDeployer(newTestClient(t, srv))
	err := deployer.Execute(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("Execute succeeded without a generated bundle, want error")
	}
	if restoreCalled {
		t.Error("restore was called even though the bundle was missing")
	}
}

func TestDeployer_Execute_ExportFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	deployer := deploy.NewDeployer(newTestClient(t, srv))
	if err := deployer.Execute(context.Background(), t.TempDir()); err == nil {
		t.Fatal("Execute succeeded with a failing export, want error")
	}
}
