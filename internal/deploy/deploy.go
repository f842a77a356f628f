package deploy

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// backupFileName is the file the previous agent configuration is saved to,
// under <buildDir>/deployments.
const backupFileName = "backup-dialogflow.zip"

// Deployer replaces the deployed Dialogflow agent with a freshly generated
// bundle. The previous configuration is exported to disk first so a bad
// deployment can be rolled back by restoring the backup.
type Deployer struct {
	client *Client
}

// NewDeployer creates a [Deployer] using client.
func NewDeployer(client *Client) *Deployer {
	return &Deployer{client: client}
}

// Execute backs up the currently deployed agent to
// <buildDir>/deployments/backup-dialogflow.zip, then restores
// <buildDir>/apiai/bundle.zip as the new agent. Failures in either half are
// logged and returned; a failed backup aborts before the restore so the
// remote agent is never replaced without a safety copy.
func (d *Deployer) Execute(ctx context.Context, buildDir string) error {
	if err := d.backup(ctx, buildDir); err != nil {
		slog.Error("agent backup failed", "err", err)
		return err
	}
	if err := d.restore(ctx, buildDir); err != nil {
		slog.Error("agent restore failed", "err", err)
		return err
	}
	slog.Info("agent deployed", "build_dir", buildDir)
	return nil
}

// backup exports the deployed agent and writes it as a zip under
// <buildDir>/deployments.
func (d *Deployer) backup(ctx context.Context, buildDir string) error {
	operation, err := d.client.ExportAgent(ctx)
	if err != nil {
		return err
	}
	content, err := base64.StdEncoding.DecodeString(operation.Response.AgentContent)
	if err != nil {
		return fmt.Errorf("deploy: decode exported agent content: %w", err)
	}

	dir := filepath.Join(buildDir, "deployments")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("deploy: create backup directory: %w", err)
	}
	path := filepath.Join(dir, backupFileName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("deploy: write backup: %w", err)
	}
	slog.Info("deployed agent backed up", "path", path)
	return nil
}

// restore uploads the generated bundle as the new agent configuration.
func (d *Deployer) restore(ctx context.Context, buildDir string) error {
	path := filepath.Join(buildDir, "apiai", "bundle.zip")
	bundle, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("deploy: read bundle %q (run generate first): %w", path, err)
	}
	return d.client.RestoreAgent(ctx, base64.StdEncoding.EncodeToString(bundle))
}
