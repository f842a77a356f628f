// Command dialogforge is the Dialogflow adapter CLI: it generates agent
// configuration bundles from a project definition, deploys them to a
// Dialogflow agent, and serves the fulfillment webhook standalone.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/dialogforge/internal/config"
	"github.com/MrWong99/dialogforge/internal/deploy"
	"github.com/MrWong99/dialogforge/internal/generate"
	"github.com/MrWong99/dialogforge/internal/health"
	"github.com/MrWong99/dialogforge/internal/observe"
	"github.com/MrWong99/dialogforge/internal/webhook"
	"github.com/MrWong99/dialogforge/pkg/assistant"
)

// version is stamped via -ldflags at release time.
var version = "dev"

const usageText = `Usage: dialogforge <command> [flags]

Commands:
  generate   build the Dialogflow agent bundle from a project file
  deploy     back up the deployed agent, then upload the generated bundle
  serve      run the fulfillment webhook server standalone

Run "dialogforge <command> -h" for command flags.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "generate":
		return runGenerate(ctx, args[1:])
	case "deploy":
		return runDeploy(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	case "-h", "--help", "help":
		fmt.Print(usageText)
		return 0
	}
	fmt.Fprintf(os.Stderr, "dialogforge: unknown command %q\n\n%s", args[0], usageText)
	return 2
}

// loadConfig loads and validates the YAML config and installs the logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found", path)
		}
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.Server.LogLevel))
	return cfg, nil
}

func runGenerate(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	projectPath := fs.String("project", "project.yaml", "path to the YAML project definition")
	buildDir := fs.String("build-dir", "builds/current", "directory the apiai/ output tree is created under")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dialogforge: %v\n", err)
		return 1
	}

	input, store, err := generate.LoadProject(*projectPath, *buildDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dialogforge: %v\n", err)
		return 1
	}

	generator := generate.New(cfg.Adapter, store)
	if err := generator.Execute(ctx, input); err != nil {
		slog.Error("generation failed", "err", err)
		return 1
	}
	return 0
}

func runDeploy(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	buildDir := fs.String("build-dir", "builds/current", "build directory containing apiai/bundle.zip")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dialogforge: %v\n", err)
		return 1
	}

	client, err := deploy.NewClient(ctx, cfg.Deploy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dialogforge: %v\n", err)
		return 1
	}
	if err := deploy.NewDeployer(client).Execute(ctx, *buildDir); err != nil {
		return 1
	}
	return 0
}

func runServe(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dialogforge: %v\n", err)
		return 1
	}

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		slog.Error("failed to initialise metrics provider", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("POST "+cfg.Adapter.Route, webhook.NewHandler(cfg.Adapter, defaultDispatcher()))
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(health.Checker{
		Name: "auth-config",
		Check: func(context.Context) error {
			if len(cfg.Adapter.AuthenticationHeaders) == 0 {
				return errors.New("no authentication_headers configured")
			}
			return nil
		},
	}).Register(mux)

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("dialogforge serving",
		"listen_addr", cfg.Server.ListenAddr,
		"route", cfg.Adapter.Route,
		"version", version,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// defaultDispatcher answers every turn by echoing the recognised intent.
// Embedding applications replace it by hosting [webhook.Handler] themselves
// with their own [assistant.Dispatcher].
func defaultDispatcher() assistant.Dispatcher {
	return assistant.DispatcherFunc(func(_ context.Context, extraction assistant.Extraction) (assistant.Response, error) {
		return assistant.Response{
			VoiceMessage: fmt.Sprintf("Recognised intent %s.", extraction.Intent),
		}, nil
	})
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
