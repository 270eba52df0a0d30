// PlantCopilot — conversational assistant for industrial-machine operators.
// Entry point: flag handling plus full service wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/plantcopilot/plantcopilot/internal/api"
	"github.com/plantcopilot/plantcopilot/internal/api/handlers"
	"github.com/plantcopilot/plantcopilot/internal/domain/assistant"
	"github.com/plantcopilot/plantcopilot/internal/domain/intent"
	"github.com/plantcopilot/plantcopilot/internal/domain/livedata"
	"github.com/plantcopilot/plantcopilot/internal/domain/retrieval"
	"github.com/plantcopilot/plantcopilot/internal/infra/config"
	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
	"github.com/plantcopilot/plantcopilot/internal/infra/postgres"
	"github.com/plantcopilot/plantcopilot/internal/infra/vectorstore"
	"github.com/plantcopilot/plantcopilot/internal/server"
	"github.com/plantcopilot/plantcopilot/internal/version"
)

const shutdownGrace = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("plantcopilot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config", "", "Path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if err := serve(*configPath); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		return 1
	}
	return 0
}

func serve(configPath string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := config.Load()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	providers := map[string]llm.Provider{
		"ollama": newProvider("ollama", cfg.Ollama, cfg),
		"ionos":  newProvider("ionos", cfg.Ionos, cfg),
		"opea":   newProvider("opea", cfg.Opea, cfg),
	}
	router := llm.NewRouter(providers, cfg.HostProvider)

	store, err := vectorstore.New(cfg.VectorDBPath)
	if err != nil {
		return err
	}

	db := postgres.Connect(cfg.PostgresDSN, cfg.PostgresPassword)
	defer db.Close() //nolint:errcheck

	orch := assistant.New(
		router,
		intent.NewClassifier(),
		livedata.NewTimeSeriesStore(db),
		livedata.NewAlertClient(cfg.AlertAPIURL, cfg.AlertAPIKey),
		retrieval.NewEngine(router, store, retrieval.Options{
			TopK:           cfg.RetrievalTopK,
			RerankEnabled:  cfg.RerankEnabled,
			RerankProvider: cfg.RerankProvider,
		}),
		assistant.Options{
			ChartIntentEnabled: cfg.ChartIntentEnabled,
			DefaultCollection:  cfg.DefaultCollection,
		},
	)

	health := make(map[string]handlers.HealthChecker, len(providers))
	for key, p := range providers {
		health[key] = p
	}

	apiRouter := api.NewRouter(api.Deps{
		Assistant:         orch,
		Router:            router,
		Store:             store,
		Health:            health,
		DB:                dbPinger{db: db},
		DefaultCollection: cfg.DefaultCollection,
	})

	// The chat endpoint may block for the full completion budget, so the
	// write timeout has to outlive it.
	srvConfig := server.DefaultConfig().WithHandlerBudget(cfg.ChatTimeout)
	srvConfig.Host = cfg.Host
	srvConfig.Port = cfg.Port
	srv := server.NewServer(apiRouter, srvConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newProvider builds one backend's gateway from its endpoint set.
func newProvider(key string, b config.BackendConfig, cfg config.Config) *llm.HTTPProvider {
	return llm.NewHTTPProvider(llm.Options{
		Key:        key,
		Chat:       llm.Endpoint{BaseURL: b.ChatURL, Model: b.ChatModel, APIKey: b.APIKey, Timeout: cfg.ChatTimeout},
		Embeddings: llm.Endpoint{BaseURL: b.EmbedURL, Model: b.EmbedModel, APIKey: b.APIKey, Timeout: cfg.EmbedTimeout},
		Rerank:     llm.Endpoint{BaseURL: b.RerankURL, Model: b.RerankModel, APIKey: b.APIKey, Timeout: cfg.EmbedTimeout},
		TargetDim:  cfg.TargetDim,
	})
}

// dbPinger adapts the bun connection to the health handler's Pinger.
type dbPinger struct {
	db *bun.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, p.db)
}

func printHelp(out io.Writer) {
	helpText := `PlantCopilot - conversational assistant for industrial-machine operators

Usage:
  plantcopilot [options]

Options:
  --version        Show version information
  --help           Show this help message
  --config <path>  YAML config file overlaid on environment variables

Without flags the server starts and listens on HOST:PORT (default 0.0.0.0:8080).

Examples:
  plantcopilot --version
  plantcopilot --config ./plantcopilot.yaml`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
