package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/travelrec/internal/config"
	"github.com/dshills/travelrec/internal/httpapi"
	"github.com/dshills/travelrec/internal/ingest"
	"github.com/dshills/travelrec/internal/logging"
	"github.com/dshills/travelrec/internal/mcp"
	"github.com/dshills/travelrec/internal/recommender"
	"github.com/dshills/travelrec/internal/sentiment"
	"github.com/dshills/travelrec/internal/service"
	"github.com/dshills/travelrec/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const usage = `Usage: travelrec <command> [flags]

Commands:
  serve            Start the HTTP API
  mcp              Start the MCP server on stdio
  seed             Import places and generate rating history
    --csv PATH     Places CSV (default from config)
    --reset        Drop and recreate the schema first
  --version        Print version information
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Handle version flag
	if os.Args[1] == "--version" || os.Args[1] == "version" {
		fmt.Printf("travelrec\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Schema Version: %s\n", storage.CurrentSchemaVersion)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is reserved for the MCP protocol
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	log := logging.With("main")

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, cfg)
	case "mcp":
		err = runMCP(ctx, cfg)
	case "seed":
		err = runSeed(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
	log.Info().Str("command", os.Args[1]).Msg("stopped")
}

func openStore(cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logging.Info().
		Str("path", cfg.Database.Path).
		Str("build_mode", storage.BuildMode).
		Str("driver", storage.DriverName).
		Msg("storage opened")
	return store, nil
}

func newService(cfg *config.Config, store storage.Storage) *service.Service {
	seed := cfg.Recommend.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return service.New(store, sentiment.NewAnalyzer(cfg.Sentiment.CacheSize),
		service.WithRand(rand.New(rand.NewSource(seed))),
		service.WithQuotas(recommender.Quotas{
			System:        cfg.Recommend.QuotaSystem,
			Collaborative: cfg.Recommend.QuotaCollaborative,
			Graph:         cfg.Recommend.QuotaGraph,
		}),
		service.WithNeighbors(cfg.Recommend.Neighbors),
	)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	logging.Info().Str("version", version).Msg("travelrec HTTP API starting")
	return httpapi.New(newService(cfg, store), cfg.Server).ListenAndServe(ctx)
}

func runMCP(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	mcp.ServerVersion = version
	return mcp.NewServer(newService(cfg, store)).Serve(ctx)
}

func runSeed(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	csvPath := fs.String("csv", cfg.Ingest.CSVPath, "places CSV path")
	reset := fs.Bool("reset", false, "drop and recreate the schema first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	in := ingest.New(store, sentiment.NewAnalyzer(cfg.Sentiment.CacheSize))
	stats, err := in.Seed(ctx, ingest.SeedOptions{
		CSVPath:   *csvPath,
		BatchSize: cfg.Ingest.BatchSize,
		Reset:     *reset,
		History: ingest.HistoryOptions{
			Users:     cfg.Ingest.Users,
			MinVisits: cfg.Ingest.MinVisits,
			MaxVisits: cfg.Ingest.MaxVisits,
			Seed:      cfg.Ingest.Seed,
		},
	})
	if err != nil {
		return err
	}

	for i, msg := range stats.ErrorMessages {
		if i == 5 {
			logging.Warn().Int("remaining", len(stats.ErrorMessages)-i).Msg("more rows failed")
			break
		}
		logging.Warn().Str("error", msg).Msg("row skipped")
	}
	fmt.Fprintf(os.Stderr, "Seeded %d places, %d users, %d reviews in %s\n",
		stats.PlacesImported, stats.UsersGenerated, stats.ReviewsGenerated, stats.Duration.Round(time.Millisecond))
	return nil
}
