package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clearseek/clearseek/internal/config"
	"github.com/clearseek/clearseek/internal/database"
	"github.com/clearseek/clearseek/internal/log"
	"github.com/clearseek/clearseek/internal/model"
	"github.com/clearseek/clearseek/internal/report"
	"github.com/clearseek/clearseek/internal/research"
)

// topHubCount is how many most-linked pages the report shows.
const topHubCount = 10

// NewResearchCmd creates the research command.
func NewResearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research [seed-url]",
		Short: "Crawl a site and build a queryable knowledge base",
		Long: `Research crawls a website breadth-first from the seed URL within
explicit budgets, extracts and indexes the text of each page, and
writes a Markdown report of what it found.

The crawl is polite by default: robots.txt rules and crawl-delay are
honored, every domain is paced with a minimum delay, and the page,
depth, and time budgets put a hard ceiling on the session.

Examples:
  # Crawl with defaults (depth 3, 100 pages, 10 minutes)
  clearseek research https://go.dev/doc/

  # Deeper crawl of one documentation tree, then ask a question
  clearseek research --mode deep-dive -q "how does the GC pace itself" https://tip.golang.org/doc/gc-guide

  # Slow and quiet, widened to a second domain
  clearseek research --mode stealth --allow-domain pkg.go.dev https://go.dev/

  # Keep the knowledge base for later offline queries
  clearseek research --snapshot https://go.dev/doc/

Configuration file (.clearseek) example:
  sites:
    go.dev:
      delay: 5s
      disallow:
        - /play/
    example.com:
      delay: 2s`,
		Args: cobra.ExactArgs(1),
		RunE: runResearchCmd,
	}

	// Crawl budget flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the seed (seed is depth 0)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to process per session")
	cmd.Flags().DurationP("time-budget", "t", config.DefaultTimeBudget,
		"Wall-clock budget for the session (0 disables)")
	cmd.Flags().IntP("concurrency", "w", config.DefaultConcurrency,
		"Number of concurrent fetch workers")
	cmd.Flags().Int64("max-content-bytes", config.DefaultMaxContentBytes,
		"Response body cap per page in bytes")

	// Politeness flags
	cmd.Flags().Duration("delay", config.DefaultDelayFloor,
		"Minimum delay between fetches to the same domain")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt (only for infrastructure you operate)")
	cmd.Flags().StringSlice("allow-domain", nil,
		"Additional domains the crawl may enter (repeatable)")

	// Crawl shape flags
	cmd.Flags().StringP("mode", "m", string(config.ModeExploratory),
		"Research mode: exploratory, deep-dive, or stealth")
	cmd.Flags().Int("link-limit", config.DefaultLinkLimit,
		"Maximum links followed per page (0 = unlimited)")

	// Indexing flags
	cmd.Flags().Int("chunk-size", config.DefaultChunkSize,
		"Chunk length in runes for indexing")
	cmd.Flags().Int("chunk-overlap", config.DefaultChunkOverlap,
		"Rune overlap between adjacent chunks")
	cmd.Flags().String("embed-host", "",
		"Ollama-compatible embedding service URL (default: built-in embedder, or EMBED_HOST)")
	cmd.Flags().String("embed-model", "",
		"Embedding model name for --embed-host (or EMBED_MODEL)")

	// Question flags
	cmd.Flags().StringP("question", "q", "",
		"Question to answer from the knowledge base after the crawl")
	cmd.Flags().IntP("top-k", "k", 5,
		"Number of passages to retrieve for --question")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Write the Markdown report to a file instead of stdout")
	cmd.Flags().Bool("snapshot", false,
		"Persist the session to the local knowledge base (XDG data directory)")
	cmd.Flags().String("snapshot-dir", "",
		"Directory for the knowledge base database (implies --snapshot)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .clearseek in current or home directory)")

	return cmd
}

// runResearchCmd executes the research command.
func runResearchCmd(cmd *cobra.Command, args []string) error {
	// A .env file may carry EMBED_HOST / EMBED_MODEL; absence is fine.
	_ = godotenv.Load()

	cfg, overrides, err := buildResearchConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown: the session ends
	// in the aborted state and partial results are still reported.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runResearch(ctx, cmd, cfg, overrides, logger)
}

// buildResearchConfig creates a Config from cobra command flags.
func buildResearchConfig(cmd *cobra.Command, args []string) (*config.Config, *config.File, error) {
	cfg := config.New()
	cfg.SeedURL = args[0]

	var err error
	if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return nil, nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, nil, err
	}
	if cfg.TimeBudget, err = cmd.Flags().GetDuration("time-budget"); err != nil {
		return nil, nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, nil, err
	}
	if cfg.MaxContentBytes, err = cmd.Flags().GetInt64("max-content-bytes"); err != nil {
		return nil, nil, err
	}
	if cfg.DelayFloor, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, nil, err
	}
	if cfg.LinkLimit, err = cmd.Flags().GetInt("link-limit"); err != nil {
		return nil, nil, err
	}
	if cfg.ChunkSize, err = cmd.Flags().GetInt("chunk-size"); err != nil {
		return nil, nil, err
	}
	if cfg.ChunkOverlap, err = cmd.Flags().GetInt("chunk-overlap"); err != nil {
		return nil, nil, err
	}
	if cfg.AllowedDomains, err = cmd.Flags().GetStringSlice("allow-domain"); err != nil {
		return nil, nil, err
	}

	mode, err := cmd.Flags().GetString("mode")
	if err != nil {
		return nil, nil, err
	}
	cfg.Mode = config.Mode(mode)

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, nil, err
	}
	cfg.RespectRobots = !noRobots

	if cfg.EmbedHost, err = cmd.Flags().GetString("embed-host"); err != nil {
		return nil, nil, err
	}
	if cfg.EmbedHost == "" {
		cfg.EmbedHost = os.Getenv("EMBED_HOST")
	}
	if cfg.EmbedModel, err = cmd.Flags().GetString("embed-model"); err != nil {
		return nil, nil, err
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = os.Getenv("EMBED_MODEL")
	}

	snapshot, err := cmd.Flags().GetBool("snapshot")
	if err != nil {
		return nil, nil, err
	}
	snapshotDir, err := cmd.Flags().GetString("snapshot-dir")
	if err != nil {
		return nil, nil, err
	}
	switch {
	case snapshotDir != "":
		cfg.SnapshotDir = snapshotDir
	case snapshot:
		cfg.SnapshotDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	overrides, err := loadOverrides(cmd)
	if err != nil {
		return nil, nil, err
	}

	return cfg, overrides, nil
}

// loadOverrides loads the per-site configuration file. An explicitly
// specified file must exist; the default lookup is best-effort.
func loadOverrides(cmd *cobra.Command) (*config.File, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicit := configPath != ""
	found := config.FindConfigFile(configPath)
	if found == "" {
		if explicit {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, nil
	}

	overrides, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return overrides, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its
// parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runResearch executes the session and writes the report.
func runResearch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, overrides *config.File, logger *slog.Logger) error {
	opts := []research.Option{research.WithLogger(logger)}
	if overrides != nil {
		opts = append(opts, research.WithOverrides(overrides))
	}

	session, err := research.NewSession(cfg, opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	fmt.Printf("Researching %s (mode: %s, depth: %d, pages: %d)...\n",
		cfg.SeedURL, cfg.Mode, cfg.MaxDepth, cfg.MaxPages)
	start := time.Now()

	summary, err := session.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s in %s: %d pages, %d chunks indexed\n\n",
		summary.State, time.Since(start).Round(time.Millisecond),
		summary.TotalPages(), summary.ChunksIndexed)

	data := &report.Data{
		SessionID: session.ID,
		Seed:      cfg.SeedURL,
		Mode:      string(cfg.Mode),
		Summary:   summary,
		Hubs:      session.Graph().TopHubs(topHubCount),
	}

	question, err := cmd.Flags().GetString("question")
	if err != nil {
		return err
	}
	if question != "" {
		topK, err := cmd.Flags().GetInt("top-k")
		if err != nil {
			return err
		}
		passages, err := session.Query(ctx, question, topK)
		if err != nil {
			return fmt.Errorf("query knowledge base: %w", err)
		}
		data.Question = question
		data.Passages = passages
	}

	if err := outputReport(cmd, data); err != nil {
		return err
	}

	if cfg.SnapshotDir != "" {
		if err := saveSnapshot(ctx, cfg, session, summary, logger); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}

	return nil
}

// outputReport writes the Markdown report to the requested destination.
func outputReport(cmd *cobra.Command, data *report.Data) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	return report.NewMarkdownWriter(output).Write(data)
}

// saveSnapshot persists the session to the knowledge base database.
func saveSnapshot(ctx context.Context, cfg *config.Config, session *research.Session, summary *model.Summary, logger *slog.Logger) error {
	store, err := database.Open(cfg.SnapshotDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	graphSnapshot := session.Graph().TakeSnapshot()
	if err := store.SaveSession(ctx, session.ID, cfg.SeedURL, summary,
		session.Documents(), graphSnapshot.Edges, session.Chunks()); err != nil {
		return err
	}

	logger.Info("session snapshot saved", "path", store.Path(), "chunks", len(session.Chunks()))
	fmt.Printf("Knowledge base saved to %s\n", store.Path())
	return nil
}
