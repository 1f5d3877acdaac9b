package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clearseek/clearseek/internal/config"
	"github.com/clearseek/clearseek/internal/database"
	"github.com/clearseek/clearseek/internal/index"
	"github.com/clearseek/clearseek/internal/retrieve"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question against the saved knowledge base",
		Long: `Query answers a question from knowledge bases saved by earlier
research sessions (research --snapshot). It rebuilds the vector index
from the snapshot database and prints the best-matching passages with
their source URLs.

The question must be embedded with the same model the snapshot was
built with. Snapshots from sessions that used an embedding service
need the same --embed-host and --embed-model (or EMBED_HOST and
EMBED_MODEL); otherwise the built-in embedder is used.

Examples:
  clearseek query "how does the garbage collector pace itself"
  clearseek query --top-k 10 "frontier scheduling"
  clearseek query --embed-host http://127.0.0.1:11434 --embed-model nomic-embed-text "pacing"`,
		Args: cobra.ExactArgs(1),
		RunE: runQueryCmd,
	}

	cmd.Flags().IntP("top-k", "k", 5,
		"Number of passages to retrieve")
	cmd.Flags().String("data-dir", "",
		"Knowledge base directory (default: XDG data directory)")
	cmd.Flags().String("granularity", string(retrieve.GranularityDocument),
		"Result deduplication: document, domain, or none")
	cmd.Flags().String("embed-host", "",
		"Embedding service the snapshot was built with (or EMBED_HOST)")
	cmd.Flags().String("embed-model", "",
		"Embedding model name for --embed-host (or EMBED_MODEL)")

	return cmd
}

// runQueryCmd executes the query command.
func runQueryCmd(cmd *cobra.Command, args []string) error {
	// A .env file may carry EMBED_HOST / EMBED_MODEL; absence is fine.
	_ = godotenv.Load()

	store, err := openStore(cmd, false)
	if err != nil {
		return err
	}
	defer store.Close()

	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		return err
	}
	granularity, err := cmd.Flags().GetString("granularity")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	chunks, err := store.LoadChunks(ctx)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "The knowledge base is empty. Run a research session with --snapshot first.")
		return nil
	}

	embedder, err := queryEmbedder(cmd)
	if err != nil {
		return err
	}

	// The question must be embedded with the same model the snapshot
	// was; the retriever rejects mismatched dimensions rather than
	// ranking on degenerate scores.
	ix := index.NewIndexer(embedder)
	ix.Load(chunks)

	retriever := retrieve.NewRetriever(ix,
		retrieve.WithGranularity(retrieve.Granularity(granularity)))
	results, err := retriever.Query(ctx, args[0], topK)
	if err != nil {
		return fmt.Errorf("query knowledge base: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No relevant passages found.")
		return nil
	}

	for i, result := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. (score %.3f)\n", i+1, result.Score)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", result.Chunk.Text)
		fmt.Fprintf(cmd.OutOrStdout(), "[Source: %s]\n\n", result.Chunk.DocumentURL)
	}

	return nil
}

// queryEmbedder selects the embedding backend from the flags or the
// environment, mirroring the selection the research command makes.
func queryEmbedder(cmd *cobra.Command) (index.Embedder, error) {
	embedHost, err := cmd.Flags().GetString("embed-host")
	if err != nil {
		return nil, err
	}
	if embedHost == "" {
		embedHost = os.Getenv("EMBED_HOST")
	}
	embedModel, err := cmd.Flags().GetString("embed-model")
	if err != nil {
		return nil, err
	}
	if embedModel == "" {
		embedModel = os.Getenv("EMBED_MODEL")
	}

	if embedHost != "" {
		return index.NewOllamaEmbedder(embedHost, embedModel), nil
	}
	return index.NewLocalEmbedder(0), nil
}

// openStore opens the snapshot store from the --data-dir flag or the
// XDG default.
func openStore(cmd *cobra.Command, create bool) (*database.Store, error) {
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	return database.Open(dataDir, opts)
}
