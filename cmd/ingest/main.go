// Command ingest runs submission files through the catalog engine from the
// command line, for backfills and local testing against a development
// database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stringauthority/registry/internal/catalog"
	"github.com/stringauthority/registry/internal/config"
	"github.com/stringauthority/registry/internal/logging"
	"github.com/stringauthority/registry/internal/postgres"
)

var (
	dryRun  bool
	noHist  bool
	rootCmd = &cobra.Command{
		Use:   "ingest <file.json>",
		Short: "Submit catalog records from a JSON file",
		Long: `Reads a submission file (a single submission object or an array of them)
and runs it through the uniqueness-resolution engine against the configured
database. The engine result is printed as JSON on stdout.

Examples:
  ingest submissions.json
  ingest --dry-run submissions.json
  cat submissions.json | ingest -`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}
)

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "process the file but roll back instead of committing")
	rootCmd.Flags().BoolVar(&noHist, "no-history", false, "skip recording the batch in ingestion history")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	subs, _, err := catalog.ParseSubmissions(data)
	if err != nil {
		return err
	}
	if len(subs) > cfg.Ingest.MaxBatchSize {
		return fmt.Errorf("batch of %d exceeds configured maximum of %d", len(subs), cfg.Ingest.MaxBatchSize)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Ingest.Timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	db := postgres.New(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	var recorder catalog.BatchRecorder
	if !noHist && !dryRun {
		recorder = db
	}
	var beginner catalog.TxBeginner = db
	if dryRun {
		beginner = rollbackOnly{db}
	}

	processor := catalog.NewProcessor(beginner, catalog.DefaultPolicy(), slog.Default(), recorder)
	result := processor.ProcessBatch(ctx, subs)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Success && !result.PartialSuccess {
		return fmt.Errorf("batch failed")
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read submission file: %w", err)
	}
	return data, nil
}

// rollbackOnly wraps a TxBeginner so commits become rollbacks, which is what
// --dry-run means.
type rollbackOnly struct {
	inner catalog.TxBeginner
}

func (r rollbackOnly) Begin(ctx context.Context) (catalog.Tx, error) {
	tx, err := r.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return dryRunTx{tx}, nil
}

type dryRunTx struct {
	catalog.Tx
}

// Commit discards the outer transaction instead of committing it. Nested
// transactions commit normally so intra-batch visibility still works.
func (t dryRunTx) Commit(ctx context.Context) error {
	return t.Tx.Rollback(ctx)
}
