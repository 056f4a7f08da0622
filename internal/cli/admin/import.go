package admin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/corpusai/internal/config"
	"github.com/cloo-solutions/corpusai/internal/database"
	"github.com/cloo-solutions/corpusai/internal/parser"
	"github.com/cloo-solutions/corpusai/internal/repository"
	"github.com/cloo-solutions/corpusai/internal/service"
	"github.com/spf13/cobra"
)

// ImportCmd returns the one-shot import command. It ingests local files
// directly against the database, without going through the HTTP API.
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import documents into the knowledge base",
		Long:  "Parse, chunk and embed local documents and store them in the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	embedder := service.NewEmbedder(newEmbeddingClient(cfg), cfg.EmbeddingDimension)
	svc := service.NewImportService(
		repository.NewImportRecordRepository(pool),
		repository.NewChunkRepository(pool, cfg.EmbeddingDimension),
		parser.NewRegistry(),
		embedder,
		nil,
		cfg.ChunkSize,
	)

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		record, err := svc.ImportDocument(ctx, filepath.Base(path), data)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}

		switch {
		case record.ChunksCount != nil:
			fmt.Printf("%s: %s (%d chunks, record %d)\n", path, record.Status, *record.ChunksCount, record.ID)
		case record.ErrorMessage != nil:
			fmt.Printf("%s: %s (%s, record %d)\n", path, record.Status, *record.ErrorMessage, record.ID)
			failed++
		default:
			fmt.Printf("%s: %s (record %d)\n", path, record.Status, record.ID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(args))
	}
	return nil
}
