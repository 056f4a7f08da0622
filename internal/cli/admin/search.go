package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/corpusai/internal/config"
	"github.com/cloo-solutions/corpusai/internal/database"
	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/openai"
	"github.com/cloo-solutions/corpusai/internal/repository"
	"github.com/cloo-solutions/corpusai/internal/service"
	"github.com/spf13/cobra"
)

// SearchCmd returns the one-shot search command.
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Run a hybrid vector and keyword search directly against the database",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of results")
	cmd.Flags().Float64("threshold", 0.7, "Minimum similarity for vector matches")
	cmd.Flags().Bool("vector-only", false, "Skip the keyword leg and search by vector similarity only")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	svc := service.NewSearchService(repository.NewChunkRepository(pool, cfg.EmbeddingDimension), embedder, nil)

	limit, _ := cmd.Flags().GetInt("limit")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	vectorOnly, _ := cmd.Flags().GetBool("vector-only")

	var results []*domain.SearchResult
	if vectorOnly {
		results, err = svc.VectorSearch(ctx, args[0], limit, threshold)
	} else {
		results, err = svc.HybridSearch(ctx, args[0], limit, threshold)
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, r := range results {
		if r.Similarity != nil {
			fmt.Printf("%d. [%d] %s (similarity %.3f)\n", i+1, r.ID, r.Title, *r.Similarity)
		} else {
			fmt.Printf("%d. [%d] %s (keyword match)\n", i+1, r.ID, r.Title)
		}
		fmt.Printf("   %s\n", firstRunes(r.Content, 160))
	}
	return nil
}

// newEmbeddingClient returns the configured embedding client or nil, in which
// case the Embedder uses its deterministic fallback.
func newEmbeddingClient(cfg *config.Config) service.EmbeddingClient {
	if !cfg.HasOpenAI() {
		return nil
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingDimensions: cfg.EmbeddingDimension,
	})
}

func firstRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
