package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kexuanli/askdocs/internal/loader"
	"github.com/kexuanli/askdocs/internal/progress"
	"github.com/kexuanli/askdocs/internal/rag"
	"github.com/kexuanli/askdocs/internal/watcher"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the knowledge base from the docs directory",
	Long: `Loads every supported file (PDF, Markdown, plain text) under the docs
directory, splits it into overlapping chunks, embeds the chunks and stores
them. Re-running replaces the collection's contents.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("watch", false, "keep watching the docs directory and re-ingest on changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	pipeline := rag.NewPipeline(s.newLoader(), s.embedder, s.store, s.manifest, rag.PipelineOptions{
		Collection:   s.cfg.Collection,
		ChunkSize:    s.cfg.ChunkSize,
		ChunkOverlap: s.cfg.ChunkOverlap,
	}, progress.NewReporter(), s.logger)

	ctx := cmd.Context()
	if err := ingestOnce(ctx, pipeline); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watcher.New(s.cfg.DocsDir, loader.Extensions(), func() {
		if err := ingestOnce(context.Background(), pipeline); err != nil {
			s.logger.Error("re-ingestion failed", zap.Error(err))
		}
	}, watcher.WithLogger(s.logger))
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", s.cfg.DocsDir)
	<-ctx.Done()
	return nil
}

func ingestOnce(ctx context.Context, pipeline *rag.Pipeline) error {
	result, err := pipeline.Ingest(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d chunks from %d files in %s.\n",
		result.Chunks, result.Files, result.Duration.Round(10*time.Millisecond))
	return nil
}
