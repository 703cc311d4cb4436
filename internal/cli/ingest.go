package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"letterchat/internal/adapter/chunker"
	"letterchat/internal/adapter/fs"
	"letterchat/internal/adapter/pdf"
	"letterchat/internal/domain"
	"letterchat/internal/logger"
	"letterchat/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk, embed and index shareholder letters",
	Long: `Read every document file from the data directory, split it into
overlapping chunks, embed each chunk and upsert it into the local vector
index. Re-running over the same documents is idempotent.

Examples:
  letterchat ingest            # Ingest the configured data directory
  letterchat ingest ./letters  # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// readDocument loads the plain text of a document file, extracting it
// for PDFs and reading directly for everything else.
func readDocument(path string) (string, error) {
	if pdf.IsPDF(path) {
		return pdf.ExtractText(path)
	}
	return fs.ReadFile(path)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	dataDir := cfg.Ingest.DataDir
	if len(args) > 0 {
		dataDir = args[0]
	}
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return fmt.Errorf("data directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dataDir)
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	paths, err := walker.Walk(dataDir)
	if err != nil {
		return fmt.Errorf("failed to scan data directory: %w", err)
	}
	if len(paths) == 0 {
		fmt.Printf("No document files found in %s\n", dataDir)
		return nil
	}
	fmt.Printf("Found %d documents in %s\n", len(paths), dataDir)

	var docs []domain.Document
	for _, path := range paths {
		text, err := readDocument(path)
		if err != nil {
			logger.Warn("skipping unreadable file %s: %v", path, err)
			continue
		}
		docs = append(docs, domain.Document{
			ID:   filepath.Base(path),
			Text: text,
		})
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	vs, err := openVectorStore(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer vs.Close()

	chk := chunker.NewWindowChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	ingestUC := usecase.NewIngestUseCase(chk, embedder, vs, cfg.Ingest.Concurrency)

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Embedding"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	report, err := ingestUC.Ingest(cmd.Context(), docs, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	count, _ := vs.Count()
	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents processed: %d\n", report.DocumentsProcessed)
	fmt.Printf("  Chunks created:      %d\n", report.ChunksCreated)
	fmt.Printf("  Chunks failed:       %d\n", report.ChunksFailed)
	fmt.Printf("  Index entries:       %d\n", count)

	if len(report.Failures) > 0 {
		fmt.Printf("\nFailures:\n")
		for _, f := range report.Failures {
			fmt.Printf("  - %s (%s): %s\n", f.SourceID, f.ChunkID, f.Reason)
		}
	}
	return nil
}
