package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/defectscan/internal/pipeline"
	"github.com/ppiankov/defectscan/internal/worker"
)

var (
	concurrency    int
	outputDir      string
	batchTimeout   time.Duration
	filesPerSecond float64
	batchMarkdown  bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <host-geometry> <defect-list>",
	Short: "Analyze many defect geometries against one host in parallel",
	Long: `Batch reads defect geometry paths from a list file (one per line,
# comments allowed, relative paths resolved against the list file) and
analyses each one against the host geometry. The host is parsed once and
served from the cache for every entry.

Example:
  defectscan batch perfect/geometry.in defects.txt
  defectscan batch perfect/geometry.in defects.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent analyses (0 uses config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./defectscan-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&filesPerSecond, "files-per-second", 0, "throttle geometry reads per directory (0 uses config)")
	batchCmd.Flags().BoolVar(&batchMarkdown, "md", false, "also write a Markdown report per defect")
	addAnalysisFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	hostPath, listPath := args[0], args[1]

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if filesPerSecond > 0 {
		cfg.Concurrency.FilesPerSecond = filesPerSecond
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Defectscan Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Host:         %s\n", hostPath)
	fmt.Fprintf(os.Stderr, "  Defect list:  %s\n", listPath)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg, logger)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers,
		cfg.Concurrency.FilesPerSecond, cfg.Concurrency.Burst, logger)

	results, err := processor.ProcessList(ctx, hostPath, listPath)
	if err != nil {
		return fmt.Errorf("process list: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.DefectPath, result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index, reportSlug(result.DefectPath))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := ""
		if batchMarkdown {
			mdPath = filepath.Join(outputDir, slug+".md")
		}

		if err := p.RenderReport(result.Report, jsonPath, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.DefectPath, err)
			continue
		}

		successCount++
		r := result.Report
		fmt.Fprintf(os.Stderr, "✓ %s: %s at (%.4f, %.4f, %.4f), confidence %s\n",
			result.DefectPath, r.SiteLabel(), r.Position.X, r.Position.Y, r.Position.Z, r.Score.Confidence)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d geometries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d analyses failed", failureCount, len(results))
	}
	return nil
}

// reportSlug names a report after the defect file, or its directory when
// the file has the conventional geometry.in name
func reportSlug(path string) string {
	name := filepath.Base(path)
	if name == "geometry.in" {
		name = filepath.Base(filepath.Dir(path))
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	name = replacer.Replace(name)

	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" || name == "." {
		name = "defect"
	}
	return name
}
