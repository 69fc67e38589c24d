package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/defectscan/internal/model"
	"github.com/ppiankov/defectscan/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	timeout        time.Duration
	noCache        bool
	workers        int
	lenient        bool
	requireLattice bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <host-geometry> <defect-geometry>",
	Short: "Identify and locate the point defect in a supercell",
	Long: `Analyze compares a host supercell with a defect supercell to:
- Classify the defect from the total atom counts
- Find the species involved from the per-species counts
- Locate the defect site by nearest-neighbour matching
- Compute the distance from the site to the supercell faces

Example:
  defectscan analyze perfect/geometry.in vacancy/geometry.in
  defectscan analyze perfect/geometry.in antisite/geometry.in --json report.json --md report.md
  defectscan analyze host.in defect.in --workers 8 --lenient`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	addAnalysisFlags(analyzeCmd)
}

// addAnalysisFlags registers the flags shared by analyze and batch
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "timeout for a single analysis")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the parsed geometry cache")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent nearest-neighbour searches (0 uses config)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "use the last matching species instead of failing when several match")
	cmd.Flags().BoolVar(&requireLattice, "require-lattice", false, "fail when the host has no lattice vectors")
}

// analysisConfig merges flags into the loaded configuration
func analysisConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if workers > 0 {
		cfg.Analysis.Workers = workers
	}
	if lenient {
		cfg.Analysis.StrictSpecies = false
	}
	if cmd.Flags().Changed("require-lattice") {
		cfg.Analysis.RequireLattice = requireLattice
	}
	cfg.Output.Verbose = verbose

	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	hostPath, defectPath := args[0], args[1]

	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Host:    %s\n", hostPath)
		fmt.Fprintf(os.Stderr, "Defect:  %s\n", defectPath)
		fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Analysis.Workers)
		fmt.Fprintf(os.Stderr, "Cache:   %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "Strict:  %v\n", cfg.Analysis.StrictSpecies)
	}

	p := pipeline.NewPipeline(cfg, logger)

	result, err := p.Analyze(ctx, hostPath, defectPath)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := p.RenderReport(result.Report, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if verbose {
		if outJSON != "" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
		if outMD != "" {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	p.Renderer().RenderSummary(cmd.OutOrStdout(), result.Report)
	return nil
}
