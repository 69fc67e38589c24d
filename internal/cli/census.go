package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/defectscan/internal/pipeline"
)

// censusCmd represents the census command
var censusCmd = &cobra.Command{
	Use:   "census <host-geometry> <defect-geometry>",
	Short: "Print per-species atom counts for a host/defect pair",
	Long: `Census counts the atoms of each species in the host and the defect
geometry, in order of first appearance in the host. Species found only in
the defect geometry are listed separately.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := pipeline.NewPipeline(cfg, logger)
		census, err := p.Census(args[0], args[1])
		if err != nil {
			return fmt.Errorf("census failed: %w", err)
		}

		p.Renderer().RenderCensus(cmd.OutOrStdout(), census)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(censusCmd)
}
