package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/defectscan/internal/logging"
	"github.com/ppiankov/defectscan/internal/model"
)

const version = "defectscan v0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "defectscan",
	Short: "Defectscan - point defect identification in crystal supercells",
	Long: `Defectscan compares a host (perfect) supercell geometry with a defect
supercell geometry in FHI-aims geometry.in format and reports:

- the kind of point defect (vacancy, interstitial or antisite)
- the species involved
- the defect site coordinates and its atom index
- the distance from the site to the nearest supercell faces

Only one defect per supercell is supported, and distances do not use the
periodic minimum-image convention.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("log.level")
		if verbose && !cmd.Flags().Changed("log-level") {
			level = "debug"
		}

		var err error
		logger, err = logging.New(level, viper.GetBool("log.development"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.defectscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.defectscan")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// DEFECTSCAN_ANALYSIS_WORKERS overrides analysis.workers, and so on
	viper.SetEnvPrefix("DEFECTSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and Unmarshal see it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("analysis.strict_species", cfg.Analysis.StrictSpecies)
	viper.SetDefault("analysis.workers", cfg.Analysis.Workers)
	viper.SetDefault("analysis.require_lattice", cfg.Analysis.RequireLattice)
	viper.SetDefault("analysis.boundary_margin", cfg.Analysis.BoundaryMargin)
	viper.SetDefault("analysis.cell_tolerance", cfg.Analysis.CellTolerance)
	viper.SetDefault("analysis.min_separation", cfg.Analysis.MinSeparation)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_dir", cfg.Cache.DiskDir)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)
	viper.SetDefault("concurrency.batch_workers", cfg.Concurrency.BatchWorkers)
	viper.SetDefault("concurrency.files_per_second", cfg.Concurrency.FilesPerSecond)
	viper.SetDefault("concurrency.burst", cfg.Concurrency.Burst)
	viper.SetDefault("output.include_census", cfg.Output.IncludeCensus)
	viper.SetDefault("log.development", cfg.Log.Development)
}

// loadConfig builds the effective configuration (flags > env > file > defaults)
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
