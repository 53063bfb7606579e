package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oxygene76/exoplanet-popsynth/internal/logging"
	"github.com/oxygene76/exoplanet-popsynth/pkg/utils"
)

const (
	appName = "popsynth"
	version = "v0.3.0"
)

var (
	// Configuration
	cfgFile string
	config  *utils.Config
	logger  logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Synthetic exoplanet populations for direct-imaging yield studies",
	Long: `popsynth draws a synthetic exoplanet population from an empirical
occurrence-rate grid, distributes the planets over a catalog of nearby stars
and derives each planet's orbit, class, albedo, reflected-light contrast and
angular separation.

The resulting table can be filtered against telescope contrast floors and
inner working angles to estimate how many planets of each class a given
instrument could image.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		return nil
	},
}

// initCmd writes a default configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to --config, or to
$HOME/.popsynth/config.yaml when no path is given. An existing file is kept
unless --force is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := cfgFile
		if path == "" {
			p, err := utils.GetConfigPath()
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
			path = p
		}

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		if err := utils.SaveConfig(utils.DefaultConfig(), path); err != nil {
			return err
		}

		fmt.Printf("Configuration saved to: %s\n", path)
		return nil
	},
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", appName, version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.popsynth/config.yaml, ./config.yaml or ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text|json)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(observableCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(classesCmd)
}

// initConfig loads the configuration and builds the logger
func initConfig() error {
	cfg, err := utils.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	config = cfg
	logger = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
