// Package cli provides the command-line interface for ColorVibe.
package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorvibe/internal/config"
	"github.com/jmylchreest/colorvibe/internal/logging"
	"github.com/jmylchreest/colorvibe/internal/version"
)

var (
	// Global flags
	configFile string
	envFile    string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "colorvibe",
		Short: "Generate website themes from your images",
		Long: `ColorVibe extracts a five colour palette from an image, labels its mood
and previews it as a website theme.

Run "colorvibe serve" for the web UI, or use the extract, shuffle and
contrast commands from the terminal.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(contrastCmd)
}

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig resolves configuration with the command's flags taking precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:    configFile,
		EnvFile: envFile,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the root logger; --verbose and --quiet override log.level.
func newLogger(cmd *cobra.Command, cfg *config.Config) hclog.Logger {
	level := cfg.Log.Level
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = "warn"
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
}

var versionJSON bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSON {
			return writeJSON(cmd.OutOrStdout(), version.GetInfo())
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
		return err
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
}
