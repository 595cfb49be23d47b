// Package cli implements the postpilot command line interface.
package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/postpilot/postpilot/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "postpilot",
	Short: "Automated LinkedIn posting with AI-generated content",
	Long: `PostPilot generates LinkedIn posts with the Anthropic Messages API and
publishes them on a daily schedule.

  - AI-generated posts on current AI/tech news, grounded with web search
  - LinkedIn OAuth flow and publishing via the UGC Posts API
  - Daily timezone-aware schedule with manual trigger endpoints
  - Post history and email notifications for every run

Start the server:
  postpilot serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(nil)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./postpilot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// setupLogging configures zerolog. Called once with nil settings before the
// config is loaded, then again with the loaded logging settings.
func setupLogging(cfg *config.LoggingConfig) {
	level := zerolog.InfoLevel
	format := config.DefaultLogFormat

	if cfg != nil {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			level = parsed
		}
		format = cfg.Format
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
