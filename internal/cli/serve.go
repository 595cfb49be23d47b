package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/credential"
	"github.com/postpilot/postpilot/internal/database"
	"github.com/postpilot/postpilot/internal/generator"
	"github.com/postpilot/postpilot/internal/history"
	"github.com/postpilot/postpilot/internal/linkedin"
	"github.com/postpilot/postpilot/internal/notify"
	"github.com/postpilot/postpilot/internal/pipeline"
	"github.com/postpilot/postpilot/internal/scheduler"
	"github.com/postpilot/postpilot/internal/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PostPilot server",
	Long: `Start the PostPilot HTTP server.

The server will:
  - Open the SQLite database and apply migrations
  - Expose the API for authentication, generation, and publishing
  - Start the daily posting scheduler when schedule.auto_start is set`,
	RunE: runServe,
}

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultHost, "Host to bind to")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: cfgFile})
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}

	setupLogging(&cfg.Logging)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Email.Enabled() {
		notifier = notify.NewEmailNotifier(&cfg.Email)
		log.Info().Str("user", cfg.Email.User).Msg("Email notifications enabled")
	} else {
		log.Info().Msg("Email notifications disabled, no account configured")
	}

	svc := pipeline.NewService(
		generator.NewAnthropicClient(&cfg.Generator),
		linkedin.NewClient(&cfg.LinkedIn),
		credential.NewStore(db),
		history.NewStore(db),
		notifier,
	)
	sched := scheduler.New(&cfg.Schedule, svc)

	srv := server.New(cfg, db, svc, sched)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
	}()

	log.Info().
		Str("url", "http://"+cfg.Server.Address()).
		Str("schedule", cfg.Schedule.Time).
		Str("timezone", cfg.Schedule.Timezone).
		Msg("PostPilot starting")

	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}

	return nil
}
