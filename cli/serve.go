package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sf1tzp/symbology-sub000/api"
	"github.com/sf1tzp/symbology-sub000/orm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the artifact store HTTP API",
	Run:   runServe,
}

func runServe(*cobra.Command, []string) {
	cfg := loadConfig()
	svc := newService(cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Run: func(*cobra.Command, []string) {
		cfg := loadConfig()
		orm.InitDB(cfg)
		log.Info().Msg("migrations applied")
	},
}
