package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/database"
	"github.com/outy-app/outy/internal/router"
	"github.com/outy-app/outy/internal/service"
)

const shutdownTimeout = 10 * time.Second

func (c *CLI) newServeCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runServe(ctx, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, runMigrations bool) error {
	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseURL, cfg.PGSSL)
	if err != nil {
		return err
	}
	defer db.Close()

	if runMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	if cfg.SeedOnStart {
		if err := database.Seed(ctx, db, cfg.SeedPass); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	var pub service.ReservationPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		amqpPub, err := service.NewAMQPPublisher(cfg.RabbitURL)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, reservation events disabled")
		} else {
			defer amqpPub.Close()
			pub = amqpPub
		}
	}

	e := router.New(router.Deps{
		Cfg:       cfg,
		CacheCfg:  config.LoadCacheConfig(),
		RateCfg:   config.LoadRateLimitConfig(),
		DB:        db,
		Redis:     rdb,
		Publisher: pub,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
