package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/pasamhere/ec-elo-bot/internal/bot"
	"github.com/pasamhere/ec-elo-bot/internal/config"
	"github.com/pasamhere/ec-elo-bot/internal/constants"
	fxmodules "github.com/pasamhere/ec-elo-bot/internal/fx"
	"github.com/pasamhere/ec-elo-bot/internal/server"
	"github.com/pasamhere/ec-elo-bot/internal/service"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(run),
	).Run()
}

func run(
	lc fx.Lifecycle,
	botApp *bot.App,
	apiServer *server.Server,
	decaySvc *service.DecayService,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: apiServer.Handler(),
	}

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("http server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("http server failed")
				}
			}()
			go func() {
				if err := botApp.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("bot stopped")
				}
			}()
			go decaySvc.Run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down")
			cancel()

			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancelShutdown()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("http server shutdown failed")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
