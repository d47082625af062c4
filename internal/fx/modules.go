package fx

import (
	"go.uber.org/fx"

	"github.com/pasamhere/ec-elo-bot/internal/bot"
	"github.com/pasamhere/ec-elo-bot/internal/config"
	"github.com/pasamhere/ec-elo-bot/internal/database"
	"github.com/pasamhere/ec-elo-bot/internal/logger"
	"github.com/pasamhere/ec-elo-bot/internal/rating"
	"github.com/pasamhere/ec-elo-bot/internal/repository"
	"github.com/pasamhere/ec-elo-bot/internal/server"
	"github.com/pasamhere/ec-elo-bot/internal/service"
)

func ProvideRatingModel(cfg *config.Config) *rating.Model {
	return rating.NewModel(cfg.Rating)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideRatingModel),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewTournamentRepository),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewLedgerService),
	fx.Provide(service.NewTournamentService),
	fx.Provide(service.NewDecayService),
	// front ends
	fx.Provide(bot.New),
	fx.Provide(server.NewServer),
)
