package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/config"
	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/repository"
)

// DecayService pulls inactive players' regional ratings toward baseline on a
// fixed period. Each player's update is its own atomic unit and the whole
// pass is idempotent, so a partial failure just leaves the remainder for the
// next run.
type DecayService struct {
	cfg        *config.Config
	playerRepo *repository.PlayerRepository
	logger     zerolog.Logger
	now        func() time.Time
}

func NewDecayService(cfg *config.Config, playerRepo *repository.PlayerRepository, logger zerolog.Logger) *DecayService {
	return &DecayService{
		cfg:        cfg,
		playerRepo: playerRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce performs one decay pass. A player whose update fails is logged and
// skipped; already-converged players are not selected and nothing is written
// for them.
func (s *DecayService) RunOnce(ctx context.Context) (decayed int, err error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DecayRunTimeout)
	defer cancel()

	now := s.now().UTC()
	cutoff := now.Add(-s.cfg.DecayInactivity)

	ids, err := s.playerRepo.InactiveAbove(ctx, cutoff, s.cfg.DecayBaseline)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.playerRepo.Decay(ctx, id, s.cfg.DecayBaseline, s.cfg.DecayAmount, now); err != nil {
			s.logger.Error().Err(err).Str("player_id", id).Msg("decay update failed, skipping player")
			continue
		}
		decayed++
	}

	s.logger.Info().
		Int("candidates", len(ids)).
		Int("decayed", decayed).
		Time("cutoff", cutoff).
		Msg("decay pass completed")
	return decayed, nil
}

// Run ticks RunOnce on the configured interval until ctx is cancelled.
func (s *DecayService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.DecayInterval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.cfg.DecayInterval).Msg("decay scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("decay scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("decay pass failed")
			}
		}
	}
}
