package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
	"github.com/pasamhere/ec-elo-bot/internal/repository"
)

type TournamentService struct {
	tournamentRepo *repository.TournamentRepository
	playerRepo     *repository.PlayerRepository
	logger         zerolog.Logger
	now            func() time.Time
}

func NewTournamentService(tournamentRepo *repository.TournamentRepository, playerRepo *repository.PlayerRepository, logger zerolog.Logger) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TournamentService) Create(ctx context.Context, name string, region domain.Region) (*domain.Tournament, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	t := &domain.Tournament{
		Name:      name,
		Region:    region,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().Str("tournament_id", t.ID).Str("name", name).Str("region", string(region)).Msg("tournament created")
	return t, nil
}

func (s *TournamentService) Archive(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.tournamentRepo.Archive(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("tournament_id", id).Msg("tournament archived")
	return nil
}

func (s *TournamentService) ListActive(ctx context.Context) ([]domain.Tournament, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.tournamentRepo.ListActive(ctx)
}

// Signup adds a registered player to a tournament. Membership is idempotent;
// signing up twice has no additional effect.
func (s *TournamentService) Signup(ctx context.Context, tournamentID, playerID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.playerRepo.Get(ctx, playerID); err != nil {
		return err
	}
	t, err := s.tournamentRepo.Get(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.Archived {
		return &domain.ValidationError{Field: "tournament", Reason: "tournament is archived"}
	}
	if err := s.tournamentRepo.AddParticipant(ctx, tournamentID, playerID); err != nil {
		return err
	}

	s.logger.Info().Str("tournament_id", tournamentID).Str("player_id", playerID).Msg("tournament signup")
	return nil
}

func (s *TournamentService) Participants(ctx context.Context, tournamentID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.tournamentRepo.Get(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.tournamentRepo.Participants(ctx, tournamentID)
}

// RehydrateSignups lists the active tournaments at process start so the
// front end can re-register a signup handler per tournament id instead of
// depending on any long-lived in-memory object.
func (s *TournamentService) RehydrateSignups(ctx context.Context) ([]domain.Tournament, error) {
	ts, err := s.tournamentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		s.logger.Info().Str("tournament_id", t.ID).Str("name", t.Name).Msg("signup handler rehydrated")
	}
	return ts, nil
}
