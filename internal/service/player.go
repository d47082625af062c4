package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
	"github.com/pasamhere/ec-elo-bot/internal/rating"
	"github.com/pasamhere/ec-elo-bot/internal/repository"
)

type PlayerService struct {
	model          *rating.Model
	playerRepo     *repository.PlayerRepository
	matchRepo      *repository.MatchRepository
	tournamentRepo *repository.TournamentRepository
	logger         zerolog.Logger
	now            func() time.Time
}

func NewPlayerService(
	model *rating.Model,
	playerRepo *repository.PlayerRepository,
	matchRepo *repository.MatchRepository,
	tournamentRepo *repository.TournamentRepository,
	logger zerolog.Logger,
) *PlayerService {
	return &PlayerService{
		model:          model,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Register creates a player record seeded at the starting rating. A second
// registration for the same identity fails with ErrAlreadyRegistered.
func (s *PlayerService) Register(ctx context.Context, id, displayName, handle string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, &domain.ValidationError{Field: "handle", Reason: "must not be empty"}
	}

	start := s.model.Config().StartingRating
	now := s.now().UTC()
	player := &domain.Player{
		ID:           id,
		DisplayName:  displayName,
		Handle:       handle,
		RatingNA:     start,
		RatingEU:     start,
		RatingAS:     start,
		LastPlayedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player_id", id).
		Str("handle", handle).
		Int("starting_rating", start).
		Msg("player registered")
	return player, nil
}

// Profile is the structured payload behind the profile view.
type Profile struct {
	Player      *domain.Player
	Aggregate   int
	Tier        string
	WinRate     float64
	Recent      []domain.Match
	Tournaments []string
}

// Profile assembles a player's record, derived stats, recent matches, and
// tournament history. The reads are independent and run concurrently.
func (s *PlayerService) Profile(ctx context.Context, id string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.playerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var recent []domain.Match
	var tournaments []string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = s.matchRepo.RecentFor(gCtx, id, constants.HistoryLimit)
		return err
	})
	g.Go(func() error {
		var err error
		tournaments, err = s.tournamentRepo.TournamentsFor(gCtx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := s.model.AggregateFor(player)
	winRate := 0.0
	if player.MatchesPlayed > 0 {
		winRate = float64(player.Wins) / float64(player.MatchesPlayed)
	}

	return &Profile{
		Player:      player,
		Aggregate:   agg,
		Tier:        s.model.TierFor(agg),
		WinRate:     winRate,
		Recent:      recent,
		Tournaments: tournaments,
	}, nil
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank   int
	Player domain.Player
	Rating int
	Tier   string
}

// Leaderboard ranks players by the given region's rating, or by aggregate
// rating when region is empty ("overall").
func (s *PlayerService) Leaderboard(ctx context.Context, region domain.Region, limit int) ([]LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.LeaderboardLimit
	}
	players, err := s.playerRepo.Leaderboard(ctx, region, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		score := s.model.AggregateFor(&p)
		if region != "" {
			score = p.Rating(region)
		}
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			Player: p,
			Rating: score,
			Tier:   s.model.TierFor(score),
		})
	}
	return entries, nil
}

// SetRating is the admin override: write-through, no rating model, no match
// record.
func (s *PlayerService) SetRating(ctx context.Context, id string, region domain.Region, value int) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if value < 0 || value > 4000 {
		return &domain.ValidationError{Field: "rating", Reason: "must be between 0 and 4000"}
	}
	if err := s.playerRepo.SetRating(ctx, id, region, value, s.now().UTC()); err != nil {
		return err
	}

	s.logger.Info().
		Str("player_id", id).
		Str("region", string(region)).
		Int("rating", value).
		Msg("rating set by admin")
	return nil
}

// EditProfile updates identity fields; empty fields are left unchanged.
func (s *PlayerService) EditProfile(ctx context.Context, id, displayName, handle string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if strings.TrimSpace(displayName) == "" && strings.TrimSpace(handle) == "" {
		return &domain.ValidationError{Field: "profile", Reason: "nothing to update"}
	}
	if err := s.playerRepo.UpdateProfile(ctx, id, strings.TrimSpace(displayName), strings.TrimSpace(handle), s.now().UTC()); err != nil {
		return err
	}

	s.logger.Info().Str("player_id", id).Msg("profile edited")
	return nil
}

// Remove deletes a player record unconditionally. Match records stay for
// audit; deletion is not reversible.
func (s *PlayerService) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("player_id", id).Msg("player removed")
	return nil
}

// ResolveHandles builds the handle-to-id mapping a bracket import needs.
// Unknown handles are simply absent from the map; the import reports them
// per pairing.
func (s *PlayerService) ResolveHandles(ctx context.Context, handles []string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	resolve := make(map[string]string, len(handles))
	for _, h := range handles {
		player, err := s.playerRepo.GetByHandle(ctx, h)
		if err != nil {
			if domain.IsPlayerNotFound(err) {
				continue
			}
			return nil, err
		}
		resolve[h] = player.ID
	}
	return resolve, nil
}
