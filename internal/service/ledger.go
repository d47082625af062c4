package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
	"github.com/pasamhere/ec-elo-bot/internal/rating"
	"github.com/pasamhere/ec-elo-bot/internal/repository"
)

// LedgerService is the only path through which competitive play changes
// ratings and win/loss counters. Decay and admin overrides are separate,
// explicit paths.
type LedgerService struct {
	db             *sql.DB
	model          *rating.Model
	playerRepo     *repository.PlayerRepository
	matchRepo      *repository.MatchRepository
	tournamentRepo *repository.TournamentRepository
	logger         zerolog.Logger
	now            func() time.Time
}

func NewLedgerService(
	db *sql.DB,
	model *rating.Model,
	playerRepo *repository.PlayerRepository,
	matchRepo *repository.MatchRepository,
	tournamentRepo *repository.TournamentRepository,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		db:             db,
		model:          model,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// MatchResult is the structured payload a front end renders after a report.
type MatchResult struct {
	MatchID         string
	Region          domain.Region
	Delta           int
	Winner          *domain.Player
	Loser           *domain.Player
	WinnerEloBefore int
	LoserEloBefore  int
	WinnerEloAfter  int
	LoserEloAfter   int
}

// ReportMatch applies one match result. The delta is computed from a
// snapshot of both players' aggregate rating and match count taken inside
// the transaction, before either record is touched, and the same integer is
// persisted on the match record so a revert replays it exactly. Player
// updates and the match append commit as one unit.
func (s *LedgerService) ReportMatch(ctx context.Context, winnerID, loserID string, region domain.Region, tournamentID, reportedBy string) (*MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if winnerID == loserID {
		return nil, domain.ErrSelfMatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	players := s.playerRepo.WithTx(tx)
	matches := s.matchRepo.WithTx(tx)
	tournaments := s.tournamentRepo.WithTx(tx)

	winner, err := players.Get(ctx, winnerID)
	if err != nil {
		return nil, sideError(err, domain.SideWinner)
	}
	loser, err := players.Get(ctx, loserID)
	if err != nil {
		return nil, sideError(err, domain.SideLoser)
	}

	delta := s.model.Delta(
		s.model.AggregateFor(winner),
		s.model.AggregateFor(loser),
		winner.MatchesPlayed,
		loser.MatchesPlayed,
	)

	winnerBefore := winner.Rating(region)
	loserBefore := loser.Rating(region)
	now := s.now().UTC()

	if err := players.ApplyWin(ctx, winnerID, region, delta, now); err != nil {
		return nil, err
	}
	if err := players.ApplyLoss(ctx, loserID, region, delta, now); err != nil {
		return nil, err
	}

	if tournamentID != "" {
		if _, err := tournaments.Get(ctx, tournamentID); err != nil {
			return nil, err
		}
		if err := tournaments.AddParticipant(ctx, tournamentID, winnerID); err != nil {
			return nil, err
		}
		if err := tournaments.AddParticipant(ctx, tournamentID, loserID); err != nil {
			return nil, err
		}
	}

	match := &domain.Match{
		WinnerID:        winnerID,
		LoserID:         loserID,
		Region:          region,
		Delta:           delta,
		WinnerEloBefore: winnerBefore,
		LoserEloBefore:  loserBefore,
		TournamentID:    tournamentID,
		ReportedBy:      reportedBy,
		PlayedAt:        now,
		CreatedAt:       now,
	}
	if err := matches.Insert(ctx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}

	s.logger.Info().
		Str("match_id", match.ID).
		Str("winner_id", winnerID).
		Str("loser_id", loserID).
		Str("region", string(region)).
		Int("delta", delta).
		Str("tournament_id", tournamentID).
		Msg("match recorded")

	return &MatchResult{
		MatchID:         match.ID,
		Region:          region,
		Delta:           delta,
		Winner:          winner,
		Loser:           loser,
		WinnerEloBefore: winnerBefore,
		LoserEloBefore:  loserBefore,
		WinnerEloAfter:  winnerBefore + delta,
		LoserEloAfter:   loserBefore - delta,
	}, nil
}

func sideError(err error, side domain.MatchSide) error {
	if pnf, ok := err.(*domain.PlayerNotFoundError); ok {
		return &domain.PlayerNotFoundError{PlayerID: pnf.PlayerID, Side: side}
	}
	return err
}

// RevertResult is the structured payload for a revert confirmation.
type RevertResult struct {
	MatchID  string
	Region   domain.Region
	Delta    int
	WinnerID string
	LoserID  string
}

// RevertMatch is the exact algebraic inverse of ReportMatch on the affected
// region's rating and the W/L/matches-played counters, replaying the stored
// delta inside one transaction and deleting the record. Streak counters and
// tournament participation are sticky history and are not rolled back.
// Reverting the same id twice fails with ErrMatchNotFound.
func (s *LedgerService) RevertMatch(ctx context.Context, idOrPrefix string) (*RevertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	players := s.playerRepo.WithTx(tx)
	matches := s.matchRepo.WithTx(tx)

	id, err := matches.Resolve(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	match, err := matches.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := players.RevertWin(ctx, match.WinnerID, match.Region, match.Delta, now); err != nil {
		return nil, err
	}
	if err := players.RevertLoss(ctx, match.LoserID, match.Region, match.Delta, now); err != nil {
		return nil, err
	}
	if err := matches.Delete(ctx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit revert: %w", err)
	}

	s.logger.Info().
		Str("match_id", id).
		Str("winner_id", match.WinnerID).
		Str("loser_id", match.LoserID).
		Str("region", string(match.Region)).
		Int("delta", match.Delta).
		Msg("match reverted")

	return &RevertResult{
		MatchID:  id,
		Region:   match.Region,
		Delta:    match.Delta,
		WinnerID: match.WinnerID,
		LoserID:  match.LoserID,
	}, nil
}

// History returns a player's most recent matches, newest first.
func (s *LedgerService) History(ctx context.Context, playerID string, limit int) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.playerRepo.Get(ctx, playerID); err != nil {
		return nil, err
	}
	return s.matchRepo.RecentFor(ctx, playerID, limit)
}

// BracketResult is one pairing from an externally supplied bracket, already
// parsed down to the two handles.
type BracketResult struct {
	WinnerHandle string
	LoserHandle  string
}

// ImportOutcome reports how one bracket pairing fared.
type ImportOutcome struct {
	Result  BracketResult
	MatchID string
	Err     error
}

// ImportBracket applies an ordered list of bracket results against a
// tournament. Order is preserved because the provisional K factor and streak
// accuracy depend on it. A failed pairing is recorded and skipped; the rest
// of the batch continues.
func (s *LedgerService) ImportBracket(ctx context.Context, tournamentID string, results []BracketResult, resolve map[string]string, reportedBy string) ([]ImportOutcome, error) {
	tournament, err := s.tournamentRepo.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ImportOutcome, 0, len(results))
	for _, res := range results {
		winnerID, winnerOK := resolve[res.WinnerHandle]
		loserID, loserOK := resolve[res.LoserHandle]

		var outcome ImportOutcome
		outcome.Result = res
		switch {
		case !winnerOK:
			outcome.Err = &domain.PlayerNotFoundError{PlayerID: res.WinnerHandle, Side: domain.SideWinner}
		case !loserOK:
			outcome.Err = &domain.PlayerNotFoundError{PlayerID: res.LoserHandle, Side: domain.SideLoser}
		default:
			applied, err := s.ReportMatch(ctx, winnerID, loserID, tournament.Region, tournamentID, reportedBy)
			if err != nil {
				outcome.Err = err
			} else {
				outcome.MatchID = applied.MatchID
			}
		}

		if outcome.Err != nil {
			s.logger.Warn().
				Err(outcome.Err).
				Str("winner_handle", res.WinnerHandle).
				Str("loser_handle", res.LoserHandle).
				Str("tournament_id", tournamentID).
				Msg("bracket pairing failed")
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}
