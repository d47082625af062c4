package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

type PlayerRepository struct {
	q      DBTX
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		q:      sqlDB,
		db:     sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository that runs every query on tx.
func (r *PlayerRepository) WithTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{q: tx, db: r.db, logger: r.logger}
}

const playerColumns = `id, display_name, handle, elo_na, elo_eu, elo_as,
	wins, losses, matches_played, win_streak, loss_streak, best_win_streak,
	last_played_at, created_at, updated_at`

func scanPlayer(row interface{ Scan(...any) error }) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.Handle, &p.RatingNA, &p.RatingEU, &p.RatingAS,
		&p.Wins, &p.Losses, &p.MatchesPlayed, &p.WinStreak, &p.LossStreak, &p.BestWinStreak,
		&p.LastPlayedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new player record. A second insert for the same identity
// fails with domain.ErrAlreadyRegistered.
func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.DisplayName, p.Handle, p.RatingNA, p.RatingEU, p.RatingAS,
		p.Wins, p.Losses, p.MatchesPlayed, p.WinStreak, p.LossStreak, p.BestWinStreak,
		p.LastPlayedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to insert player %s: %w", p.ID, err)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	p, err := scanPlayer(r.q.QueryRowContext(ctx, `
		SELECT `+playerColumns+` FROM players WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, &domain.PlayerNotFoundError{PlayerID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return p, nil
}

func (r *PlayerRepository) GetByHandle(ctx context.Context, handle string) (*domain.Player, error) {
	p, err := scanPlayer(r.q.QueryRowContext(ctx, `
		SELECT `+playerColumns+` FROM players WHERE handle = ? COLLATE NOCASE
	`, handle))
	if err == sql.ErrNoRows {
		return nil, &domain.PlayerNotFoundError{PlayerID: handle}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by handle %s: %w", handle, err)
	}
	return p, nil
}

// eloColumn maps a region to its rating column. Regions are validated at the
// domain boundary, so this never sees arbitrary input.
func eloColumn(region domain.Region) string {
	switch region {
	case domain.RegionEU:
		return "elo_eu"
	case domain.RegionAS:
		return "elo_as"
	default:
		return "elo_na"
	}
}

// ApplyWin applies the winner's side of a match result as pure column
// deltas, so concurrent reports for the same player compose instead of
// overwriting each other.
func (r *PlayerRepository) ApplyWin(ctx context.Context, id string, region domain.Region, delta int, now time.Time) error {
	col := eloColumn(region)
	res, err := r.q.ExecContext(ctx, `
		UPDATE players SET
			`+col+` = `+col+` + ?,
			wins = wins + 1,
			matches_played = matches_played + 1,
			win_streak = win_streak + 1,
			loss_streak = 0,
			best_win_streak = MAX(best_win_streak, win_streak + 1),
			last_played_at = ?,
			updated_at = ?
		WHERE id = ?
	`, delta, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to apply win for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// ApplyLoss mirrors ApplyWin for the losing side.
func (r *PlayerRepository) ApplyLoss(ctx context.Context, id string, region domain.Region, delta int, now time.Time) error {
	col := eloColumn(region)
	res, err := r.q.ExecContext(ctx, `
		UPDATE players SET
			`+col+` = `+col+` - ?,
			losses = losses + 1,
			matches_played = matches_played + 1,
			loss_streak = loss_streak + 1,
			win_streak = 0,
			last_played_at = ?,
			updated_at = ?
		WHERE id = ?
	`, delta, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to apply loss for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// RevertWin undoes the rating and counter effects of ApplyWin using the
// stored delta. Streaks are deliberately left alone; they are history.
func (r *PlayerRepository) RevertWin(ctx context.Context, id string, region domain.Region, delta int, now time.Time) error {
	col := eloColumn(region)
	res, err := r.q.ExecContext(ctx, `
		UPDATE players SET
			`+col+` = `+col+` - ?,
			wins = wins - 1,
			matches_played = matches_played - 1,
			updated_at = ?
		WHERE id = ?
	`, delta, now, id)
	if err != nil {
		return fmt.Errorf("failed to revert win for %s: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *PlayerRepository) RevertLoss(ctx context.Context, id string, region domain.Region, delta int, now time.Time) error {
	col := eloColumn(region)
	res, err := r.q.ExecContext(ctx, `
		UPDATE players SET
			`+col+` = `+col+` + ?,
			losses = losses - 1,
			matches_played = matches_played - 1,
			updated_at = ?
		WHERE id = ?
	`, delta, now, id)
	if err != nil {
		return fmt.Errorf("failed to revert loss for %s: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.PlayerNotFoundError{PlayerID: id}
	}
	return nil
}

// SetRating is the admin write-through path; it bypasses the rating model
// and produces no match record.
func (r *PlayerRepository) SetRating(ctx context.Context, id string, region domain.Region, value int, now time.Time) error {
	col := eloColumn(region)
	res, err := r.q.ExecContext(ctx, `
		UPDATE players SET `+col+` = ?, updated_at = ? WHERE id = ?
	`, value, now, id)
	if err != nil {
		return fmt.Errorf("failed to set rating for %s: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *PlayerRepository) UpdateProfile(ctx context.Context, id, displayName, handle string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE players SET
			display_name = COALESCE(NULLIF(?, ''), display_name),
			handle = COALESCE(NULLIF(?, ''), handle),
			updated_at = ?
		WHERE id = ?
	`, displayName, handle, now, id)
	if err != nil {
		return fmt.Errorf("failed to update profile for %s: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	return requireRow(res, id)
}

// Leaderboard returns players ordered by the given region's rating, or by
// the regional sum when region is empty (the mean is monotone in the sum, so
// sorting by sum sorts by aggregate).
func (r *PlayerRepository) Leaderboard(ctx context.Context, region domain.Region, limit int) ([]domain.Player, error) {
	order := "(elo_na + elo_eu + elo_as)"
	if region != "" {
		order = eloColumn(region)
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+playerColumns+` FROM players
		ORDER BY `+order+` DESC, matches_played DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// InactiveAbove lists ids of players who have not played since cutoff and
// still sit above baseline in at least one region. Players fully converged
// to baseline are not returned, keeping decay a strict no-op for them.
func (r *PlayerRepository) InactiveAbove(ctx context.Context, cutoff time.Time, baseline int) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id FROM players
		WHERE last_played_at < ?
		  AND (elo_na > ? OR elo_eu > ? OR elo_as > ?)
		ORDER BY id
	`, cutoff, baseline, baseline, baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive players: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Decay pulls every regional rating of one player toward baseline by amount,
// never crossing it. Ratings already at or below baseline stay exactly where
// they are. One statement, one implicit transaction per player; re-running
// it converges and then stops changing rows.
func (r *PlayerRepository) Decay(ctx context.Context, id string, baseline, amount int, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE players SET
			elo_na = CASE WHEN elo_na > ?1 THEN MAX(?1, elo_na - ?2) ELSE elo_na END,
			elo_eu = CASE WHEN elo_eu > ?1 THEN MAX(?1, elo_eu - ?2) ELSE elo_eu END,
			elo_as = CASE WHEN elo_as > ?1 THEN MAX(?1, elo_as - ?2) ELSE elo_as END,
			updated_at = ?3
		WHERE id = ?4
		  AND (elo_na > ?1 OR elo_eu > ?1 OR elo_as > ?1)
	`, baseline, amount, now, id)
	if err != nil {
		return fmt.Errorf("failed to decay player %s: %w", id, err)
	}
	return nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}
