package repository

import (
	"context"
	"database/sql"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

type TournamentRepository struct {
	q      DBTX
	db     *sql.DB
	logger zerolog.Logger
}

func NewTournamentRepository(sqlDB *sql.DB, logger zerolog.Logger) *TournamentRepository {
	return &TournamentRepository{
		q:      sqlDB,
		db:     sqlDB,
		logger: logger,
	}
}

func (r *TournamentRepository) WithTx(tx *sql.Tx) *TournamentRepository {
	return &TournamentRepository{q: tx, db: r.db, logger: r.logger}
}

func (r *TournamentRepository) Create(ctx context.Context, t *domain.Tournament) error {
	if t.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate tournament id: %w", err)
		}
		t.ID = id
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, region, archived, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.Name, string(t.Region), t.Archived, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament %s: %w", t.Name, err)
	}
	return nil
}

func (r *TournamentRepository) Get(ctx context.Context, id string) (*domain.Tournament, error) {
	var t domain.Tournament
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, region, archived, created_at FROM tournaments WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Region, &t.Archived, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return &t, nil
}

func (r *TournamentRepository) Archive(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE tournaments SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to archive tournament %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTournamentNotFound
	}
	return nil
}

func (r *TournamentRepository) ListActive(ctx context.Context) ([]domain.Tournament, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, region, archived, created_at FROM tournaments
		WHERE archived = 0
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var ts []domain.Tournament
	for rows.Next() {
		var t domain.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Region, &t.Archived, &t.CreatedAt); err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

// AddParticipant records tournament membership. INSERT OR IGNORE gives the
// idempotent-union semantics: joining twice has no additional effect.
func (r *TournamentRepository) AddParticipant(ctx context.Context, tournamentID, playerID string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO player_tournaments (player_id, tournament_id)
		VALUES (?, ?)
	`, playerID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to add participant %s to %s: %w", playerID, tournamentID, err)
	}
	return nil
}

func (r *TournamentRepository) Participants(ctx context.Context, tournamentID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT player_id FROM player_tournaments WHERE tournament_id = ? ORDER BY player_id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of %s: %w", tournamentID, err)
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

// TournamentsFor lists the tournament ids a player has competed in.
func (r *TournamentRepository) TournamentsFor(ctx context.Context, playerID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT tournament_id FROM player_tournaments WHERE player_id = ? ORDER BY tournament_id
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for %s: %w", playerID, err)
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
