package repository

import (
	"context"
	"database/sql"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

type MatchRepository struct {
	q      DBTX
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		q:      sqlDB,
		db:     sqlDB,
		logger: logger,
	}
}

// WithTx returns a copy of the repository that runs every query on tx.
func (r *MatchRepository) WithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{q: tx, db: r.db, logger: r.logger}
}

const matchColumns = `id, winner_id, loser_id, region, delta,
	winner_elo_before, loser_elo_before, tournament_id, reported_by,
	played_at, created_at`

func scanMatch(row interface{ Scan(...any) error }) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(
		&m.ID, &m.WinnerID, &m.LoserID, &m.Region, &m.Delta,
		&m.WinnerEloBefore, &m.LoserEloBefore, &m.TournamentID, &m.ReportedBy,
		&m.PlayedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert appends one immutable match record. When m.ID is empty a nanoid is
// generated and written back.
func (r *MatchRepository) Insert(ctx context.Context, m *domain.Match) error {
	if m.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate match id: %w", err)
		}
		m.ID = id
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.WinnerID, m.LoserID, string(m.Region), m.Delta,
		m.WinnerEloBefore, m.LoserEloBefore, m.TournamentID, m.ReportedBy,
		m.PlayedAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.Match, error) {
	m, err := scanMatch(r.q.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

// Resolve maps a full id or an unambiguous prefix to the canonical match id.
// The full nanoid is canonical; display sites truncate it, so revert has to
// accept the truncated form as long as it names exactly one match.
func (r *MatchRepository) Resolve(ctx context.Context, idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", domain.ErrMatchNotFound
	}

	var id string
	err := r.q.QueryRowContext(ctx, `SELECT id FROM matches WHERE id = ?`, idOrPrefix).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to resolve match id %s: %w", idOrPrefix, err)
	}

	// substr avoids LIKE, whose '_' wildcard and ASCII case folding would
	// mis-match nanoid prefixes.
	rows, err := r.q.QueryContext(ctx, `
		SELECT id FROM matches WHERE substr(id, 1, length(?)) = ? LIMIT 2
	`, idOrPrefix, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to resolve match prefix %s: %w", idOrPrefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&candidate); err != nil {
			return "", err
		}
		ids = append(ids, candidate)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", domain.ErrMatchNotFound
	case 1:
		return ids[0], nil
	default:
		return "", domain.ErrAmbiguousMatchID
	}
}

// Delete removes a match record; reverting twice hits the zero-row case and
// surfaces as ErrMatchNotFound.
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

// RecentFor lists a player's latest matches, newest first.
func (r *MatchRepository) RecentFor(ctx context.Context, playerID string, limit int) ([]domain.Match, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE winner_id = ? OR loser_id = ?
		ORDER BY played_at DESC, created_at DESC
		LIMIT ?
	`, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for %s: %w", playerID, err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}
