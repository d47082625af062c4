package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pasamhere/ec-elo-bot/internal/config"
	"github.com/pasamhere/ec-elo-bot/internal/database"
	"github.com/pasamhere/ec-elo-bot/internal/rating"
	"github.com/pasamhere/ec-elo-bot/internal/repository"
)

// testEnv wires real repositories and services against a temp sqlite
// database brought up through the normal migration path.
type testEnv struct {
	db          *sql.DB
	model       *rating.Model
	players     *repository.PlayerRepository
	matches     *repository.MatchRepository
	tournaments *repository.TournamentRepository
	playerSvc   *PlayerService
	ledger      *LedgerService
	tournament  *TournamentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	model := rating.NewModel(rating.DefaultConfig())
	players := repository.NewPlayerRepository(db, logger)
	matches := repository.NewMatchRepository(db, logger)
	tournaments := repository.NewTournamentRepository(db, logger)

	return &testEnv{
		db:          db,
		model:       model,
		players:     players,
		matches:     matches,
		tournaments: tournaments,
		playerSvc:   NewPlayerService(model, players, matches, tournaments, logger),
		ledger:      NewLedgerService(db, model, players, matches, tournaments, logger),
		tournament:  NewTournamentService(tournaments, players, logger),
	}
}

func (e *testEnv) register(t *testing.T, id, handle string) {
	t.Helper()
	_, err := e.playerSvc.Register(context.Background(), id, handle, handle)
	require.NoError(t, err)
}

func newDecayService(e *testEnv, cfg *config.Config) *DecayService {
	return NewDecayService(cfg, e.players, zerolog.Nop())
}
