package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasamhere/ec-elo-bot/internal/config"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

func decayConfig() *config.Config {
	return &config.Config{
		DecayInterval:   24 * time.Hour,
		DecayInactivity: 30 * 24 * time.Hour,
		DecayAmount:     25,
		DecayBaseline:   1200,
	}
}

func TestDecayConvergesToBaseline(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionNA, 1250))

	svc := newDecayService(e, decayConfig())
	// 45 days after registration alice is well past the 30 day window.
	svc.now = func() time.Time { return time.Now().Add(45 * 24 * time.Hour) }

	decayed, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, decayed)
	alice, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1225, alice.RatingNA)

	// Second run converges to baseline, never below it.
	_, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	alice, err = e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1200, alice.RatingNA)

	// Third run is a no-op: nothing selected, nothing written.
	decayed, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, decayed)
	after, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.UpdatedAt, after.UpdatedAt)
}

func TestDecayIdempotentAcrossRegions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionNA, 1230))
	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionEU, 1199))

	svc := newDecayService(e, decayConfig())
	svc.now = func() time.Time { return time.Now().Add(60 * 24 * time.Hour) }

	_, err := svc.RunOnce(ctx)
	require.NoError(t, err)

	alice, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1205, alice.RatingNA, "clamped at most by the amount")
	assert.Equal(t, 1199, alice.RatingEU, "below-baseline ratings are never pulled up")
	assert.Equal(t, 1200, alice.RatingAS)

	// Running twice in a row ends in the same state as running once more.
	_, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	_, err = svc.RunOnce(ctx)
	require.NoError(t, err)

	alice, err = e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1200, alice.RatingNA)
	assert.Equal(t, 1199, alice.RatingEU)
}

func TestDecaySkipsActivePlayers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionNA, 1300))

	svc := newDecayService(e, decayConfig())
	// Only a week of inactivity: inside the window, untouched.
	svc.now = func() time.Time { return time.Now().Add(7 * 24 * time.Hour) }

	decayed, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, decayed)

	alice, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1300, alice.RatingNA)
}

func TestDecayBaselinePlayersAreNoOp(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")

	svc := newDecayService(e, decayConfig())
	svc.now = func() time.Time { return time.Now().Add(90 * 24 * time.Hour) }

	decayed, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, decayed, "a fully baseline player set writes zero records")
}
