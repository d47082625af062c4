package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	p, err := e.playerSvc.Register(ctx, "alice", "Alice", "AliceRBX")
	require.NoError(t, err)
	assert.Equal(t, 1200, p.RatingNA)
	assert.Equal(t, 1200, p.RatingEU)
	assert.Equal(t, 1200, p.RatingAS)

	// Registration is idempotent-rejecting, not idempotent-merging.
	_, err = e.playerSvc.Register(ctx, "alice", "Alice", "OtherHandle")
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	stored, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "AliceRBX", stored.Handle, "rejected re-registration changes nothing")
}

func TestRegisterEmptyHandle(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.playerSvc.Register(context.Background(), "alice", "Alice", "  ")
	assert.True(t, domain.IsValidation(err))
}

func TestProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	e.register(t, "bob", "BobRBX")

	_, err := e.ledger.ReportMatch(ctx, "alice", "bob", domain.RegionNA, "", "")
	require.NoError(t, err)
	_, err = e.ledger.ReportMatch(ctx, "bob", "alice", domain.RegionNA, "", "")
	require.NoError(t, err)

	profile, err := e.playerSvc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0.5, profile.WinRate)
	assert.Len(t, profile.Recent, 2)
	assert.Equal(t, "C-Tier", profile.Tier)
	assert.Equal(t, e.model.AggregateFor(profile.Player), profile.Aggregate)

	_, err = e.playerSvc.Profile(ctx, "ghost")
	assert.True(t, domain.IsPlayerNotFound(err))
}

func TestLeaderboardRegional(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	e.register(t, "bob", "BobRBX")
	e.register(t, "carol", "CarolRBX")

	require.NoError(t, e.playerSvc.SetRating(ctx, "bob", domain.RegionNA, 1500))
	require.NoError(t, e.playerSvc.SetRating(ctx, "carol", domain.RegionNA, 1350))

	entries, err := e.playerSvc.Leaderboard(ctx, domain.RegionNA, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "bob", entries[0].Player.ID)
	assert.Equal(t, 1500, entries[0].Rating)
	assert.Equal(t, "B-Tier", entries[0].Tier)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "carol", entries[1].Player.ID)
	assert.Equal(t, "alice", entries[2].Player.ID)
}

func TestLeaderboardOverall(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	e.register(t, "bob", "BobRBX")

	// Bob leads NA but alice leads on aggregate.
	require.NoError(t, e.playerSvc.SetRating(ctx, "bob", domain.RegionNA, 1400))
	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionEU, 1500))
	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionAS, 1400))

	entries, err := e.playerSvc.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Player.ID)
	assert.Equal(t, e.model.Aggregate(1200, 1500, 1400), entries[0].Rating)
}

func TestSetRatingValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")

	assert.True(t, domain.IsValidation(e.playerSvc.SetRating(ctx, "alice", domain.RegionNA, -1)))
	assert.True(t, domain.IsValidation(e.playerSvc.SetRating(ctx, "alice", domain.RegionNA, 9999)))
	assert.True(t, domain.IsPlayerNotFound(e.playerSvc.SetRating(ctx, "ghost", domain.RegionNA, 1300)))

	require.NoError(t, e.playerSvc.SetRating(ctx, "alice", domain.RegionNA, 1300))
	alice, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1300, alice.RatingNA)
	assert.Equal(t, 0, alice.MatchesPlayed, "admin override produces no match record")
}

func TestEditProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")

	require.NoError(t, e.playerSvc.EditProfile(ctx, "alice", "", "NewHandle"))
	alice, err := e.players.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "NewHandle", alice.Handle)
	assert.Equal(t, "AliceRBX", alice.DisplayName, "empty fields stay as they were")

	assert.True(t, domain.IsValidation(e.playerSvc.EditProfile(ctx, "alice", " ", "")))
}

func TestRemove(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")
	e.register(t, "bob", "BobRBX")

	res, err := e.ledger.ReportMatch(ctx, "alice", "bob", domain.RegionNA, "", "")
	require.NoError(t, err)

	require.NoError(t, e.playerSvc.Remove(ctx, "alice"))
	_, err = e.players.Get(ctx, "alice")
	assert.True(t, domain.IsPlayerNotFound(err))

	// Match records stay for audit.
	_, err = e.matches.Get(ctx, res.MatchID)
	assert.NoError(t, err)

	assert.True(t, domain.IsPlayerNotFound(e.playerSvc.Remove(ctx, "alice")))
}

func TestTournamentSignup(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice", "AliceRBX")

	tour, err := e.tournament.Create(ctx, "Winter Cup", domain.RegionNA)
	require.NoError(t, err)

	require.NoError(t, e.tournament.Signup(ctx, tour.ID, "alice"))
	require.NoError(t, e.tournament.Signup(ctx, tour.ID, "alice"), "signup is idempotent")

	participants, err := e.tournament.Participants(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, participants)

	assert.True(t, domain.IsPlayerNotFound(e.tournament.Signup(ctx, tour.ID, "ghost")))

	require.NoError(t, e.tournament.Archive(ctx, tour.ID))
	assert.True(t, domain.IsValidation(e.tournament.Signup(ctx, tour.ID, "alice")))

	active, err := e.tournament.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
