package bot

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

func TestRenderError(t *testing.T) {
	a := &App{}
	logger := zerolog.Nop()

	tests := []struct {
		name     string
		err      error
		contains string
	}{{
		"self match",
		domain.ErrSelfMatch,
		"against themselves",
	}, {
		"winner not registered",
		&domain.PlayerNotFoundError{PlayerID: "x", Side: domain.SideWinner},
		"winner is not registered",
	}, {
		"player not registered",
		&domain.PlayerNotFoundError{PlayerID: "x"},
		"not registered",
	}, {
		"duplicate registration",
		domain.ErrAlreadyRegistered,
		"already registered",
	}, {
		"match not found",
		domain.ErrMatchNotFound,
		"No match with that id",
	}, {
		"ambiguous prefix",
		domain.ErrAmbiguousMatchID,
		"more than one match",
	}, {
		"tournament not found",
		domain.ErrTournamentNotFound,
		"No tournament",
	}, {
		"not admin",
		errNotAdmin,
		"tournament organizer",
	}, {
		"validation",
		&domain.ValidationError{Field: "region", Reason: "must be NA, EU, or AS"},
		"Invalid region",
	}, {
		"unexpected errors get the generic fallback",
		errors.New("disk on fire"),
		"unexpected error",
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := a.renderError(logger, test.err)
			assert.Contains(t, msg, test.contains)
			assert.NotContains(t, msg, "disk on fire", "internal detail never leaks to users")
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortID("abcdefghijklmnop"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestStreakText(t *testing.T) {
	assert.Equal(t, "3W (best 5W)", streakText(&domain.Player{WinStreak: 3, BestWinStreak: 5}))
	assert.Equal(t, "2L (best 4W)", streakText(&domain.Player{LossStreak: 2, BestWinStreak: 4}))
	assert.Equal(t, "none", streakText(&domain.Player{}))
}
