package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasamhere/ec-elo-bot/internal/database"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

func newMatchRepo(t *testing.T) *MatchRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMatchRepository(db, zerolog.Nop())
}

func insertMatch(t *testing.T, r *MatchRepository, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, r.Insert(context.Background(), &domain.Match{
		ID:              id,
		WinnerID:        "alice",
		LoserID:         "bob",
		Region:          domain.RegionNA,
		Delta:           16,
		WinnerEloBefore: 1200,
		LoserEloBefore:  1200,
		PlayedAt:        now,
		CreatedAt:       now,
	}))
}

func TestResolve(t *testing.T) {
	r := newMatchRepo(t)
	ctx := context.Background()
	insertMatch(t, r, "abcd1234WXYZ")
	insertMatch(t, r, "abcd9999WXYZ")
	insertMatch(t, r, "zzzz0000WXYZ")

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{"exact id", "abcd1234WXYZ", "abcd1234WXYZ", nil},
		{"unique prefix", "abcd1", "abcd1234WXYZ", nil},
		{"unique single char", "z", "zzzz0000WXYZ", nil},
		{"ambiguous prefix", "abcd", "", domain.ErrAmbiguousMatchID},
		{"unknown", "nope", "", domain.ErrMatchNotFound},
		{"empty", "", "", domain.ErrMatchNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			id, err := r.Resolve(ctx, test.input)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, id)
		})
	}
}

func TestResolveIsCaseSensitive(t *testing.T) {
	// nanoids are case-sensitive; prefix matching must not case-fold.
	r := newMatchRepo(t)
	ctx := context.Background()
	insertMatch(t, r, "AAAA1111WXYZ")
	insertMatch(t, r, "aaaa2222WXYZ")

	id, err := r.Resolve(ctx, "AAAA")
	require.NoError(t, err)
	assert.Equal(t, "AAAA1111WXYZ", id)

	id, err = r.Resolve(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, "aaaa2222WXYZ", id)
}

func TestDeleteTwice(t *testing.T) {
	r := newMatchRepo(t)
	ctx := context.Background()
	insertMatch(t, r, "abcd1234WXYZ")

	require.NoError(t, r.Delete(ctx, "abcd1234WXYZ"))
	assert.ErrorIs(t, r.Delete(ctx, "abcd1234WXYZ"), domain.ErrMatchNotFound)
}

func TestInsertGeneratesID(t *testing.T) {
	r := newMatchRepo(t)
	now := time.Now().UTC()
	m := &domain.Match{
		WinnerID:        "alice",
		LoserID:         "bob",
		Region:          domain.RegionEU,
		Delta:           32,
		WinnerEloBefore: 1200,
		LoserEloBefore:  1200,
		PlayedAt:        now,
		CreatedAt:       now,
	}
	require.NoError(t, r.Insert(context.Background(), m))
	assert.NotEmpty(t, m.ID)

	got, err := r.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Delta, got.Delta)
	assert.Equal(t, domain.RegionEU, got.Region)
}
