package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	m := NewModel(DefaultConfig())

	tests := []struct {
		name     string
		a, b     int
		expected float64
	}{{
		"equal ratings are a coin flip",
		1200, 1200,
		0.5,
	}, {
		"400 points ahead",
		1600, 1200,
		10.0 / 11.0,
	}, {
		"400 points behind",
		1200, 1600,
		1.0 / 11.0,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.InDelta(t, test.expected, m.ExpectedScore(test.a, test.b), 1e-9)
		})
	}
}

func TestExpectedScoreComplement(t *testing.T) {
	m := NewModel(DefaultConfig())

	pairs := [][2]int{{1200, 1200}, {1000, 1800}, {1432, 1431}, {0, 4000}}
	for _, p := range pairs {
		sum := m.ExpectedScore(p[0], p[1]) + m.ExpectedScore(p[1], p[0])
		assert.InDelta(t, 1.0, sum, 1e-12, "pair %v", p)
	}
}

func TestDelta(t *testing.T) {
	m := NewModel(DefaultConfig())

	tests := []struct {
		name                       string
		winnerAgg, loserAgg        int
		winnerPlayed, loserPlayed  int
		expected                   int
	}{{
		"two fresh players split the provisional K",
		1200, 1200, 0, 0,
		32,
	}, {
		"two established players split the standard K",
		1200, 1200, 20, 20,
		16,
	}, {
		"one provisional player elevates K for both",
		1200, 1200, 20, 3,
		32,
	}, {
		"favourite winning established",
		1600, 1200, 50, 50,
		3,
	}, {
		"underdog winning established",
		1200, 1600, 50, 50,
		29,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := m.Delta(test.winnerAgg, test.loserAgg, test.winnerPlayed, test.loserPlayed)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestDeltaBoundsAndMonotonicity(t *testing.T) {
	m := NewModel(DefaultConfig())

	prev := m.Config().ProvisionalKFactor + 1
	for gap := -800; gap <= 800; gap += 50 {
		d := m.Delta(1200+gap, 1200, 0, 0)
		assert.GreaterOrEqual(t, d, 0)
		assert.LessOrEqual(t, d, m.Config().ProvisionalKFactor)
		assert.LessOrEqual(t, d, prev, "delta must not grow with the winner's lead (gap %d)", gap)
		prev = d
	}
}

func TestAggregate(t *testing.T) {
	m := NewModel(DefaultConfig())

	tests := []struct {
		name       string
		na, eu, as int
		expected   int
	}{
		{"all baseline", 1200, 1200, 1200, 1200},
		{"rounds up", 1201, 1201, 1200, 1201},
		{"rounds half away from zero", 1200, 1200, 1201, 1200},
		{"mixed", 1232, 1168, 1200, 1200},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, m.Aggregate(test.na, test.eu, test.as))
		})
	}
}

func TestTierFor(t *testing.T) {
	m := NewModel(DefaultConfig())

	tests := []struct {
		rating   int
		expected string
	}{
		{2200, "S-Tier"},
		{1800, "S-Tier"},
		{1799, "A-Tier"},
		{1600, "A-Tier"},
		{1599, "B-Tier"},
		{1400, "B-Tier"},
		{1399, "C-Tier"},
		{0, "C-Tier"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, m.TierFor(test.rating), "rating %d", test.rating)
	}
}

func TestTierForUnrankedSentinel(t *testing.T) {
	// A table without a zero floor exposes the sentinel.
	m := NewModel(Config{
		Tiers:        []Tier{{Name: "S-Tier", Threshold: 1800}},
		UnrankedTier: "Unranked",
	})
	assert.Equal(t, "Unranked", m.TierFor(1200))
}

func TestTierTableSortedOnConstruction(t *testing.T) {
	// Thresholds supplied out of order still resolve correctly.
	m := NewModel(Config{
		Tiers: []Tier{
			{Name: "C-Tier", Threshold: 0},
			{Name: "S-Tier", Threshold: 1800},
			{Name: "B-Tier", Threshold: 1400},
			{Name: "A-Tier", Threshold: 1600},
		},
		UnrankedTier: "Unranked",
	})
	assert.Equal(t, "A-Tier", m.TierFor(1650))
	assert.Equal(t, "C-Tier", m.TierFor(100))
}
