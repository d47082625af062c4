package rating

import (
	"math"
	"sort"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

// Tier is one row of the descending threshold table.
type Tier struct {
	Name      string
	Threshold int
}

// Config carries every tunable of the rating model so environments and tests
// can pin their own values instead of relying on package constants.
type Config struct {
	StartingRating     int
	KFactor            int
	ProvisionalKFactor int
	// ProvisionalMatches is the matches-played count below which a player
	// still gets the elevated K factor.
	ProvisionalMatches int
	Tiers              []Tier
	UnrankedTier       string
}

// DefaultConfig mirrors the live ladder settings.
func DefaultConfig() Config {
	return Config{
		StartingRating:     1200,
		KFactor:            32,
		ProvisionalKFactor: 64,
		ProvisionalMatches: 10,
		Tiers: []Tier{
			{Name: "S-Tier", Threshold: 1800},
			{Name: "A-Tier", Threshold: 1600},
			{Name: "B-Tier", Threshold: 1400},
			{Name: "C-Tier", Threshold: 0},
		},
		UnrankedTier: "Unranked",
	}
}

// Model computes rating dynamics. All methods are pure and total; nothing
// here touches storage.
type Model struct {
	cfg Config
}

func NewModel(cfg Config) *Model {
	// Threshold lookup relies on descending order.
	tiers := make([]Tier, len(cfg.Tiers))
	copy(tiers, cfg.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold > tiers[j].Threshold })
	cfg.Tiers = tiers
	return &Model{cfg: cfg}
}

func (m *Model) Config() Config { return m.cfg }

// ExpectedScore is the logistic win expectation of a against b.
// ExpectedScore(a,b) + ExpectedScore(b,a) == 1 for all inputs.
func (m *Model) ExpectedScore(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// Delta is the rating exchange for a win, computed from both players'
// pre-match aggregate ratings and matches-played counts. Either player being
// provisional elevates K for the whole exchange. Rounding is half away from
// zero (math.Round); reverts replay the stored delta, never this function.
func (m *Model) Delta(winnerAgg, loserAgg, winnerPlayed, loserPlayed int) int {
	k := m.cfg.KFactor
	if winnerPlayed < m.cfg.ProvisionalMatches || loserPlayed < m.cfg.ProvisionalMatches {
		k = m.cfg.ProvisionalKFactor
	}
	return int(math.Round(float64(k) * (1 - m.ExpectedScore(winnerAgg, loserAgg))))
}

// Aggregate is the rounded mean of the three regional ratings. It seeds the
// expectation calculation and feeds display and tiering; matches mutate the
// regional ratings, never the aggregate itself.
func (m *Model) Aggregate(na, eu, as int) int {
	return int(math.Round(float64(na+eu+as) / 3))
}

// AggregateFor is Aggregate applied to a player record.
func (m *Model) AggregateFor(p *domain.Player) int {
	return m.Aggregate(p.RatingNA, p.RatingEU, p.RatingAS)
}

// TierFor returns the first tier whose threshold the rating meets, or the
// unranked sentinel. With a zero-floor table the sentinel is unreachable for
// non-negative ratings, but it is defined regardless.
func (m *Model) TierFor(rating int) string {
	for _, t := range m.cfg.Tiers {
		if rating >= t.Threshold {
			return t.Name
		}
	}
	return m.cfg.UnrankedTier
}
