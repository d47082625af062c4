package domain

import (
	"strings"
	"time"
)

// Region is one of the three competitive regions a match can be played in.
type Region string

const (
	RegionNA Region = "NA"
	RegionEU Region = "EU"
	RegionAS Region = "AS"
)

// Regions lists all valid regions in display order.
var Regions = []Region{RegionNA, RegionEU, RegionAS}

// ParseRegion normalizes user input ("na", "EU", ...) to a Region.
func ParseRegion(s string) (Region, bool) {
	switch Region(strings.ToUpper(strings.TrimSpace(s))) {
	case RegionNA:
		return RegionNA, true
	case RegionEU:
		return RegionEU, true
	case RegionAS:
		return RegionAS, true
	}
	return "", false
}

type Player struct {
	ID            string
	DisplayName   string
	Handle        string
	RatingNA      int
	RatingEU      int
	RatingAS      int
	Wins          int
	Losses        int
	MatchesPlayed int
	WinStreak     int
	LossStreak    int
	BestWinStreak int
	LastPlayedAt  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Rating returns the player's rating in the given region.
func (p *Player) Rating(region Region) int {
	switch region {
	case RegionEU:
		return p.RatingEU
	case RegionAS:
		return p.RatingAS
	default:
		return p.RatingNA
	}
}

// Match is an immutable ledger entry for one applied result. The delta and
// the before-ratings are snapshots taken when the match was applied, so a
// revert replays exactly what was written and never recomputes.
type Match struct {
	ID              string
	WinnerID        string
	LoserID         string
	Region          Region
	Delta           int
	WinnerEloBefore int
	LoserEloBefore  int
	TournamentID    string
	ReportedBy      string
	PlayedAt        time.Time
	CreatedAt       time.Time
}

type Tournament struct {
	ID        string
	Name      string
	Region    Region
	Archived  bool
	CreatedAt time.Time
}
