package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
	"github.com/pasamhere/ec-elo-bot/internal/middleware"
	"github.com/pasamhere/ec-elo-bot/internal/service"
)

// Server is the read-only HTTP surface: leaderboard and profile JSON for a
// community website, plus a health check. All writes go through the bot.
type Server struct {
	playerSvc *service.PlayerService
	logger    zerolog.Logger
}

func NewServer(playerSvc *service.PlayerService, logger zerolog.Logger) *Server {
	return &Server{playerSvc: playerSvc, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/players/", s.handlePlayer)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type leaderboardEntryDTO struct {
	Rank   int    `json:"rank"`
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
	Tier   string `json:"tier"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	var region domain.Region
	if q := r.URL.Query().Get("region"); q != "" {
		parsed, ok := domain.ParseRegion(q)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "region must be NA, EU, or AS"})
			return
		}
		region = parsed
	}

	entries, err := s.playerSvc.Leaderboard(r.Context(), region, constants.LeaderboardLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("leaderboard query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardEntryDTO{
			Rank:   e.Rank,
			Handle: e.Player.Handle,
			Rating: e.Rating,
			Tier:   e.Tier,
			Wins:   e.Player.Wins,
			Losses: e.Player.Losses,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

type profileDTO struct {
	Handle        string  `json:"handle"`
	DisplayName   string  `json:"displayName"`
	Aggregate     int     `json:"aggregate"`
	Tier          string  `json:"tier"`
	RatingNA      int     `json:"ratingNa"`
	RatingEU      int     `json:"ratingEu"`
	RatingAS      int     `json:"ratingAs"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	MatchesPlayed int     `json:"matchesPlayed"`
	WinRate       float64 `json:"winRate"`
	BestWinStreak int     `json:"bestWinStreak"`
	Tournaments   int     `json:"tournaments"`
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/players/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "player id required"})
		return
	}

	profile, err := s.playerSvc.Profile(r.Context(), id)
	if err != nil {
		var pnf *domain.PlayerNotFoundError
		if errors.As(err, &pnf) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "player not found"})
			return
		}
		s.logger.Error().Err(err).Str("player_id", id).Msg("profile query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	p := profile.Player
	writeJSON(w, http.StatusOK, profileDTO{
		Handle:        p.Handle,
		DisplayName:   p.DisplayName,
		Aggregate:     profile.Aggregate,
		Tier:          profile.Tier,
		RatingNA:      p.RatingNA,
		RatingEU:      p.RatingEU,
		RatingAS:      p.RatingAS,
		Wins:          p.Wins,
		Losses:        p.Losses,
		MatchesPlayed: p.MatchesPlayed,
		WinRate:       profile.WinRate,
		BestWinStreak: p.BestWinStreak,
		Tournaments:   len(profile.Tournaments),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
