package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/domain"
	"github.com/pasamhere/ec-elo-bot/internal/service"
)

var errNotAdmin = fmt.Errorf("admin only")

func (a *App) handleRegister(ctx context.Context, m *tgbotapi.Message, args []string) (string, error) {
	if len(args) != 1 {
		return "Usage: /register <handle>", nil
	}
	displayName := strings.TrimSpace(m.From.FirstName + " " + m.From.LastName)
	if m.From.UserName != "" {
		displayName = m.From.UserName
	}

	player, err := a.playerSvc.Register(ctx, strconv.FormatInt(m.From.ID, 10), displayName, args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Welcome, %s! You are on the leaderboards with %d ELO in every region.",
		player.Handle, player.RatingNA), nil
}

// resolvePlayer accepts a game handle or a raw platform id and returns the
// player id.
func (a *App) resolvePlayer(ctx context.Context, ref string) (*domain.Player, error) {
	ids, err := a.playerSvc.ResolveHandles(ctx, []string{ref})
	if err != nil {
		return nil, err
	}
	if id, ok := ids[ref]; ok {
		return &domain.Player{ID: id}, nil
	}
	p, err := a.playerSvc.Profile(ctx, ref)
	if err != nil {
		return nil, err
	}
	return p.Player, nil
}

func (a *App) handleReport(ctx context.Context, reportedBy string, args []string) (string, error) {
	if len(args) < 3 || len(args) > 4 {
		return "Usage: /report <winner> <loser> <NA|EU|AS> [tournament id]", nil
	}
	region, ok := domain.ParseRegion(args[2])
	if !ok {
		return "", &domain.ValidationError{Field: "region", Reason: "must be NA, EU, or AS"}
	}

	winner, err := a.resolvePlayer(ctx, args[0])
	if err != nil {
		return "", sideNotFound(err, domain.SideWinner)
	}
	loser, err := a.resolvePlayer(ctx, args[1])
	if err != nil {
		return "", sideNotFound(err, domain.SideLoser)
	}

	tournamentID := ""
	if len(args) == 4 {
		tournamentID = args[3]
	}

	res, err := a.ledger.ReportMatch(ctx, winner.ID, loser.ID, region, tournamentID, reportedBy)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Match recorded in %s (id %s)\nWinner: %d -> %d (+%d)\nLoser: %d -> %d (-%d)",
		res.Region, shortID(res.MatchID),
		res.WinnerEloBefore, res.WinnerEloAfter, res.Delta,
		res.LoserEloBefore, res.LoserEloAfter, res.Delta,
	), nil
}

func sideNotFound(err error, side domain.MatchSide) error {
	if pnf, ok := err.(*domain.PlayerNotFoundError); ok {
		return &domain.PlayerNotFoundError{PlayerID: pnf.PlayerID, Side: side}
	}
	return err
}

func (a *App) handleRevert(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "Usage: /revert <match id>", nil
	}
	res, err := a.ledger.RevertMatch(ctx, args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Match %s reverted: %d points returned in %s.",
		shortID(res.MatchID), res.Delta, res.Region), nil
}

func (a *App) handleLeaderboard(ctx context.Context, args []string) (string, error) {
	var region domain.Region
	label := "Overall"
	if len(args) > 0 {
		r, ok := domain.ParseRegion(args[0])
		if !ok {
			return "", &domain.ValidationError{Field: "region", Reason: "must be NA, EU, or AS"}
		}
		region = r
		label = string(r)
	}

	entries, err := a.playerSvc.Leaderboard(ctx, region, constants.LeaderboardLimit)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "The leaderboard is empty! Register with /register.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Empire Clash Leaderboard - %s\n", label)
	for _, e := range entries {
		fmt.Fprintf(&b, "#%d %s - %d ELO (%s)\n", e.Rank, e.Player.Handle, e.Rating, e.Tier)
	}
	return b.String(), nil
}

func (a *App) handleProfile(ctx context.Context, userID string, args []string) (string, error) {
	target := userID
	if len(args) > 0 {
		p, err := a.resolvePlayer(ctx, args[0])
		if err != nil {
			return "", err
		}
		target = p.ID
	}

	profile, err := a.playerSvc.Profile(ctx, target)
	if err != nil {
		return "", err
	}

	p := profile.Player
	winRate := "N/A"
	if p.MatchesPlayed > 0 {
		winRate = fmt.Sprintf("%.2f%%", profile.WinRate*100)
	}
	return fmt.Sprintf(
		"ELO Profile for %s\nW/L: %d/%d (win rate %s)\nStreak: %s\nOverall: %d (%s)\nNA: %d | EU: %d | AS: %d\nTournaments: %d",
		p.Handle, p.Wins, p.Losses, winRate,
		streakText(p),
		profile.Aggregate, profile.Tier,
		p.RatingNA, p.RatingEU, p.RatingAS,
		len(profile.Tournaments),
	), nil
}

func streakText(p *domain.Player) string {
	switch {
	case p.WinStreak > 0:
		return fmt.Sprintf("%dW (best %dW)", p.WinStreak, p.BestWinStreak)
	case p.LossStreak > 0:
		return fmt.Sprintf("%dL (best %dW)", p.LossStreak, p.BestWinStreak)
	default:
		return "none"
	}
}

func (a *App) handleHistory(ctx context.Context, userID string, args []string) (string, error) {
	target := userID
	if len(args) > 0 {
		p, err := a.resolvePlayer(ctx, args[0])
		if err != nil {
			return "", err
		}
		target = p.ID
	}

	matches, err := a.ledger.History(ctx, target, constants.HistoryLimit)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "No matches on record.", nil
	}

	var b strings.Builder
	b.WriteString("Recent matches:\n")
	for _, m := range matches {
		outcome := "won"
		if m.LoserID == target {
			outcome = "lost"
		}
		fmt.Fprintf(&b, "%s - %s %d points in %s (id %s)\n",
			m.PlayedAt.Format("2006-01-02"), outcome, m.Delta, m.Region, shortID(m.ID))
	}
	return b.String(), nil
}

func (a *App) handleTournament(ctx context.Context, userID string, fromID int64, args []string) (string, error) {
	if len(args) == 0 {
		return "Usage: /tournament list | signup <id> | new <region> <name> | archive <id>", nil
	}

	switch args[0] {
	case "list":
		ts, err := a.tournament.ListActive(ctx)
		if err != nil {
			return "", err
		}
		if len(ts) == 0 {
			return "No active tournaments.", nil
		}
		var b strings.Builder
		b.WriteString("Active tournaments:\n")
		for _, t := range ts {
			fmt.Fprintf(&b, "%s - %s (%s)\n", shortID(t.ID), t.Name, t.Region)
		}
		return b.String(), nil

	case "signup":
		if len(args) != 2 {
			return "Usage: /tournament signup <id>", nil
		}
		if err := a.tournament.Signup(ctx, args[1], userID); err != nil {
			return "", err
		}
		return "You are signed up.", nil

	case "new":
		if !a.isAdmin(fromID) {
			return "", errNotAdmin
		}
		if len(args) < 3 {
			return "Usage: /tournament new <region> <name>", nil
		}
		region, ok := domain.ParseRegion(args[1])
		if !ok {
			return "", &domain.ValidationError{Field: "region", Reason: "must be NA, EU, or AS"}
		}
		t, err := a.tournament.Create(ctx, strings.Join(args[2:], " "), region)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Tournament %q created with id %s.", t.Name, t.ID), nil

	case "archive":
		if !a.isAdmin(fromID) {
			return "", errNotAdmin
		}
		if len(args) != 2 {
			return "Usage: /tournament archive <id>", nil
		}
		if err := a.tournament.Archive(ctx, args[1]); err != nil {
			return "", err
		}
		return "Tournament archived.", nil

	default:
		return "Unknown tournament subcommand.", nil
	}
}

func (a *App) handleSetRating(ctx context.Context, fromID int64, args []string) (string, error) {
	if !a.isAdmin(fromID) {
		return "", errNotAdmin
	}
	if len(args) != 3 {
		return "Usage: /setelo <handle> <region> <value>", nil
	}
	region, ok := domain.ParseRegion(args[1])
	if !ok {
		return "", &domain.ValidationError{Field: "region", Reason: "must be NA, EU, or AS"}
	}
	value, err := strconv.Atoi(args[2])
	if err != nil {
		return "", &domain.ValidationError{Field: "rating", Reason: "must be a number"}
	}

	player, err := a.resolvePlayer(ctx, args[0])
	if err != nil {
		return "", err
	}
	if err := a.playerSvc.SetRating(ctx, player.ID, region, value); err != nil {
		return "", err
	}
	return fmt.Sprintf("Set %s's %s ELO to %d.", args[0], region, value), nil
}

func (a *App) handleEditProfile(ctx context.Context, fromID int64, args []string) (string, error) {
	if !a.isAdmin(fromID) {
		return "", errNotAdmin
	}
	if len(args) < 2 {
		return "Usage: /editprofile <handle> [name=...] [handle=...]", nil
	}

	player, err := a.resolvePlayer(ctx, args[0])
	if err != nil {
		return "", err
	}

	var name, handle string
	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "name="):
			name = strings.TrimPrefix(arg, "name=")
		case strings.HasPrefix(arg, "handle="):
			handle = strings.TrimPrefix(arg, "handle=")
		}
	}
	if err := a.playerSvc.EditProfile(ctx, player.ID, name, handle); err != nil {
		return "", err
	}
	return "Profile updated.", nil
}

func (a *App) handleRemovePlayer(ctx context.Context, fromID int64, args []string) (string, error) {
	if !a.isAdmin(fromID) {
		return "", errNotAdmin
	}
	if len(args) != 1 {
		return "Usage: /removeplayer <handle>", nil
	}

	player, err := a.resolvePlayer(ctx, args[0])
	if err != nil {
		return "", err
	}
	if err := a.playerSvc.Remove(ctx, player.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %s from the ELO system.", args[0]), nil
}

// handleImport reads "winner>loser; winner>loser; ..." pairings after the
// tournament id and applies them in the order supplied.
func (a *App) handleImport(ctx context.Context, reportedBy string, fromID int64, raw string) (string, error) {
	if !a.isAdmin(fromID) {
		return "", errNotAdmin
	}
	fields := strings.SplitN(strings.TrimSpace(raw), " ", 2)
	if len(fields) != 2 {
		return "Usage: /import <tournament id> winner>loser; winner>loser; ...", nil
	}
	tournamentID := fields[0]

	var results []service.BracketResult
	var handles []string
	for _, pairing := range strings.Split(fields[1], ";") {
		pairing = strings.TrimSpace(pairing)
		if pairing == "" {
			continue
		}
		sides := strings.SplitN(pairing, ">", 2)
		if len(sides) != 2 {
			return "", &domain.ValidationError{Field: "pairing", Reason: fmt.Sprintf("cannot parse %q", pairing)}
		}
		winner := strings.TrimSpace(sides[0])
		loser := strings.TrimSpace(sides[1])
		results = append(results, service.BracketResult{WinnerHandle: winner, LoserHandle: loser})
		handles = append(handles, winner, loser)
	}
	if len(results) == 0 {
		return "", &domain.ValidationError{Field: "pairings", Reason: "no pairings supplied"}
	}

	resolve, err := a.playerSvc.ResolveHandles(ctx, handles)
	if err != nil {
		return "", err
	}
	outcomes, err := a.ledger.ImportBracket(ctx, tournamentID, results, resolve, reportedBy)
	if err != nil {
		return "", err
	}

	applied := 0
	var failures []string
	for _, o := range outcomes {
		if o.Err == nil {
			applied++
			continue
		}
		failures = append(failures, fmt.Sprintf("%s>%s: %v", o.Result.WinnerHandle, o.Result.LoserHandle, o.Err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d/%d pairings.\n", applied, len(outcomes))
	for _, f := range failures {
		b.WriteString("failed: " + f + "\n")
	}
	return b.String(), nil
}

func shortID(id string) string {
	if len(id) > constants.MatchIDDisplayLen {
		return id[:constants.MatchIDDisplayLen]
	}
	return id
}
