package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/config"
	"github.com/pasamhere/ec-elo-bot/internal/constants"
	"github.com/pasamhere/ec-elo-bot/internal/service"
)

// App is the chat front end: it parses commands into typed arguments, calls
// the services, and renders plain-text replies. No rating or ledger logic
// lives here.
type App struct {
	cfg        *config.Config
	bot        *tgbotapi.BotAPI
	playerSvc  *service.PlayerService
	ledger     *service.LedgerService
	tournament *service.TournamentService
	logger     zerolog.Logger
}

func New(
	cfg *config.Config,
	playerSvc *service.PlayerService,
	ledger *service.LedgerService,
	tournament *service.TournamentService,
	logger zerolog.Logger,
) (*App, error) {
	b, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	return &App{
		cfg:        cfg,
		bot:        b,
		playerSvc:  playerSvc,
		ledger:     ledger,
		tournament: tournament,
		logger:     logger,
	}, nil
}

// Run drives the long-poll update loop until ctx is cancelled. Active
// tournaments are rehydrated first so signup handling survives restarts.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.tournament.RehydrateSignups(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("failed to rehydrate tournament signups")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = constants.TelegramPollPeriod

	updates := a.bot.GetUpdatesChan(u)

	a.logger.Info().Str("bot", a.bot.Self.UserName).Msg("bot is ready")
	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return ctx.Err()
		case upd := <-updates:
			if upd.Message == nil || !upd.Message.IsCommand() {
				continue
			}
			a.handleCommand(ctx, upd.Message)
		}
	}
}

func (a *App) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	logger := a.logger.With().
		Int64("from", m.From.ID).
		Str("command", m.Command()).
		Logger()

	reply, err := a.dispatch(ctx, m)
	if err != nil {
		reply = a.renderError(logger, err)
	}
	if reply == "" {
		return
	}
	if err := a.send(m.Chat.ID, reply); err != nil {
		logger.Error().Err(err).Msg("failed to send reply")
	}
}

func (a *App) dispatch(ctx context.Context, m *tgbotapi.Message) (string, error) {
	args := strings.Fields(m.CommandArguments())
	userID := strconv.FormatInt(m.From.ID, 10)

	switch m.Command() {
	case "start", "help":
		return a.helpText(a.isAdmin(m.From.ID)), nil
	case "register":
		return a.handleRegister(ctx, m, args)
	case "report":
		return a.handleReport(ctx, userID, args)
	case "revert":
		return a.handleRevert(ctx, args)
	case "leaderboard":
		return a.handleLeaderboard(ctx, args)
	case "profile":
		return a.handleProfile(ctx, userID, args)
	case "history":
		return a.handleHistory(ctx, userID, args)
	case "tournament":
		return a.handleTournament(ctx, userID, m.From.ID, args)
	case "setelo":
		return a.handleSetRating(ctx, m.From.ID, args)
	case "editprofile":
		return a.handleEditProfile(ctx, m.From.ID, args)
	case "removeplayer":
		return a.handleRemovePlayer(ctx, m.From.ID, args)
	case "import":
		return a.handleImport(ctx, userID, m.From.ID, m.CommandArguments())
	default:
		return "", nil
	}
}

func (a *App) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := a.bot.Send(msg)
	return err
}

func (a *App) isAdmin(id int64) bool {
	return a.cfg.AdminIDs[id]
}

func (a *App) helpText(admin bool) string {
	var b strings.Builder
	b.WriteString("Empire Clash ELO commands:\n")
	b.WriteString("/register <handle> - join the ladder\n")
	b.WriteString("/report <winner> <loser> <NA|EU|AS> [tournament] - record a match\n")
	b.WriteString("/revert <match id> - undo a reported match\n")
	b.WriteString("/leaderboard [NA|EU|AS] - top players (overall by default)\n")
	b.WriteString("/profile [handle] - your stats or another player's\n")
	b.WriteString("/history [handle] - recent matches\n")
	b.WriteString("/tournament list|signup <id> - tournaments\n")
	if admin {
		b.WriteString("\nAdmin:\n")
		b.WriteString("/setelo <handle> <region> <value>\n")
		b.WriteString("/editprofile <handle> [name=...] [handle=...]\n")
		b.WriteString("/removeplayer <handle>\n")
		b.WriteString("/tournament new <region> <name> | archive <id>\n")
		b.WriteString("/import <tournament id> winner>loser; winner>loser; ...\n")
	}
	return b.String()
}
