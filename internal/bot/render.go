package bot

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/pasamhere/ec-elo-bot/internal/domain"
)

// renderError maps every typed error to its specific user-facing message.
// Anything unclassified is logged with full context and rendered as the
// generic fallback, never swallowed.
func (a *App) renderError(logger zerolog.Logger, err error) string {
	var pnf *domain.PlayerNotFoundError
	var validation *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrSelfMatch):
		return "A player cannot play against themselves."
	case errors.As(err, &pnf):
		if pnf.Side != "" {
			return "The " + string(pnf.Side) + " is not registered. Both players must /register first."
		}
		return "That player is not registered."
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "You are already registered!"
	case errors.Is(err, domain.ErrAmbiguousMatchID):
		return "That match id prefix matches more than one match; use more characters."
	case errors.Is(err, domain.ErrMatchNotFound):
		return "No match with that id. It may have already been reverted."
	case errors.Is(err, domain.ErrTournamentNotFound):
		return "No tournament with that id."
	case errors.Is(err, errNotAdmin):
		return "You need to be a tournament organizer to do that."
	case errors.As(err, &validation):
		return "Invalid " + validation.Field + ": " + validation.Reason + "."
	default:
		logger.Error().Err(err).Msg("command failed")
		return "An unexpected error occurred. Please try again or contact an admin."
	}
}
