package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfMatch is returned when a match is reported with the same
	// player on both sides.
	ErrSelfMatch = errors.New("a player cannot play against themselves")

	// ErrMatchNotFound covers unknown and already-reverted match ids.
	ErrMatchNotFound = errors.New("match not found")

	// ErrAmbiguousMatchID is returned when a match id prefix resolves to
	// more than one match.
	ErrAmbiguousMatchID = errors.New("match id prefix is ambiguous")

	// ErrAlreadyRegistered is returned on a second registration attempt
	// for the same identity.
	ErrAlreadyRegistered = errors.New("player is already registered")

	ErrTournamentNotFound = errors.New("tournament not found")
)

// MatchSide names which participant of a reported match an error refers to.
type MatchSide string

const (
	SideWinner MatchSide = "winner"
	SideLoser  MatchSide = "loser"
)

// PlayerNotFoundError reports an unregistered participant, naming which side
// of the match (if any) the missing player was on.
type PlayerNotFoundError struct {
	PlayerID string
	Side     MatchSide
}

func (e *PlayerNotFoundError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("%s %s is not registered", e.Side, e.PlayerID)
	}
	return fmt.Sprintf("player %s is not registered", e.PlayerID)
}

// IsPlayerNotFound reports whether err wraps a PlayerNotFoundError.
func IsPlayerNotFound(err error) bool {
	var pnf *PlayerNotFoundError
	return errors.As(err, &pnf)
}

// ValidationError flags malformed input from an admin or user command.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
