package core

import "fmt"

// Submission-time errors. Their Error() text is
// part of the protocol contract — the HTTP frontend and property tests
// match on these literal strings, not just Go error identity.

// ErrNotAuthorized covers both same-class transfers (player-to-player,
// booth-to-booth) and a player paired with their own namesake booth.
var ErrNotAuthorized = fmt.Errorf("Not authorized")

// ErrInvalidAmount covers out-of-range transfer amounts for either
// direction of a player/booth pair.
var ErrInvalidAmount = fmt.Errorf("Invalid amount")

// ErrNotPaid is returned when a booth tries to pay out a player who
// has not paid that booth since its last payout.
var ErrNotPaid = fmt.Errorf("Not paid")

// UnknownUserError names the offending side of a transfer referencing
// an unregistered username.
type UnknownUserError struct {
	User string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("Unknown user: %s", e.User)
}
