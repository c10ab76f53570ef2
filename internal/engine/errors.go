package engine

import (
	"errors"
	"fmt"
)

// RoundsExceededError is returned when a run fails to converge within
// the engine's round limit.
//
// Hitting the limit aborts the whole run: the transaction rolls back and
// no partial derivations or provenance survive. A program that triggers
// it is either genuinely non-converging (rules that keep producing fresh
// tuples) or needs a higher limit via WithMaxRounds.
type RoundsExceededError struct {
	Token  string // The run that exceeded the limit
	Rounds int    // Number of rounds attempted
	Limit  int    // Maximum allowed rounds
}

// Error implements the error interface.
func (e *RoundsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded max rounds: %d rounds > %d limit",
		e.Token, e.Rounds, e.Limit)
}

// IsRoundsExceededError returns true if the error is a RoundsExceededError.
// Uses errors.As to handle wrapped errors.
func IsRoundsExceededError(err error) bool {
	var re *RoundsExceededError
	return errors.As(err, &re)
}
