package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/lineup/internal/validator"
)

// ErrMissingTeam is returned when a request omits the acting team id.
var ErrMissingTeam = errors.New("acting team id is required")

// BatchSizeError is returned when a batch exceeds the configured limit.
// The whole request is rejected; nothing is planned or committed.
type BatchSizeError struct {
	Size  int
	Limit int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch of %d players exceeds limit of %d", e.Size, e.Limit)
}

// IsBatchSizeError returns true if the error is a BatchSizeError.
// Uses errors.As to handle wrapped errors.
func IsBatchSizeError(err error) bool {
	var be *BatchSizeError
	return errors.As(err, &be)
}

// NotRosteredError is returned when a move or drop names a player the team
// does not carry.
type NotRosteredError struct {
	TeamID   string
	PlayerID string
}

func (e *NotRosteredError) Error() string {
	return fmt.Sprintf("player %s is not on team %s's roster", e.PlayerID, e.TeamID)
}

// RejectedError is returned when a move fails capacity or eligibility
// validation. Result carries the structured issues.
type RejectedError struct {
	PlayerID string
	Result   validator.Result
}

func (e *RejectedError) Error() string {
	if len(e.Result.Errors) == 0 {
		return fmt.Sprintf("move for player %s rejected", e.PlayerID)
	}
	return fmt.Sprintf("move for player %s rejected: %s", e.PlayerID, e.Result.Errors[0].Error())
}

// IsRejected returns true if err is or wraps a RejectedError.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// CommitError wraps a failure returned by the Committer.
type CommitError struct {
	PlayerID string
	Err      error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit player %s: %v", e.PlayerID, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
