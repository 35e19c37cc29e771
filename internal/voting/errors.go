package voting

import (
	"fmt"
	"time"

	"github.com/labelquorum/quorum/internal/errors"
)

// votingError is a sentinel error. Each value is matched by identity.
type votingError struct {
	msg      string
	category errors.ErrorCategory
}

func (e *votingError) Error() string { return e.msg }

func (e *votingError) ErrorCategory() errors.ErrorCategory { return e.category }

// Errors returned by Service. None of them is worth retrying.
var (
	ErrNotAnnotator         error = &votingError{"member is not an annotator of this project", errors.CategoryVoting}
	ErrDuplicateBallot      error = &votingError{"member has already voted on this rule", errors.CategoryVoting}
	ErrRuleAlreadyFinalized error = &votingError{"annotation rule is already finalized", errors.CategoryVoting}
	ErrRoundClosed          error = &votingError{"voting round is closed", errors.CategoryVoting}
	ErrActiveRoundExists    error = &votingError{"project already has an open voting round with pending rules", errors.CategoryConflict}
	ErrOutsideVotingWindow  error = &votingError{"ballot is outside the voting window", errors.CategoryVoting}

	ErrInvalidWindow  error = &votingError{"voting round must begin before it ends", errors.CategoryValidation}
	ErrEmptyRuleName  error = &votingError{"annotation rule name is empty", errors.CategoryValidation}
	ErrInvalidVerdict error = &votingError{"verdict must be approved, rejected, tie or no_votes", errors.CategoryValidation}
)

// OutsideVotingWindowError carries the window so it can be shown to the voter.
// It matches ErrOutsideVotingWindow.
type OutsideVotingWindowError struct {
	Now   time.Time
	Begin time.Time
	End   time.Time
}

func (e *OutsideVotingWindowError) Error() string {
	return fmt.Sprintf("ballot at %s is outside the voting window %s to %s",
		e.Now.Format(time.RFC3339), e.Begin.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// Is matches ErrOutsideVotingWindow.
func (e *OutsideVotingWindowError) Is(target error) bool {
	return target == ErrOutsideVotingWindow
}

// ErrorCategory implements errors.CategorizedError.
func (e *OutsideVotingWindowError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryVoting
}

// errorType names err for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotAnnotator):
		return "not_annotator"
	case errors.Is(err, ErrDuplicateBallot):
		return "duplicate_ballot"
	case errors.Is(err, ErrRuleAlreadyFinalized):
		return "rule_finalized"
	case errors.Is(err, ErrRoundClosed):
		return "round_closed"
	case errors.Is(err, ErrOutsideVotingWindow):
		return "outside_window"
	case errors.Is(err, ErrActiveRoundExists):
		return "active_round"
	case errors.IsNotFound(err):
		return "not_found"
	case errors.IsCategory(err, errors.CategoryValidation):
		return "invalid"
	case errors.IsCategory(err, errors.CategoryDatabase):
		return "storage"
	default:
		return "other"
	}
}
