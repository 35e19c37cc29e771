package consensus

import (
	"fmt"
	"time"

	"github.com/labelquorum/quorum/internal/datastore/repository"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/labeling"
	"github.com/labelquorum/quorum/internal/voting"
)

// MsgUnavailable is shown for every storage failure.
const MsgUnavailable = "the database is temporarily unavailable, please retry"

// UserMessage renders err for an end user. Domain errors keep their
// precise wording; storage errors collapse into MsgUnavailable.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var violation *labeling.ConstraintViolation
	if errors.As(err, &violation) {
		return fmt.Sprintf("label not added: %s (%s policy)", violation.Reason, violation.Rule)
	}

	var window *voting.OutsideVotingWindowError
	if errors.As(err, &window) {
		return fmt.Sprintf("voting is open from %s to %s; server time is %s",
			window.Begin.Format(time.RFC3339), window.End.Format(time.RFC3339), window.Now.Format(time.RFC3339))
	}

	switch {
	case repository.Retryable(err):
		return MsgUnavailable
	case errors.Is(err, repository.ErrDuplicateKey):
		return "the record already exists"
	case errors.IsCategory(err, errors.CategoryVoting),
		errors.IsCategory(err, errors.CategoryConflict),
		errors.IsCategory(err, errors.CategoryValidation),
		errors.IsCategory(err, errors.CategoryNotFound):
		return err.Error()
	default:
		return "internal error"
	}
}
