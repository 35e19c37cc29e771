package labeling

import (
	"fmt"

	"github.com/labelquorum/quorum/internal/errors"
)

// Names of the rules a label can violate.
const (
	RuleExclusiveCategory = "exclusive-category"
	RuleDuplicateCategory = "duplicate-category"
	RuleOverlappingSpans  = "overlapping-spans"
	RuleDuplicateText     = "duplicate-text"
	RuleMalformedLabel    = "malformed-label"
)

// ErrConstraintViolation matches every *ConstraintViolation with errors.Is.
var ErrConstraintViolation = errors.NewStd("label violates project policy")

// ConstraintViolation reports why a label was rejected. The annotator can
// recover by choosing a different label.
type ConstraintViolation struct {
	Rule   string
	Reason string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("label rejected (%s): %s", e.Rule, e.Reason)
}

// Is matches ErrConstraintViolation.
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}

// ErrorCategory implements errors.CategorizedError.
func (e *ConstraintViolation) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryConstraint
}

func violation(rule, format string, args ...any) *ConstraintViolation {
	return &ConstraintViolation{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}
