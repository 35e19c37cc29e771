package annotation

import "github.com/labelquorum/quorum/internal/errors"

type annotationError string

func (e annotationError) Error() string { return string(e) }

func (annotationError) ErrorCategory() errors.ErrorCategory { return errors.CategoryValidation }

var (
	// ErrInvalidLabel is returned for labels without an item or annotator.
	ErrInvalidLabel error = annotationError("label needs an item and an annotator")
	// ErrNotProjectMember is returned when the annotator belongs to another project.
	ErrNotProjectMember error = annotationError("annotator is not a member of this project")
	// ErrNotLabelOwner is returned when an annotator retracts someone else's label.
	ErrNotLabelOwner error = annotationError("label belongs to another annotator")
)

// errorType maps an error to the error_type metric label.
func errorType(err error) string {
	var categorized errors.CategorizedError
	if errors.As(err, &categorized) {
		return string(categorized.ErrorCategory())
	}
	return string(errors.CategoryGeneric)
}
