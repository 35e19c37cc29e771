package review

import "errors"

var ErrNotFound = errors.New("not found")

type lookupError struct{}

func (lookupError) Error() string { return "lookup failed" }

func (lookupError) Is(target error) bool { return target == ErrNotFound }

func missing(err error) bool {
	return err == ErrNotFound // want `use errors\.Is\(err, ErrNotFound\)`
}

func present(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}
