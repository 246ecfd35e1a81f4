package insights

import "errors"

// EmptyInputError reports that no row survived normalization.
type EmptyInputError struct {
	// Received is the number of raw rows handed to the normalizer.
	Received int
}

func (e *EmptyInputError) Error() string {
	return "no usable rows after cleaning"
}

// IsEmptyInput reports whether err is, or wraps, an EmptyInputError.
func IsEmptyInput(err error) bool {
	var target *EmptyInputError
	return errors.As(err, &target)
}
