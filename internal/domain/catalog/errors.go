package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateCode is returned by repositories when a test definition
// code collides with an existing one.
var ErrDuplicateCode = errors.New("test code already exists")

// ValidationError reports the input fields that were missing or invalid.
// It is surfaced to the caller as a field list so forms can render inline
// messages instead of a generic failure.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
