package runner

import (
	"errors"
	"fmt"
)

// FailFastError reports the check failure that stopped a run under
// AssertOnFailure.
type FailFastError struct {
	Suite   string
	Subtest string
	Detail  string
}

func (e *FailFastError) Error() string {
	return fmt.Sprintf("self-test aborted at suite %q subtest %q: %s", e.Suite, e.Subtest, e.Detail)
}

// IsFailFast reports whether err carries a fail-fast abort.
func IsFailFast(err error) bool {
	var ffe *FailFastError
	return errors.As(err, &ffe)
}
