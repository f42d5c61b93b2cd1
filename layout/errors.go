package layout

import (
	"errors"
	"fmt"
)

// ErrLayoutInvariant is wrapped by every InvariantError.
var ErrLayoutInvariant = errors.New("layout invariant violated")

// InvariantError reports geometry the engine cannot work with. It aborts
// generation.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "layout: " + e.Detail
}

func (e *InvariantError) Unwrap() error { return ErrLayoutInvariant }

func invariant(format string, args ...any) error {
	return &InvariantError{Detail: fmt.Sprintf(format, args...)}
}
