package types

import (
	"errors"
	"fmt"
)

// ErrEmptySeries is returned when no price bars exist for the requested range.
var ErrEmptySeries = errors.New("price series is empty")

// InvalidParameterError reports a constraint violation on a strategy
// parameter or the request itself. Detected before any simulation starts.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// InsufficientDataError reports a price series shorter than the longest
// indicator window the requested strategy needs.
type InsufficientDataError struct {
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient price data: need at least %d bars, got %d", e.Required, e.Got)
}
