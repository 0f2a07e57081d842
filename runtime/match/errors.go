package match

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMatchFailure is matched by every *MatchError
	ErrMatchFailure = errors.New("MatchException")
	// ErrNullDispatch is matched by every *NullDispatchError
	ErrNullDispatch = errors.New("NullPointerException")
)

// MatchError is raised when a value selects no case of a case list that
// has no default, or when reading a record component failed during matching
type MatchError struct {
	Selector Value
	// Cause is the error of a failed component accessor, if any
	Cause error
}

func (e *MatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: matching %v: %v", ErrMatchFailure, e.Selector, e.Cause)
	}
	return fmt.Sprintf("%v: no case matches %v", ErrMatchFailure, e.Selector)
}

func (e *MatchError) Is(target error) bool { return target == ErrMatchFailure }
func (e *MatchError) Unwrap() error        { return e.Cause }

// NullDispatchError is raised when null is dispatched to a case list without a null case
type NullDispatchError struct{}

func (e *NullDispatchError) Error() string {
	return fmt.Sprintf("%v: cannot dispatch null without a null case", ErrNullDispatch)
}

func (e *NullDispatchError) Is(target error) bool { return target == ErrNullDispatch }
