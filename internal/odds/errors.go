package odds

import (
	"errors"
	"fmt"
)

// ErrDegenerateOdds is matched by every DomainError via errors.Is.
var ErrDegenerateOdds = errors.New("odds: degenerate input")

// DomainError reports an input a conversion is not defined for
// (zero American odds, decimal odds of 1.0, a zero probability, ...).
type DomainError struct {
	Op    string
	Value float64
	Msg   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("odds: %s(%g): %s", e.Op, e.Value, e.Msg)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDegenerateOdds
}

func domainErr(op string, v float64, msg string) error {
	return &DomainError{Op: op, Value: v, Msg: msg}
}
