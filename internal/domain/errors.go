package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Typed errors below unwrap to one of these
// so callers can branch with errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrCapacityViolation = errors.New("capacity violation")
	ErrLookupMiss        = errors.New("lookup miss")
)

// ConfigurationError reports an invalid tuning parameter or input shape.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// CapacityViolationError reports a route whose demand exceeds the capacity it
// was built for.
type CapacityViolationError struct {
	Target   string
	Capacity float64
	Demand   float64
}

func (e *CapacityViolationError) Error() string {
	return fmt.Sprintf(
		"capacity violation: route for %q carries demand %g over capacity %g",
		e.Target, e.Demand, e.Capacity,
	)
}

func (e *CapacityViolationError) Unwrap() error { return ErrCapacityViolation }

// LookupMissError reports a query for a name a table does not know.
// To is empty for single-key tables (demand, position).
type LookupMissError struct {
	Table string
	From  string
	To    string
}

func (e *LookupMissError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("lookup miss: %s has no entry for %q", e.Table, e.From)
	}
	return fmt.Sprintf("lookup miss: %s has no entry for %q -> %q", e.Table, e.From, e.To)
}

func (e *LookupMissError) Unwrap() error { return ErrLookupMiss }
