package grid

import (
	"errors"
	"fmt"
)

// ErrMalformedScenario is the sentinel for every structural or
// referential defect detected before a circuit is built. Match with
// errors.Is; the concrete *MalformedScenarioError carries the detail.
var ErrMalformedScenario = errors.New("malformed scenario")

// MalformedScenarioError names the entity and field that failed
// validation so the defect is reported at its real cause instead of
// surfacing later as an opaque solver failure.
type MalformedScenarioError struct {
	Entity string // "bus", "ac_line", "two_winding_transformer", "simple_dispatchable_device"
	UID    string
	Reason string
}

func (e *MalformedScenarioError) Error() string {
	if e.UID == "" {
		return fmt.Sprintf("malformed scenario: %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("malformed scenario: %s %q: %s", e.Entity, e.UID, e.Reason)
}

func (e *MalformedScenarioError) Is(target error) bool {
	return target == ErrMalformedScenario
}

func malformed(entity, uid, format string, args ...any) error {
	return &MalformedScenarioError{
		Entity: entity,
		UID:    uid,
		Reason: fmt.Sprintf(format, args...),
	}
}
