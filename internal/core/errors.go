package core

import (
	"fmt"

	"benchcore/pkg/measure"
)

// ShapeMismatchError reports source, destination, or volume selections whose
// sizes cannot be broadcast against each other.
type ShapeMismatchError struct {
	Op     string
	Reason string
}

func (e ShapeMismatchError) Error() string {
	return e.Op + ": " + e.Reason
}

// InsufficientVolumeError reports a planned aspiration that would take a
// tracked well below zero.
type InsufficientVolumeError struct {
	Well      string
	Requested measure.Quantity
	Available measure.Quantity
}

func (e InsufficientVolumeError) Error() string {
	return fmt.Sprintf("well %s holds %s, cannot aspirate %s", e.Well, e.Available, e.Requested)
}

// CapacityExceededError reports a request that no tip class or destination
// well can absorb.
type CapacityExceededError struct {
	Op     string
	Limit  measure.Quantity
	Volume measure.Quantity
	Reason string
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: volume %s exceeds %s (%s)", e.Op, e.Volume, e.Limit, e.Reason)
}
