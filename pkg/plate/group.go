package plate

import (
	"fmt"

	"benchcore/pkg/measure"
)

// WellGroup is an ordered, mutable collection of well handles. Insertion
// order is significant: it determines instruction emission order in the
// planner. Membership checks deduplicate, iteration does not.
type WellGroup struct {
	wells []Well
	name  string
}

// NewWellGroup builds a group over the given wells in the given order.
func NewWellGroup(wells ...Well) *WellGroup {
	return &WellGroup{wells: append([]Well(nil), wells...)}
}

// Group wraps a single well as a one-element group, the common planner input.
func Group(w Well) *WellGroup { return NewWellGroup(w) }

// Len returns the number of wells in the group.
func (g *WellGroup) Len() int { return len(g.wells) }

// At returns the well at position i.
func (g *WellGroup) At(i int) Well { return g.wells[i] }

// Wells returns a copy of the member slice in iteration order.
func (g *WellGroup) Wells() []Well { return append([]Well(nil), g.wells...) }

// Name returns the group's label.
func (g *WellGroup) Name() string { return g.name }

// SetName labels the group.
func (g *WellGroup) SetName(name string) *WellGroup {
	g.name = name
	return g
}

// Append adds a well to the end of the group.
func (g *WellGroup) Append(w Well) *WellGroup {
	g.wells = append(g.wells, w)
	return g
}

// Extend appends every well of another group, preserving order.
func (g *WellGroup) Extend(other *WellGroup) *WellGroup {
	g.wells = append(g.wells, other.wells...)
	return g
}

// Insert places a well at position i, appending when i is past the end.
func (g *WellGroup) Insert(i int, w Well) *WellGroup {
	if i >= len(g.wells) {
		return g.Append(w)
	}
	if i < 0 {
		i = 0
	}
	g.wells = append(g.wells[:i], append([]Well{w}, g.wells[i:]...)...)
	return g
}

// Pop removes and returns the last well. The second return is false when the
// group is empty.
func (g *WellGroup) Pop() (Well, bool) {
	if len(g.wells) == 0 {
		return Well{}, false
	}
	last := g.wells[len(g.wells)-1]
	g.wells = g.wells[:len(g.wells)-1]
	return last, true
}

// Contains reports membership, ignoring duplicates and order.
func (g *WellGroup) Contains(w Well) bool {
	for _, have := range g.wells {
		if have == w {
			return true
		}
	}
	return false
}

// Equal reports whether both groups contain the same wells in the same order.
func (g *WellGroup) Equal(other *WellGroup) bool {
	if g.Len() != other.Len() {
		return false
	}
	for i, w := range g.wells {
		if other.wells[i] != w {
			return false
		}
	}
	return true
}

// Concat returns a new group holding this group's wells followed by the
// other's. Neither input is modified.
func (g *WellGroup) Concat(other *WellGroup) *WellGroup {
	combined := make([]Well, 0, len(g.wells)+len(other.wells))
	combined = append(combined, g.wells...)
	combined = append(combined, other.wells...)
	return &WellGroup{wells: combined}
}

// ConcatWell returns a new group with the bare well appended after this
// group's wells.
func (g *WellGroup) ConcatWell(w Well) *WellGroup {
	return g.Concat(Group(w))
}

// SetVolume broadcasts a volume to every member. The call is atomic: every
// well is validated against its container's limits before any is mutated.
func (g *WellGroup) SetVolume(volume measure.Quantity) error {
	for _, w := range g.wells {
		if err := w.container.checkVolume(w, volume); err != nil {
			return fmt.Errorf("set volume on group: %w", err)
		}
	}
	for _, w := range g.wells {
		if err := w.SetVolume(volume); err != nil {
			return err
		}
	}
	return nil
}

// SetProperties broadcasts a property mapping to every member, atomically.
func (g *WellGroup) SetProperties(properties map[string]any) error {
	if err := validateProperties(properties); err != nil {
		return fmt.Errorf("set properties on group: %w", err)
	}
	for _, w := range g.wells {
		if err := w.SetProperties(properties); err != nil {
			return err
		}
	}
	return nil
}

// WellsWith filters to members carrying the named property, optionally with a
// specific value.
func (g *WellGroup) WellsWith(key string, value any) *WellGroup {
	out := NewWellGroup()
	for _, w := range g.wells {
		have, ok := w.Properties()[key]
		if !ok {
			continue
		}
		if value == nil || have == value {
			out.Append(w)
		}
	}
	return out
}

// Indices returns the humanized addresses of every member. All members must
// belong to the same container.
func (g *WellGroup) Indices() ([]string, error) {
	if len(g.wells) == 0 {
		return nil, nil
	}
	owner := g.wells[0].container
	out := make([]string, 0, len(g.wells))
	for _, w := range g.wells {
		if w.container != owner {
			return nil, fmt.Errorf("indices require all wells in one container, found %q and %q",
				owner.name, w.container.name)
		}
		out = append(out, w.Humanize())
	}
	return out, nil
}
