package plate

import "fmt"

// coverKind enumerates the three cover states a container can be in.
type coverKind int

const (
	kindUncovered coverKind = iota
	kindCovered
	kindSealed
)

// CoverState describes whether a container's lid is off, a removable lid is
// on, or an adhesive seal is applied. The state machine has no terminal
// state; it persists for the container's lifetime.
type CoverState struct {
	kind  coverKind
	label string
}

// Uncovered is the open state every container starts in unless refed with an
// initial cover.
func Uncovered() CoverState { return CoverState{} }

// CoveredWith is the state of wearing the named removable lid.
func CoveredWith(lid string) CoverState { return CoverState{kind: kindCovered, label: lid} }

// SealedWith is the state of carrying the named adhesive seal.
func SealedWith(seal string) CoverState { return CoverState{kind: kindSealed, label: seal} }

// Covered reports whether a removable lid is on.
func (s CoverState) Covered() bool { return s.kind == kindCovered }

// Sealed reports whether an adhesive seal is applied.
func (s CoverState) Sealed() bool { return s.kind == kindSealed }

// Open reports whether the container is uncovered.
func (s CoverState) Open() bool { return s.kind == kindUncovered }

// Label returns the lid or seal kind, empty when uncovered.
func (s CoverState) Label() string { return s.label }

func (s CoverState) String() string {
	switch s.kind {
	case kindCovered:
		return "covered(" + s.label + ")"
	case kindSealed:
		return "sealed(" + s.label + ")"
	default:
		return "uncovered"
	}
}

// ParseCoverState interprets a ref-time cover label: a known lid kind yields
// a covered state, a known seal kind a sealed one.
func ParseCoverState(label string) (CoverState, error) {
	if label == "" {
		return Uncovered(), nil
	}
	for _, lid := range LidKinds {
		if label == lid {
			return CoveredWith(label), nil
		}
	}
	for _, seal := range SealKinds {
		if label == seal {
			return SealedWith(label), nil
		}
	}
	return CoverState{}, fmt.Errorf("%q is not a recognized lid or seal kind", label)
}

// Cover returns the container's current cover state.
func (c *Container) Cover() CoverState { return c.cover }

// SetInitialCover records the cover state a container arrives in. Only valid
// states for the container type are accepted.
func (c *Container) SetInitialCover(state CoverState) error {
	switch {
	case state.Covered():
		return c.ApplyCover(state.label)
	case state.Sealed():
		return c.ApplySeal(state.label)
	default:
		c.cover = Uncovered()
		return nil
	}
}

// CheckCover validates that the container type can wear the lid, without
// touching state. Callers that auto-open a closed container first use this
// to reject an invalid lid before removing the old cover.
func (c *Container) CheckCover(lid string) error {
	if !c.ctype.HasCapability(CapCover) {
		return StateError{Container: c.name, Op: "cover", Reason: "container type " + c.ctype.Shortname + " cannot be covered"}
	}
	if !contains(c.ctype.CoverTypes, lid) {
		return StateError{Container: c.name, Op: "cover", Reason: fmt.Sprintf("lid %q is not valid for %s", lid, c.ctype.Shortname)}
	}
	return nil
}

// CheckSeal validates that the container type can carry the seal, without
// touching state.
func (c *Container) CheckSeal(seal string) error {
	if !c.ctype.HasCapability(CapSeal) {
		return StateError{Container: c.name, Op: "seal", Reason: "container type " + c.ctype.Shortname + " cannot be sealed"}
	}
	if !contains(c.ctype.SealTypes, seal) {
		return StateError{Container: c.name, Op: "seal", Reason: fmt.Sprintf("seal %q is not valid for %s", seal, c.ctype.Shortname)}
	}
	return nil
}

// ApplyCover transitions uncovered -> covered(lid). The container type must
// be coverable and the lid kind valid for it; a sealed container must be
// unsealed first.
func (c *Container) ApplyCover(lid string) error {
	if err := c.CheckCover(lid); err != nil {
		return err
	}
	if c.cover.Sealed() {
		return StateError{Container: c.name, Op: "cover", Reason: "container is sealed; unseal before covering"}
	}
	c.cover = CoveredWith(lid)
	return nil
}

// ApplySeal transitions uncovered -> sealed(seal). A covered container must
// be uncovered first; the tracker in the core does that implicitly.
func (c *Container) ApplySeal(seal string) error {
	if err := c.CheckSeal(seal); err != nil {
		return err
	}
	if c.cover.Covered() {
		return StateError{Container: c.name, Op: "seal", Reason: "container is covered; uncover before sealing"}
	}
	c.cover = SealedWith(seal)
	return nil
}

// ClearCover transitions back to uncovered from either closed state.
func (c *Container) ClearCover() {
	c.cover = Uncovered()
}

func contains(list []string, want string) bool {
	for _, have := range list {
		if have == want {
			return true
		}
	}
	return false
}
