package core

import (
	"benchcore/pkg/plate"
)

// Cover places a lid on a container, emitting a cover instruction. An empty
// lid selects the container type's first supported lid. Re-covering with the
// same lid is a no-op that returns the index of the instruction that already
// covers the container, or -1 when the lid was present at ref time.
// Covering over a different lid or over a seal removes the old state first.
func (p *Protocol) Cover(c *plate.Container, lid string) (int, error) {
	name, err := p.refNameFor(c)
	if err != nil {
		return -1, err
	}
	if lid == "" {
		if len(c.Type().CoverTypes) == 0 {
			return -1, plate.StateError{Container: c.Name(), Op: "cover", Reason: "container type supports no lids"}
		}
		lid = c.Type().CoverTypes[0]
	}
	if state := c.Cover(); state.Covered() && state.Label() == lid {
		if idx, ok := p.coverIndex[c.ID()]; ok {
			return idx, nil
		}
		return -1, nil
	}
	// Reject an invalid lid before the implicit open so a failing request
	// leaves the old cover and the instruction stream untouched.
	if err := c.CheckCover(lid); err != nil {
		return -1, err
	}
	p.openFor(c, name)
	if err := c.ApplyCover(lid); err != nil {
		return -1, err
	}
	idx := p.append(&Cover{Object: name, Lid: lid})
	p.coverIndex[c.ID()] = idx
	return idx, nil
}

// Uncover removes a container's lid. Uncovering an open container is a no-op
// returning -1. Uncovering a sealed container fails; use Unseal.
func (p *Protocol) Uncover(c *plate.Container) (int, error) {
	name, err := p.refNameFor(c)
	if err != nil {
		return -1, err
	}
	state := c.Cover()
	switch {
	case state.Open():
		return -1, nil
	case state.Sealed():
		return -1, plate.StateError{Container: c.Name(), Op: "uncover", Reason: "container is sealed, not covered"}
	}
	c.ClearCover()
	delete(p.coverIndex, c.ID())
	return p.append(&Uncover{Object: name}), nil
}

// Seal applies an adhesive seal, emitting a seal instruction. An empty kind
// selects the container type's first supported seal. Re-sealing with the same
// kind is a no-op returning the prior instruction index, or -1 when the seal
// was present at ref time. Sealing a covered container uncovers it first.
func (p *Protocol) Seal(c *plate.Container, kind string) (int, error) {
	name, err := p.refNameFor(c)
	if err != nil {
		return -1, err
	}
	if kind == "" {
		if len(c.Type().SealTypes) == 0 {
			return -1, plate.StateError{Container: c.Name(), Op: "seal", Reason: "container type supports no seals"}
		}
		kind = c.Type().SealTypes[0]
	}
	if state := c.Cover(); state.Sealed() && state.Label() == kind {
		if idx, ok := p.coverIndex[c.ID()]; ok {
			return idx, nil
		}
		return -1, nil
	}
	// Same ordering as Cover: validate before the implicit open.
	if err := c.CheckSeal(kind); err != nil {
		return -1, err
	}
	p.openFor(c, name)
	if err := c.ApplySeal(kind); err != nil {
		return -1, err
	}
	idx := p.append(&Seal{Object: name, Kind: kind})
	p.coverIndex[c.ID()] = idx
	return idx, nil
}

// Unseal removes a container's seal. Unsealing an open container is a no-op
// returning -1. Unsealing a covered container fails; use Uncover.
func (p *Protocol) Unseal(c *plate.Container) (int, error) {
	name, err := p.refNameFor(c)
	if err != nil {
		return -1, err
	}
	state := c.Cover()
	switch {
	case state.Open():
		return -1, nil
	case state.Covered():
		return -1, plate.StateError{Container: c.Name(), Op: "unseal", Reason: "container is covered, not sealed"}
	}
	c.ClearCover()
	delete(p.coverIndex, c.ID())
	return p.append(&Unseal{Object: name}), nil
}

// openFor clears any lid or seal from a container ahead of a state change
// that requires it open, emitting the matching uncover or unseal instruction.
func (p *Protocol) openFor(c *plate.Container, name string) {
	state := c.Cover()
	switch {
	case state.Covered():
		c.ClearCover()
		delete(p.coverIndex, c.ID())
		p.append(&Uncover{Object: name})
	case state.Sealed():
		c.ClearCover()
		delete(p.coverIndex, c.ID())
		p.append(&Unseal{Object: name})
	}
}
