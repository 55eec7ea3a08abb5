// Package core implements the protocol-building session: container refs,
// cover/seal tracking, the liquid-handling planner, and the ordered
// instruction sequence handed to serialization.
package core

import (
	"fmt"

	"benchcore/pkg/plate"
)

// Ref associates a caller-facing name with the container it created.
type Ref struct {
	Name      string
	Container *plate.Container
	// InitialCover is the cover state the container arrived in, kept for
	// document assembly; the live state afterwards is the container's.
	InitialCover plate.CoverState
}

// RefOptions configures a new container ref.
type RefOptions struct {
	// ID is the external inventory identifier; empty means a new container.
	ID string
	// ContainerType is the catalog shortname.
	ContainerType string
	// Destiny selects storage or discard once the run ends.
	Destiny plate.Destiny
	// Cover optionally names the lid or seal the container arrives with.
	Cover string
}

// Protocol is the session state for one protocol build: refs, the emitted
// instruction sequence, and per-container cover bookkeeping. It is owned by a
// single caller for the lifetime of the build; none of its state is guarded
// for concurrent use.
type Protocol struct {
	refs         map[string]*Ref
	refOrder     []string
	refByID      map[string]string // container identity -> ref name
	instructions []Instruction

	// coverIndex remembers the instruction index of the latest cover or seal
	// applied per container, for idempotent re-requests.
	coverIndex map[string]int

	// lastPipette tracks the trailing pipette instruction so compatible legs
	// from subsequent requests can join its group list.
	lastPipette      int
	lastTipClass     TipClass
	lastPipetteValid bool
}

// New creates an empty protocol session.
func New() *Protocol {
	return &Protocol{
		refs:        make(map[string]*Ref),
		refByID:     make(map[string]string),
		coverIndex:  make(map[string]int),
		lastPipette: -1,
	}
}

// Ref creates a container, registers it under a unique name, and returns it.
func (p *Protocol) Ref(name string, opts RefOptions) (*plate.Container, error) {
	if name == "" {
		return nil, fmt.Errorf("ref name cannot be empty")
	}
	if _, exists := p.refs[name]; exists {
		return nil, fmt.Errorf("two containers in one protocol cannot share the name %q", name)
	}
	ctype, err := plate.TypeByShortname(opts.ContainerType)
	if err != nil {
		return nil, err
	}
	if !opts.Destiny.Valid() {
		return nil, fmt.Errorf("ref %q needs either a storage condition or discard", name)
	}
	container, err := plate.NewContainer(name, opts.ID, ctype, opts.Destiny)
	if err != nil {
		return nil, err
	}
	initial := plate.Uncovered()
	if opts.Cover != "" {
		state, err := plate.ParseCoverState(opts.Cover)
		if err != nil {
			return nil, fmt.Errorf("ref %q: %w", name, err)
		}
		if err := container.SetInitialCover(state); err != nil {
			return nil, fmt.Errorf("ref %q: %w", name, err)
		}
		initial = state
	}
	p.refs[name] = &Ref{Name: name, Container: container, InitialCover: initial}
	p.refOrder = append(p.refOrder, name)
	p.refByID[container.ID()] = name
	return container, nil
}

// Refs returns the refs in creation order.
func (p *Protocol) Refs() []*Ref {
	out := make([]*Ref, 0, len(p.refOrder))
	for _, name := range p.refOrder {
		out = append(out, p.refs[name])
	}
	return out
}

// Instructions returns the emitted instruction sequence in order.
func (p *Protocol) Instructions() []Instruction {
	return p.instructions
}

// InstructionCount returns how many instructions have been emitted.
func (p *Protocol) InstructionCount() int {
	return len(p.instructions)
}

// refNameFor resolves the ref name owning a container, failing for
// containers that were never refed in this protocol.
func (p *Protocol) refNameFor(container *plate.Container) (string, error) {
	name, ok := p.refByID[container.ID()]
	if !ok {
		return "", fmt.Errorf("container %q was not referenced in this protocol", container.Name())
	}
	return name, nil
}

// address renders a well as its wire address "refname/index".
func (p *Protocol) address(w plate.Well) (WellAddress, error) {
	name, err := p.refNameFor(w.Container())
	if err != nil {
		return "", err
	}
	return WellAddress(fmt.Sprintf("%s/%d", name, w.Index())), nil
}

// append adds an instruction and returns its index. Any non-pipette
// instruction breaks pipette group joining.
func (p *Protocol) append(in Instruction) int {
	p.instructions = append(p.instructions, in)
	idx := len(p.instructions) - 1
	if _, ok := in.(*Pipette); !ok {
		p.lastPipetteValid = false
	}
	return idx
}
