package core

import "benchcore/pkg/measure"

// WellAddress is the wire form of a well reference: "<refname>/<index>".
type WellAddress string

// Instruction is one record in the ordered sequence a protocol emits. Each
// concrete instruction maps onto one op understood by the downstream
// executor.
type Instruction interface {
	// Op returns the operation tag used in the serialized document.
	Op() string
}

// Pipette batches liquid-handling groups that share tip compatibility.
type Pipette struct {
	Groups []PipetteGroup
}

// Op implements Instruction.
func (*Pipette) Op() string { return "pipette" }

// PipetteGroup is a tagged variant: exactly one of the fields is set,
// selecting the group mode.
type PipetteGroup struct {
	Transfer    []TransferLeg
	Distribute  *DistributeGroup
	Consolidate *ConsolidateGroup
	Mix         []MixLeg
}

// TransferLeg is one atomic source-to-destination move.
type TransferLeg struct {
	From      WellAddress
	To        WellAddress
	Volume    measure.Quantity
	MixBefore *MixDetail
	MixAfter  *MixDetail
}

// DistributeGroup fans a single aspiration out over destination wells.
type DistributeGroup struct {
	From WellAddress
	To   []DistributeTarget
}

// DistributeTarget is one destination of a distribute group.
type DistributeTarget struct {
	Well   WellAddress
	Volume measure.Quantity
}

// ConsolidateGroup drains several source wells into one destination.
type ConsolidateGroup struct {
	To       WellAddress
	From     []ConsolidateSource
	MixAfter *MixDetail
}

// ConsolidateSource is one aspiration of a consolidate group.
type ConsolidateSource struct {
	Well   WellAddress
	Volume measure.Quantity
}

// MixLeg mixes a well in place by repeated aspiration.
type MixLeg struct {
	Well        WellAddress
	Volume      measure.Quantity
	Speed       *measure.Quantity
	Repetitions int
}

// MixDetail configures an auxiliary mix attached to a transfer leg.
type MixDetail struct {
	Volume      measure.Quantity
	Speed       *measure.Quantity
	Repetitions int
}

// Cover places a removable lid on a container.
type Cover struct {
	Object string
	Lid    string
}

// Op implements Instruction.
func (*Cover) Op() string { return "cover" }

// Uncover removes a container's lid.
type Uncover struct {
	Object string
}

// Op implements Instruction.
func (*Uncover) Op() string { return "uncover" }

// Seal applies an adhesive seal to a container.
type Seal struct {
	Object string
	Kind   string
}

// Op implements Instruction.
func (*Seal) Op() string { return "seal" }

// Unseal removes a container's adhesive seal.
type Unseal struct {
	Object string
}

// Op implements Instruction.
func (*Unseal) Op() string { return "unseal" }

// Provision dispenses a named resource into destination wells.
type Provision struct {
	ResourceID string
	To         []ProvisionTarget
}

// Op implements Instruction.
func (*Provision) Op() string { return "provision" }

// ProvisionTarget is one destination of a provision instruction.
type ProvisionTarget struct {
	Well   WellAddress
	Volume measure.Quantity
}
