package core

import (
	"fmt"

	"benchcore/pkg/measure"
	"benchcore/pkg/plate"
)

// ProvisionWells dispenses a named stock resource into every destination
// well. Unlike transfers, a zero volume is rejected outright: a provision
// with nothing to dispense is a caller mistake rather than a degenerate
// plan. Destinations are credited and cover-gated like any liquid-handling
// operation.
func (p *Protocol) ProvisionWells(resourceID string, dst *plate.WellGroup, vol measure.Quantity) error {
	return p.provision(resourceID, dst, broadcast(vol, dst.Len()))
}

// ProvisionEach is ProvisionWells with one volume per destination well.
func (p *Protocol) ProvisionEach(resourceID string, dst *plate.WellGroup, vols []measure.Quantity) error {
	if len(vols) != dst.Len() {
		return ShapeMismatchError{
			Op:     "provision",
			Reason: fmt.Sprintf("%d volumes for %d destination wells", len(vols), dst.Len()),
		}
	}
	return p.provision(resourceID, dst, vols)
}

func (p *Protocol) provision(resourceID string, dst *plate.WellGroup, vols []measure.Quantity) error {
	if resourceID == "" {
		return fmt.Errorf("provision: resource id cannot be empty")
	}
	if dst.Len() == 0 {
		return ShapeMismatchError{Op: "provision", Reason: "destination cannot be empty"}
	}
	for _, v := range vols {
		if err := checkRequestVolume("provision", v); err != nil {
			return err
		}
		if v.IsZero() {
			return fmt.Errorf("provision: volume cannot be zero")
		}
	}

	stage := newVolumeStage()
	gate := newCoverGate(p)
	var targets []ProvisionTarget
	for i := 0; i < dst.Len(); i++ {
		to := dst.At(i)
		gate.touch(to)
		addr, err := p.address(to)
		if err != nil {
			return err
		}
		chunks, err := splitVolume(vols[i])
		if err != nil {
			return err
		}
		for _, cv := range chunks {
			if err := stage.credit("provision", to, cv); err != nil {
				return err
			}
			targets = append(targets, ProvisionTarget{Well: addr, Volume: cv})
		}
	}

	gate.emit()
	if err := stage.commit(); err != nil {
		return err
	}
	p.append(&Provision{ResourceID: resourceID, To: targets})
	return nil
}
