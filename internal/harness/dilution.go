package harness

import (
	"fmt"

	"benchcore/internal/core"
	"benchcore/pkg/plate"
)

func init() {
	RegisterProtocol("serial_dilution", serialDilution)
}

// serialDilution lays diluent down a row of the plate, seeds the first well
// from the sample tube, and carries the dilution across the row. Manifest
// refs: "sample" (a tube) and "plate". Parameters: "diluent" (resource id),
// "diluent_volume", "transfer_volume", "steps".
func serialDilution(r *Run) error {
	sample, err := r.Container("sample")
	if err != nil {
		return err
	}
	dish, err := r.Container("plate")
	if err != nil {
		return err
	}
	diluent, err := r.Param("diluent")
	if err != nil {
		return err
	}
	diluentVol, err := r.Quantity("diluent_volume")
	if err != nil {
		return err
	}
	transferVol, err := r.Quantity("transfer_volume")
	if err != nil {
		return err
	}
	steps, err := r.Int("steps")
	if err != nil {
		return err
	}
	if steps < 2 {
		return fmt.Errorf("serial dilution needs at least 2 steps, got %d", steps)
	}

	row, err := dish.WellsFrom("A1", steps, false)
	if err != nil {
		return err
	}
	seed, err := sample.Tube()
	if err != nil {
		return err
	}

	p := r.Protocol
	if err := p.ProvisionWells(diluent, row, diluentVol); err != nil {
		return err
	}

	mix := &core.MixDetail{Volume: transferVol, Repetitions: 10}
	if err := p.Transfer(plate.Group(seed), plate.Group(row.At(0)), transferVol, core.TransferOptions{MixAfter: mix}); err != nil {
		return err
	}
	for i := 1; i < steps; i++ {
		err := p.Transfer(plate.Group(row.At(i-1)), plate.Group(row.At(i)), transferVol, core.TransferOptions{MixAfter: mix})
		if err != nil {
			return err
		}
	}
	row.At(steps - 1).SetName("final_dilution")
	return nil
}
