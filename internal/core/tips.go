package core

import (
	"github.com/shopspring/decimal"

	"benchcore/pkg/measure"
)

// TipClass identifies the pipette tip family used for a group of legs.
// Groups are only joined into an existing pipette instruction when they
// share a class.
type TipClass string

const (
	Tip50  TipClass = "pipette-50"
	Tip300 TipClass = "pipette-300"
	Tip900 TipClass = "pipette-900"
)

var tipCapacities = []struct {
	class TipClass
	max   measure.Quantity
}{
	{Tip50, measure.MustParse("50:microliter")},
	{Tip300, measure.MustParse("300:microliter")},
	{Tip900, measure.MustParse("900:microliter")},
}

// maxLegVolume is the largest volume a single leg may move. Requests above
// it are split across multiple legs of the largest tip class.
var maxLegVolume = measure.MustParse("900:microliter")

// maxRequestVolume bounds the total liquid a single planning call may move
// per destination. It is an authoring sanity limit, not a hardware one.
var maxRequestVolume = measure.MustParse("10:milliliter")

// tipClassFor picks the smallest class whose capacity covers vol. Volumes
// above the largest class are carried by that class after splitting.
func tipClassFor(vol measure.Quantity) TipClass {
	for _, tc := range tipCapacities {
		if ok, err := vol.LessEq(tc.max); err == nil && ok {
			return tc.class
		}
	}
	return Tip900
}

// tipCapacity returns the capacity of a tip class.
func tipCapacity(class TipClass) measure.Quantity {
	for _, tc := range tipCapacities {
		if tc.class == class {
			return tc.max
		}
	}
	return maxLegVolume
}

// splitVolume divides vol into the fewest legs that each fit within
// maxLegVolume. Legs are equal-sized so that their sum reproduces vol
// exactly; the remainder from an uneven division lands on the first leg.
func splitVolume(vol measure.Quantity) ([]measure.Quantity, error) {
	if ok, err := vol.LessEq(maxLegVolume); err != nil {
		return nil, err
	} else if ok {
		return []measure.Quantity{vol}, nil
	}
	legs := 1
	for {
		limit := maxLegVolume.Scale(decimal.NewFromInt(int64(legs)))
		if ok, _ := vol.LessEq(limit); ok {
			break
		}
		legs++
	}
	// Equal shares rounded down to the same unit; the remainder of the
	// division lands on the first leg so the legs sum to vol exactly.
	share := vol.Magnitude().DivRound(decimal.NewFromInt(int64(legs)), 9)
	per, err := measure.New(share, vol.Unit())
	if err != nil {
		return nil, err
	}
	out := make([]measure.Quantity, legs)
	rest := per.Scale(decimal.NewFromInt(int64(legs - 1)))
	first, err := vol.Sub(rest)
	if err != nil {
		return nil, err
	}
	out[0] = first
	for i := 1; i < legs; i++ {
		out[i] = per
	}
	return out, nil
}
