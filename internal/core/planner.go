package core

import (
	"fmt"

	"benchcore/pkg/measure"
	"benchcore/pkg/plate"
)

// TransferOptions tunes a transfer request.
type TransferOptions struct {
	// OneTip forces every leg of the request onto a single tip; the total
	// moved volume must then fit the tip class capacity.
	OneTip bool
	// OneSource fills destinations by greedily draining the source wells in
	// group order instead of pairing them positionally.
	OneSource bool
	// MixBefore and MixAfter attach an auxiliary mix to every emitted leg.
	MixBefore *MixDetail
	MixAfter  *MixDetail
	// NewGroup forces a fresh pipette instruction instead of joining the
	// trailing one.
	NewGroup bool
}

// DistributeOptions tunes a distribute request.
type DistributeOptions struct {
	// AllowCarryover lets one aspiration feed several destinations, packing
	// them into a shared distribute group up to the tip capacity.
	AllowCarryover bool
	NewGroup       bool
}

// ConsolidateOptions tunes a consolidate request.
type ConsolidateOptions struct {
	MixAfter *MixDetail
	NewGroup bool
}

// MixOptions tunes an in-place mix request.
type MixOptions struct {
	Volume measure.Quantity
	Speed  *measure.Quantity
	// Repetitions defaults to 10 when zero.
	Repetitions int
	NewGroup    bool
}

// resolvedLeg is one capacity-bounded move with live well handles, before
// rendering into wire addresses.
type resolvedLeg struct {
	from plate.Well
	to   plate.Well
	vol  measure.Quantity
}

// stagedVolume is a well's volume as the current request sees it.
type stagedVolume struct {
	volume  measure.Quantity
	tracked bool
}

// volumeStage buffers well volume changes so a failing request leaves every
// well untouched. Mutations land on the wells only at commit.
type volumeStage struct {
	pending map[plate.Well]stagedVolume
}

func newVolumeStage() *volumeStage {
	return &volumeStage{pending: make(map[plate.Well]stagedVolume)}
}

func (s *volumeStage) state(w plate.Well) stagedVolume {
	if sv, ok := s.pending[w]; ok {
		return sv
	}
	vol, tracked := w.Volume()
	return stagedVolume{volume: vol, tracked: tracked}
}

// debit subtracts vol from a source well. Untracked sources are assumed
// sufficient and stay untracked.
func (s *volumeStage) debit(w plate.Well, vol measure.Quantity) error {
	sv := s.state(w)
	if !sv.tracked {
		return nil
	}
	next, err := sv.volume.Sub(vol)
	if err != nil {
		return err
	}
	if next.Negative() {
		return InsufficientVolumeError{Well: w.Display(), Requested: vol, Available: sv.volume}
	}
	s.pending[w] = stagedVolume{volume: next, tracked: true}
	return nil
}

// credit adds vol to a destination well. An untracked destination becomes
// tracked at the credited volume.
func (s *volumeStage) credit(op string, w plate.Well, vol measure.Quantity) error {
	sv := s.state(w)
	next := vol
	if sv.tracked {
		sum, err := sv.volume.Add(vol)
		if err != nil {
			return err
		}
		next = sum
	}
	limit := w.Container().Type().TrueMaxVolume
	if over, err := limit.Less(next); err != nil {
		return err
	} else if over {
		return CapacityExceededError{
			Op:     op,
			Limit:  limit,
			Volume: next,
			Reason: fmt.Sprintf("well %s over its maximum volume", w.Display()),
		}
	}
	s.pending[w] = stagedVolume{volume: next, tracked: true}
	return nil
}

func (s *volumeStage) commit() error {
	for w, sv := range s.pending {
		if err := w.SetVolume(sv.volume); err != nil {
			return err
		}
	}
	return nil
}

// coverGate records, in first-touch order, containers whose lid or seal must
// come off before the request's first pipetting leg.
type coverGate struct {
	p     *Protocol
	seen  map[*plate.Container]bool
	order []*plate.Container
}

func newCoverGate(p *Protocol) *coverGate {
	return &coverGate{p: p, seen: make(map[*plate.Container]bool)}
}

func (g *coverGate) touch(w plate.Well) {
	c := w.Container()
	if g.seen[c] {
		return
	}
	g.seen[c] = true
	if !c.Cover().Open() {
		g.order = append(g.order, c)
	}
}

// emit writes the deferred uncover/unseal instructions and clears the
// containers' cover state. Called only after the request has validated.
func (g *coverGate) emit() {
	for _, c := range g.order {
		name, err := g.p.refNameFor(c)
		if err != nil {
			continue
		}
		g.p.openFor(c, name)
	}
}

// checkRequestVolume validates a single requested volume against dimension,
// sign, and the absolute per-destination instrument bound.
func checkRequestVolume(op string, vol measure.Quantity) error {
	over, err := maxRequestVolume.Less(vol)
	if err != nil {
		return err
	}
	if vol.Negative() {
		return fmt.Errorf("%s: negative volume %s", op, vol)
	}
	if over {
		return CapacityExceededError{
			Op:     op,
			Limit:  maxRequestVolume,
			Volume: vol,
			Reason: "single request exceeds absolute instrument bound",
		}
	}
	return nil
}

// broadcast repeats a scalar volume across n targets.
func broadcast(vol measure.Quantity, n int) []measure.Quantity {
	out := make([]measure.Quantity, n)
	for i := range out {
		out[i] = vol
	}
	return out
}

// Transfer moves vol from each source well to the destination well at the
// same position. With OneSource set, destinations are instead filled by
// draining the source wells in order. The request either applies in full or
// leaves every well and the instruction sequence untouched.
func (p *Protocol) Transfer(src, dst *plate.WellGroup, vol measure.Quantity, opts TransferOptions) error {
	return p.transfer(src, dst, broadcast(vol, dst.Len()), opts)
}

// TransferEach is Transfer with one volume per destination well.
func (p *Protocol) TransferEach(src, dst *plate.WellGroup, vols []measure.Quantity, opts TransferOptions) error {
	if len(vols) != dst.Len() {
		return ShapeMismatchError{
			Op:     "transfer",
			Reason: fmt.Sprintf("%d volumes for %d destination wells", len(vols), dst.Len()),
		}
	}
	return p.transfer(src, dst, vols, opts)
}

func (p *Protocol) transfer(src, dst *plate.WellGroup, vols []measure.Quantity, opts TransferOptions) error {
	if src.Len() == 0 || dst.Len() == 0 {
		return ShapeMismatchError{Op: "transfer", Reason: "source and destination cannot be empty"}
	}
	if !opts.OneSource && src.Len() != dst.Len() {
		return ShapeMismatchError{
			Op:     "transfer",
			Reason: fmt.Sprintf("%d source wells for %d destination wells", src.Len(), dst.Len()),
		}
	}
	for _, v := range vols {
		if err := checkRequestVolume("transfer", v); err != nil {
			return err
		}
	}

	stage := newVolumeStage()
	gate := newCoverGate(p)
	var legs []resolvedLeg
	var err error
	if opts.OneSource {
		legs, err = p.drainSources("transfer", stage, gate, src, dst, vols)
	} else {
		legs, err = p.pairwiseLegs(stage, gate, src, dst, vols)
	}
	if err != nil {
		return err
	}
	if len(legs) == 0 {
		return nil
	}

	class := tipClassFor(maxLegOf(legs))
	wireLegs := make([]TransferLeg, 0, len(legs))
	for _, leg := range legs {
		from, err := p.address(leg.from)
		if err != nil {
			return err
		}
		to, err := p.address(leg.to)
		if err != nil {
			return err
		}
		wireLegs = append(wireLegs, TransferLeg{
			From:      from,
			To:        to,
			Volume:    leg.vol,
			MixBefore: opts.MixBefore,
			MixAfter:  opts.MixAfter,
		})
	}

	var groups []PipetteGroup
	if opts.OneTip {
		total, err := totalOf(legs)
		if err != nil {
			return err
		}
		capacity := tipCapacity(class)
		if over, err := capacity.Less(total); err != nil {
			return err
		} else if over {
			return CapacityExceededError{
				Op:     "transfer",
				Limit:  capacity,
				Volume: total,
				Reason: "one_tip total exceeds the tip class capacity",
			}
		}
		groups = []PipetteGroup{{Transfer: wireLegs}}
	} else {
		groups = make([]PipetteGroup, 0, len(wireLegs))
		for i := range wireLegs {
			groups = append(groups, PipetteGroup{Transfer: wireLegs[i : i+1]})
		}
	}

	gate.emit()
	if err := stage.commit(); err != nil {
		return err
	}
	p.emitPipette(groups, class, opts.NewGroup)
	return nil
}

// pairwiseLegs resolves positional source/destination pairs into
// capacity-bounded legs, staging the volume bookkeeping.
func (p *Protocol) pairwiseLegs(stage *volumeStage, gate *coverGate, src, dst *plate.WellGroup, vols []measure.Quantity) ([]resolvedLeg, error) {
	var legs []resolvedLeg
	for i := 0; i < dst.Len(); i++ {
		if vols[i].IsZero() {
			continue
		}
		from, to := src.At(i), dst.At(i)
		gate.touch(from)
		gate.touch(to)
		chunks, err := splitVolume(vols[i])
		if err != nil {
			return nil, err
		}
		for _, cv := range chunks {
			if err := stage.debit(from, cv); err != nil {
				return nil, err
			}
			if err := stage.credit("transfer", to, cv); err != nil {
				return nil, err
			}
			legs = append(legs, resolvedLeg{from: from, to: to, vol: cv})
		}
	}
	return legs, nil
}

// drainSources fills each destination by draining the source wells in group
// order, advancing to the next source when the current one runs dry. An
// untracked source is assumed able to satisfy the full remainder.
func (p *Protocol) drainSources(op string, stage *volumeStage, gate *coverGate, src, dst *plate.WellGroup, vols []measure.Quantity) ([]resolvedLeg, error) {
	var legs []resolvedLeg
	si := 0
	for i := 0; i < dst.Len(); i++ {
		if vols[i].IsZero() {
			continue
		}
		to := dst.At(i)
		remaining := vols[i]
		for !remaining.IsZero() {
			if si >= src.Len() {
				return nil, InsufficientVolumeError{
					Well:      src.At(src.Len() - 1).Display(),
					Requested: remaining,
					Available: measure.MustParse("0:microliter"),
				}
			}
			from := src.At(si)
			sv := stage.state(from)
			take := remaining
			if sv.tracked {
				if short, err := sv.volume.Less(remaining); err != nil {
					return nil, err
				} else if short {
					take = sv.volume
				}
				if take.IsZero() {
					si++
					continue
				}
			}
			gate.touch(from)
			gate.touch(to)
			chunks, err := splitVolume(take)
			if err != nil {
				return nil, err
			}
			for _, cv := range chunks {
				if err := stage.debit(from, cv); err != nil {
					return nil, err
				}
				if err := stage.credit(op, to, cv); err != nil {
					return nil, err
				}
				legs = append(legs, resolvedLeg{from: from, to: to, vol: cv})
			}
			remaining, err = remaining.Sub(take)
			if err != nil {
				return nil, err
			}
		}
	}
	return legs, nil
}

// Distribute fans vol out from a source pool to every destination well.
// A single-well source behaves like the classic one-source distribute; a
// multi-well source drains in group order.
func (p *Protocol) Distribute(src, dst *plate.WellGroup, vol measure.Quantity, opts DistributeOptions) error {
	return p.distribute(src, dst, broadcast(vol, dst.Len()), opts)
}

// DistributeEach is Distribute with one volume per destination well.
func (p *Protocol) DistributeEach(src, dst *plate.WellGroup, vols []measure.Quantity, opts DistributeOptions) error {
	if len(vols) != dst.Len() {
		return ShapeMismatchError{
			Op:     "distribute",
			Reason: fmt.Sprintf("%d volumes for %d destination wells", len(vols), dst.Len()),
		}
	}
	return p.distribute(src, dst, vols, opts)
}

func (p *Protocol) distribute(src, dst *plate.WellGroup, vols []measure.Quantity, opts DistributeOptions) error {
	if src.Len() == 0 || dst.Len() == 0 {
		return ShapeMismatchError{Op: "distribute", Reason: "source and destination cannot be empty"}
	}
	for _, v := range vols {
		if err := checkRequestVolume("distribute", v); err != nil {
			return err
		}
	}

	stage := newVolumeStage()
	gate := newCoverGate(p)
	legs, err := p.drainSources("distribute", stage, gate, src, dst, vols)
	if err != nil {
		return err
	}

	if len(legs) == 0 {
		// A distribute with nothing to move still carries its groups field
		// downstream, as an explicit empty marker.
		from, err := p.address(src.At(0))
		if err != nil {
			return err
		}
		gate.emit()
		p.emitPipette([]PipetteGroup{{Distribute: &DistributeGroup{From: from}}}, Tip50, opts.NewGroup)
		return nil
	}

	class := tipClassFor(maxLegOf(legs))
	capacity := tipCapacity(class)
	var groups []PipetteGroup
	var cur *DistributeGroup
	var curTotal measure.Quantity
	for _, leg := range legs {
		from, err := p.address(leg.from)
		if err != nil {
			return err
		}
		to, err := p.address(leg.to)
		if err != nil {
			return err
		}
		fits := false
		if cur != nil && cur.From == from && opts.AllowCarryover {
			sum, err := curTotal.Add(leg.vol)
			if err != nil {
				return err
			}
			if ok, err := sum.LessEq(capacity); err != nil {
				return err
			} else if ok {
				fits = true
				curTotal = sum
			}
		}
		if !fits {
			cur = &DistributeGroup{From: from}
			curTotal = leg.vol
			groups = append(groups, PipetteGroup{Distribute: cur})
		}
		cur.To = append(cur.To, DistributeTarget{Well: to, Volume: leg.vol})
	}

	gate.emit()
	if err := stage.commit(); err != nil {
		return err
	}
	p.emitPipette(groups, class, opts.NewGroup)
	return nil
}

// Consolidate drains vol from every source well into the single destination.
func (p *Protocol) Consolidate(src *plate.WellGroup, dst plate.Well, vol measure.Quantity, opts ConsolidateOptions) error {
	return p.consolidate(src, dst, broadcast(vol, src.Len()), opts)
}

// ConsolidateEach is Consolidate with one volume per source well.
func (p *Protocol) ConsolidateEach(src *plate.WellGroup, dst plate.Well, vols []measure.Quantity, opts ConsolidateOptions) error {
	if len(vols) != src.Len() {
		return ShapeMismatchError{
			Op:     "consolidate",
			Reason: fmt.Sprintf("%d volumes for %d source wells", len(vols), src.Len()),
		}
	}
	return p.consolidate(src, dst, vols, opts)
}

func (p *Protocol) consolidate(src *plate.WellGroup, dst plate.Well, vols []measure.Quantity, opts ConsolidateOptions) error {
	if src.Len() == 0 {
		return ShapeMismatchError{Op: "consolidate", Reason: "source cannot be empty"}
	}
	for _, v := range vols {
		if err := checkRequestVolume("consolidate", v); err != nil {
			return err
		}
	}

	stage := newVolumeStage()
	gate := newCoverGate(p)
	var legs []resolvedLeg
	for i := 0; i < src.Len(); i++ {
		if vols[i].IsZero() {
			continue
		}
		from := src.At(i)
		gate.touch(from)
		gate.touch(dst)
		chunks, err := splitVolume(vols[i])
		if err != nil {
			return err
		}
		for _, cv := range chunks {
			if err := stage.debit(from, cv); err != nil {
				return err
			}
			if err := stage.credit("consolidate", dst, cv); err != nil {
				return err
			}
			legs = append(legs, resolvedLeg{from: from, to: dst, vol: cv})
		}
	}
	if len(legs) == 0 {
		return nil
	}

	to, err := p.address(dst)
	if err != nil {
		return err
	}
	class := tipClassFor(maxLegOf(legs))
	capacity := tipCapacity(class)
	var groups []PipetteGroup
	var cur *ConsolidateGroup
	var curTotal measure.Quantity
	for _, leg := range legs {
		from, err := p.address(leg.from)
		if err != nil {
			return err
		}
		fits := false
		if cur != nil {
			sum, err := curTotal.Add(leg.vol)
			if err != nil {
				return err
			}
			if ok, err := sum.LessEq(capacity); err != nil {
				return err
			} else if ok {
				fits = true
				curTotal = sum
			}
		}
		if !fits {
			cur = &ConsolidateGroup{To: to, MixAfter: opts.MixAfter}
			curTotal = leg.vol
			groups = append(groups, PipetteGroup{Consolidate: cur})
		}
		cur.From = append(cur.From, ConsolidateSource{Well: from, Volume: leg.vol})
	}

	gate.emit()
	if err := stage.commit(); err != nil {
		return err
	}
	p.emitPipette(groups, class, opts.NewGroup)
	return nil
}

// Mix agitates each well in place by repeated aspiration. Well volumes are
// unchanged; the mix volume must fit both the tip and the well's contents.
func (p *Protocol) Mix(wells *plate.WellGroup, opts MixOptions) error {
	if wells.Len() == 0 {
		return ShapeMismatchError{Op: "mix", Reason: "well selection cannot be empty"}
	}
	if err := checkRequestVolume("mix", opts.Volume); err != nil {
		return err
	}
	if opts.Volume.IsZero() {
		return fmt.Errorf("mix: volume cannot be zero")
	}
	if over, err := maxLegVolume.Less(opts.Volume); err != nil {
		return err
	} else if over {
		return CapacityExceededError{
			Op:     "mix",
			Limit:  maxLegVolume,
			Volume: opts.Volume,
			Reason: "mix volume exceeds the largest tip",
		}
	}
	reps := opts.Repetitions
	if reps == 0 {
		reps = 10
	}

	gate := newCoverGate(p)
	legs := make([]MixLeg, 0, wells.Len())
	for i := 0; i < wells.Len(); i++ {
		w := wells.At(i)
		if vol, tracked := w.Volume(); tracked {
			if short, err := vol.Less(opts.Volume); err != nil {
				return err
			} else if short {
				return InsufficientVolumeError{Well: w.Display(), Requested: opts.Volume, Available: vol}
			}
		}
		gate.touch(w)
		addr, err := p.address(w)
		if err != nil {
			return err
		}
		legs = append(legs, MixLeg{Well: addr, Volume: opts.Volume, Speed: opts.Speed, Repetitions: reps})
	}

	gate.emit()
	p.emitPipette([]PipetteGroup{{Mix: legs}}, tipClassFor(opts.Volume), opts.NewGroup)
	return nil
}

// emitPipette appends pipette groups, joining the trailing pipette
// instruction when nothing broke the run and the tip class matches.
func (p *Protocol) emitPipette(groups []PipetteGroup, class TipClass, newGroup bool) {
	if !newGroup && p.lastPipetteValid && p.lastTipClass == class {
		pip := p.instructions[p.lastPipette].(*Pipette)
		pip.Groups = append(pip.Groups, groups...)
		return
	}
	idx := p.append(&Pipette{Groups: groups})
	p.lastPipette = idx
	p.lastTipClass = class
	p.lastPipetteValid = true
}

// maxLegOf returns the largest leg volume of a request.
func maxLegOf(legs []resolvedLeg) measure.Quantity {
	largest := legs[0].vol
	for _, leg := range legs[1:] {
		if bigger, err := largest.Less(leg.vol); err == nil && bigger {
			largest = leg.vol
		}
	}
	return largest
}

// totalOf sums the leg volumes of a request.
func totalOf(legs []resolvedLeg) (measure.Quantity, error) {
	total := legs[0].vol
	for _, leg := range legs[1:] {
		sum, err := total.Add(leg.vol)
		if err != nil {
			return total, err
		}
		total = sum
	}
	return total, nil
}
