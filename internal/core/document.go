package core

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is the serializable wire form of a finished protocol: the refs
// section, the ordered instruction records, and the outs section naming
// wells of interest.
type Document struct {
	Refs         map[string]RefRecord
	Instructions []Instruction
	Outs         map[string]map[string]OutRecord
}

// RefRecord is one entry of the document's refs section.
type RefRecord struct {
	New     string       `json:"new,omitempty"`
	ID      string       `json:"id,omitempty"`
	Store   *StoreRecord `json:"store,omitempty"`
	Discard bool         `json:"discard,omitempty"`
	Cover   string       `json:"cover,omitempty"`
	Seal    string       `json:"seal,omitempty"`
}

// StoreRecord names the storage condition a container is kept at after the
// run.
type StoreRecord struct {
	Where string `json:"where"`
}

// OutRecord marks a named well in the outs section.
type OutRecord struct {
	Name string `json:"name"`
}

// Document assembles the current protocol state into its wire form.
func (p *Protocol) Document() Document {
	refs := make(map[string]RefRecord, len(p.refOrder))
	outs := make(map[string]map[string]OutRecord)
	for _, ref := range p.Refs() {
		c := ref.Container
		rec := RefRecord{}
		if c.ExternalID() != "" {
			rec.ID = c.ExternalID()
		} else {
			rec.New = c.Type().Shortname
		}
		if where, ok := c.Destiny().StorageCondition(); ok {
			rec.Store = &StoreRecord{Where: where}
		} else {
			rec.Discard = true
		}
		switch {
		case ref.InitialCover.Covered():
			rec.Cover = ref.InitialCover.Label()
		case ref.InitialCover.Sealed():
			rec.Seal = ref.InitialCover.Label()
		}
		refs[ref.Name] = rec

		named := make(map[string]OutRecord)
		for _, w := range c.AllWells(false).Wells() {
			if w.Name() != "" {
				named[strconv.Itoa(w.Index())] = OutRecord{Name: w.Name()}
			}
		}
		if len(named) > 0 {
			outs[ref.Name] = named
		}
	}
	return Document{Refs: refs, Instructions: p.Instructions(), Outs: outs}
}

// MarshalJSON renders the document with the field names the downstream
// executor expects.
func (d Document) MarshalJSON() ([]byte, error) {
	instructions := make([]json.RawMessage, 0, len(d.Instructions))
	for _, in := range d.Instructions {
		raw, err := marshalInstruction(in)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, raw)
	}
	doc := struct {
		Refs         map[string]RefRecord            `json:"refs"`
		Instructions []json.RawMessage               `json:"instructions"`
		Outs         map[string]map[string]OutRecord `json:"outs,omitempty"`
	}{Refs: d.Refs, Instructions: instructions, Outs: d.Outs}
	return json.Marshal(doc)
}

type transferLegRecord struct {
	From      WellAddress      `json:"from"`
	To        WellAddress      `json:"to"`
	Volume    json.RawMessage  `json:"volume"`
	MixBefore *mixDetailRecord `json:"mix_before,omitempty"`
	MixAfter  *mixDetailRecord `json:"mix_after,omitempty"`
}

type mixDetailRecord struct {
	Volume      json.RawMessage `json:"volume"`
	Speed       json.RawMessage `json:"speed,omitempty"`
	Repetitions int             `json:"repetitions,omitempty"`
}

type distributeRecord struct {
	From WellAddress    `json:"from"`
	To   []targetRecord `json:"to"`
}

type consolidateRecord struct {
	To       WellAddress      `json:"to"`
	From     []targetRecord   `json:"from"`
	MixAfter *mixDetailRecord `json:"mix_after,omitempty"`
}

type targetRecord struct {
	Well   WellAddress     `json:"well"`
	Volume json.RawMessage `json:"volume"`
}

type mixLegRecord struct {
	Well        WellAddress     `json:"well"`
	Volume      json.RawMessage `json:"volume"`
	Speed       json.RawMessage `json:"speed,omitempty"`
	Repetitions int             `json:"repetitions"`
}

type groupRecord struct {
	Transfer    []transferLegRecord `json:"transfer,omitempty"`
	Distribute  *distributeRecord   `json:"distribute,omitempty"`
	Consolidate *consolidateRecord  `json:"consolidate,omitempty"`
	Mix         []mixLegRecord      `json:"mix,omitempty"`
}

func marshalInstruction(in Instruction) (json.RawMessage, error) {
	switch v := in.(type) {
	case *Pipette:
		groups := make([]json.RawMessage, 0, len(v.Groups))
		for _, g := range v.Groups {
			raw, err := marshalGroup(g)
			if err != nil {
				return nil, err
			}
			groups = append(groups, raw)
		}
		return json.Marshal(struct {
			Op     string            `json:"op"`
			Groups []json.RawMessage `json:"groups"`
		}{Op: v.Op(), Groups: groups})
	case *Cover:
		return json.Marshal(struct {
			Op     string `json:"op"`
			Object string `json:"object"`
			Lid    string `json:"lid"`
		}{Op: v.Op(), Object: v.Object, Lid: v.Lid})
	case *Uncover:
		return json.Marshal(struct {
			Op     string `json:"op"`
			Object string `json:"object"`
		}{Op: v.Op(), Object: v.Object})
	case *Seal:
		return json.Marshal(struct {
			Op     string `json:"op"`
			Object string `json:"object"`
			Type   string `json:"type"`
		}{Op: v.Op(), Object: v.Object, Type: v.Kind})
	case *Unseal:
		return json.Marshal(struct {
			Op     string `json:"op"`
			Object string `json:"object"`
		}{Op: v.Op(), Object: v.Object})
	case *Provision:
		targets := make([]targetRecord, 0, len(v.To))
		for _, t := range v.To {
			vol, err := json.Marshal(t.Volume)
			if err != nil {
				return nil, err
			}
			targets = append(targets, targetRecord{Well: t.Well, Volume: vol})
		}
		return json.Marshal(struct {
			Op       string         `json:"op"`
			Resource string         `json:"resource_id"`
			To       []targetRecord `json:"to"`
		}{Op: v.Op(), Resource: v.ResourceID, To: targets})
	default:
		return nil, fmt.Errorf("unknown instruction op %q", in.Op())
	}
}

func marshalGroup(g PipetteGroup) (json.RawMessage, error) {
	rec := groupRecord{}
	switch {
	case g.Transfer != nil:
		for _, leg := range g.Transfer {
			vol, err := json.Marshal(leg.Volume)
			if err != nil {
				return nil, err
			}
			lr := transferLegRecord{From: leg.From, To: leg.To, Volume: vol}
			if lr.MixBefore, err = mixRecord(leg.MixBefore); err != nil {
				return nil, err
			}
			if lr.MixAfter, err = mixRecord(leg.MixAfter); err != nil {
				return nil, err
			}
			rec.Transfer = append(rec.Transfer, lr)
		}
	case g.Distribute != nil:
		dr := &distributeRecord{From: g.Distribute.From, To: []targetRecord{}}
		for _, t := range g.Distribute.To {
			vol, err := json.Marshal(t.Volume)
			if err != nil {
				return nil, err
			}
			dr.To = append(dr.To, targetRecord{Well: t.Well, Volume: vol})
		}
		rec.Distribute = dr
	case g.Consolidate != nil:
		cr := &consolidateRecord{To: g.Consolidate.To}
		var err error
		if cr.MixAfter, err = mixRecord(g.Consolidate.MixAfter); err != nil {
			return nil, err
		}
		for _, t := range g.Consolidate.From {
			vol, err := json.Marshal(t.Volume)
			if err != nil {
				return nil, err
			}
			cr.From = append(cr.From, targetRecord{Well: t.Well, Volume: vol})
		}
		rec.Consolidate = cr
	case g.Mix != nil:
		for _, leg := range g.Mix {
			vol, err := json.Marshal(leg.Volume)
			if err != nil {
				return nil, err
			}
			mr := mixLegRecord{Well: leg.Well, Volume: vol, Repetitions: leg.Repetitions}
			if leg.Speed != nil {
				if mr.Speed, err = json.Marshal(*leg.Speed); err != nil {
					return nil, err
				}
			}
			rec.Mix = append(rec.Mix, mr)
		}
	}
	return json.Marshal(rec)
}

func mixRecord(d *MixDetail) (*mixDetailRecord, error) {
	if d == nil {
		return nil, nil
	}
	vol, err := json.Marshal(d.Volume)
	if err != nil {
		return nil, err
	}
	rec := &mixDetailRecord{Volume: vol, Repetitions: d.Repetitions}
	if d.Speed != nil {
		if rec.Speed, err = json.Marshal(*d.Speed); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
