package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"benchcore/pkg/measure"
	"benchcore/pkg/plate"
)

func TestDocumentRefs(t *testing.T) {
	p := New()
	mustRef(t, p, "fresh", "96-deep", RefOptions{Destiny: plate.Store("cold_4")})
	mustRef(t, p, "inventory", "96-pcr", RefOptions{ID: "ct1abc234def", Cover: "foil"})
	mustRef(t, p, "lidded", "96-flat", RefOptions{Cover: "standard"})

	doc := p.Document()
	want := map[string]RefRecord{
		"fresh":     {New: "96-deep", Store: &StoreRecord{Where: "cold_4"}},
		"inventory": {ID: "ct1abc234def", Discard: true, Seal: "foil"},
		"lidded":    {New: "96-flat", Discard: true, Cover: "standard"},
	}
	if diff := cmp.Diff(want, doc.Refs); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentOuts(t *testing.T) {
	p := New()
	c := mustRef(t, p, "plate", "96-deep", RefOptions{})
	w := mustWell(t, c, 5)
	w.SetName("sample_a")

	doc := p.Document()
	want := map[string]map[string]OutRecord{
		"plate": {"5": {Name: "sample_a"}},
	}
	if diff := cmp.Diff(want, doc.Outs); diff != "" {
		t.Fatalf("outs mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentJSON(t *testing.T) {
	p := New()
	c := mustRef(t, p, "plate", "96-pcr", RefOptions{Destiny: plate.Store("cold_4")})
	src := fillWell(t, mustWell(t, c, 0), "100:microliter")
	dst := mustWell(t, c, 1)
	if err := p.Transfer(plate.Group(src), plate.Group(dst), measure.MustParse("30:microliter"), TransferOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Seal(c, ""); err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(p.Document())
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Refs map[string]struct {
			New   string `json:"new"`
			Store struct {
				Where string `json:"where"`
			} `json:"store"`
		} `json:"refs"`
		Instructions []json.RawMessage `json:"instructions"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	ref, ok := decoded.Refs["plate"]
	if !ok || ref.New != "96-pcr" || ref.Store.Where != "cold_4" {
		t.Fatalf("unexpected refs section: %s", raw)
	}
	if len(decoded.Instructions) != 2 {
		t.Fatalf("instruction count = %d, want pipette then seal", len(decoded.Instructions))
	}

	var pipette struct {
		Op     string `json:"op"`
		Groups []struct {
			Transfer []struct {
				From   string `json:"from"`
				To     string `json:"to"`
				Volume string `json:"volume"`
			} `json:"transfer"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(decoded.Instructions[0], &pipette); err != nil {
		t.Fatal(err)
	}
	if pipette.Op != "pipette" || len(pipette.Groups) != 1 {
		t.Fatalf("unexpected pipette record: %s", decoded.Instructions[0])
	}
	leg := pipette.Groups[0].Transfer[0]
	if leg.From != "plate/0" || leg.To != "plate/1" || leg.Volume != "30:microliter" {
		t.Fatalf("unexpected leg record: %+v", leg)
	}

	var seal struct {
		Op     string `json:"op"`
		Object string `json:"object"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(decoded.Instructions[1], &seal); err != nil {
		t.Fatal(err)
	}
	if seal.Op != "seal" || seal.Object != "plate" || seal.Type != "ultra-clear" {
		t.Fatalf("unexpected seal record: %+v", seal)
	}
}

func TestDocumentEmptyDistributeMarker(t *testing.T) {
	p := New()
	c := mustRef(t, p, "plate", "96-deep", RefOptions{})
	src := fillWell(t, mustWell(t, c, 0), "100:microliter")
	dst := plate.NewWellGroup(mustWell(t, c, 1))
	if err := p.Distribute(plate.Group(src), dst, measure.MustParse("0:microliter"), DistributeOptions{}); err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(p.Document())
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Instructions []struct {
			Groups []struct {
				Distribute struct {
					From string            `json:"from"`
					To   []json.RawMessage `json:"to"`
				} `json:"distribute"`
			} `json:"groups"`
		} `json:"instructions"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Instructions) != 1 || len(decoded.Instructions[0].Groups) != 1 {
		t.Fatalf("unexpected document: %s", raw)
	}
	g := decoded.Instructions[0].Groups[0].Distribute
	if g.From != "plate/0" || g.To == nil || len(g.To) != 0 {
		t.Fatalf("expected an explicit empty distribute group, got %s", raw)
	}
}
