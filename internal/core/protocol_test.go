package core

import (
	"errors"
	"strings"
	"testing"

	"benchcore/pkg/measure"
	"benchcore/pkg/plate"
)

func mustRef(t *testing.T, p *Protocol, name, shortname string, opts RefOptions) *plate.Container {
	t.Helper()
	opts.ContainerType = shortname
	if !opts.Destiny.Valid() {
		opts.Destiny = plate.Discard()
	}
	c, err := p.Ref(name, opts)
	if err != nil {
		t.Fatalf("Ref(%q): %v", name, err)
	}
	return c
}

func mustWell(t *testing.T, c *plate.Container, idx int) plate.Well {
	t.Helper()
	w, err := c.WellAt(idx)
	if err != nil {
		t.Fatalf("WellAt(%d): %v", idx, err)
	}
	return w
}

func fillWell(t *testing.T, w plate.Well, literal string) plate.Well {
	t.Helper()
	if err := w.SetVolume(measure.MustParse(literal)); err != nil {
		t.Fatalf("SetVolume(%s): %v", literal, err)
	}
	return w
}

func wellVolume(t *testing.T, w plate.Well) measure.Quantity {
	t.Helper()
	v, tracked := w.Volume()
	if !tracked {
		t.Fatalf("well %s has no tracked volume", w.Display())
	}
	return v
}

func TestRefCreatesContainer(t *testing.T) {
	p := New()
	c := mustRef(t, p, "plate", "96-deep", RefOptions{Destiny: plate.Store("cold_4")})
	if c.Type().Shortname != "96-deep" {
		t.Fatalf("container type = %q, want 96-deep", c.Type().Shortname)
	}
	if where, ok := c.Destiny().StorageCondition(); !ok || where != "cold_4" {
		t.Fatalf("destiny = %v, want store cold_4", c.Destiny())
	}
	refs := p.Refs()
	if len(refs) != 1 || refs[0].Name != "plate" || refs[0].Container != c {
		t.Fatalf("unexpected refs %+v", refs)
	}
}

func TestRefRejectsDuplicateName(t *testing.T) {
	p := New()
	mustRef(t, p, "plate", "96-deep", RefOptions{})
	if _, err := p.Ref("plate", RefOptions{ContainerType: "96-flat", Destiny: plate.Discard()}); err == nil {
		t.Fatal("expected duplicate ref name to fail")
	}
}

func TestRefRejectsUnknownType(t *testing.T) {
	p := New()
	if _, err := p.Ref("plate", RefOptions{ContainerType: "1536-quantum", Destiny: plate.Discard()}); err == nil {
		t.Fatal("expected unknown container type to fail")
	}
}

func TestRefRequiresDestiny(t *testing.T) {
	p := New()
	if _, err := p.Ref("plate", RefOptions{ContainerType: "96-deep"}); err == nil {
		t.Fatal("expected missing destiny to fail")
	}
}

func TestRefInitialCover(t *testing.T) {
	p := New()
	c := mustRef(t, p, "plate", "96-pcr", RefOptions{Cover: "ultra-clear"})
	if !c.Cover().Sealed() || c.Cover().Label() != "ultra-clear" {
		t.Fatalf("cover state = %v, want sealed(ultra-clear)", c.Cover())
	}
	if _, err := p.Ref("bad", RefOptions{ContainerType: "96-pcr", Destiny: plate.Discard(), Cover: "duct-tape"}); err == nil {
		t.Fatal("expected unknown cover label to fail")
	}
	// 96-pcr cannot wear a lid, only a seal.
	if _, err := p.Ref("lidless", RefOptions{ContainerType: "96-pcr", Destiny: plate.Discard(), Cover: "standard"}); err == nil {
		t.Fatal("expected lid on seal-only type to fail")
	}
}

func TestRefsPreserveCreationOrder(t *testing.T) {
	p := New()
	names := []string{"gamma", "alpha", "beta"}
	for _, name := range names {
		mustRef(t, p, name, "96-deep", RefOptions{})
	}
	refs := p.Refs()
	for i, name := range names {
		if refs[i].Name != name {
			t.Fatalf("refs[%d] = %q, want %q", i, refs[i].Name, name)
		}
	}
}

func TestAddressRequiresRef(t *testing.T) {
	p := New()
	ctype, err := plate.TypeByShortname("96-deep")
	if err != nil {
		t.Fatal(err)
	}
	stray, err := plate.NewContainer("stray", "", ctype, plate.Discard())
	if err != nil {
		t.Fatal(err)
	}
	w := mustWell(t, stray, 0)
	dst := mustWell(t, mustRef(t, p, "plate", "96-deep", RefOptions{}), 0)
	err = p.Transfer(plate.Group(w), plate.Group(dst), measure.MustParse("10:microliter"), TransferOptions{})
	if err == nil || !strings.Contains(err.Error(), "not referenced") {
		t.Fatalf("transfer from unrefed container: err = %v", err)
	}
}

func TestTipClassSelection(t *testing.T) {
	cases := []struct {
		vol  string
		want TipClass
	}{
		{"1:microliter", Tip50},
		{"50:microliter", Tip50},
		{"51:microliter", Tip300},
		{"300:microliter", Tip300},
		{"301:microliter", Tip900},
		{"900:microliter", Tip900},
		{"2:milliliter", Tip900},
	}
	for _, tc := range cases {
		if got := tipClassFor(measure.MustParse(tc.vol)); got != tc.want {
			t.Errorf("tipClassFor(%s) = %s, want %s", tc.vol, got, tc.want)
		}
	}
}

func TestSplitVolume(t *testing.T) {
	cases := []struct {
		vol  string
		legs int
	}{
		{"10:microliter", 1},
		{"900:microliter", 1},
		{"901:microliter", 2},
		{"2250:microliter", 3},
		{"2700:microliter", 3},
	}
	for _, tc := range cases {
		chunks, err := splitVolume(measure.MustParse(tc.vol))
		if err != nil {
			t.Fatalf("splitVolume(%s): %v", tc.vol, err)
		}
		if len(chunks) != tc.legs {
			t.Fatalf("splitVolume(%s) = %d legs, want %d", tc.vol, len(chunks), tc.legs)
		}
		total := measure.MustParse("0:microliter")
		for _, c := range chunks {
			if over, err := maxLegVolume.Less(c); err != nil || over {
				t.Fatalf("splitVolume(%s): chunk %s over the leg bound", tc.vol, c)
			}
			if total, err = total.Add(c); err != nil {
				t.Fatal(err)
			}
		}
		if !total.Equal(measure.MustParse(tc.vol)) {
			t.Fatalf("splitVolume(%s): chunks sum to %s", tc.vol, total)
		}
	}
}

func TestErrorsAreTyped(t *testing.T) {
	p := New()
	c := mustRef(t, p, "plate", "96-deep", RefOptions{})
	src := fillWell(t, mustWell(t, c, 0), "30:microliter")
	dst := mustWell(t, c, 1)

	err := p.Transfer(plate.Group(src), plate.Group(dst), measure.MustParse("50:microliter"), TransferOptions{})
	var insufficient InsufficientVolumeError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientVolumeError", err)
	}
	if insufficient.Well == "" || insufficient.Available.IsZero() {
		t.Fatalf("error lost detail: %+v", insufficient)
	}

	err = p.Transfer(plate.NewWellGroup(src, dst), plate.Group(dst), measure.MustParse("5:microliter"), TransferOptions{})
	var shape ShapeMismatchError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want ShapeMismatchError", err)
	}

	err = p.Transfer(plate.Group(src), plate.Group(dst), measure.MustParse("11:milliliter"), TransferOptions{})
	var capacity CapacityExceededError
	if !errors.As(err, &capacity) {
		t.Fatalf("err = %v, want CapacityExceededError", err)
	}
}
