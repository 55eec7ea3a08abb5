package plate

import (
	"fmt"
	"sort"

	"benchcore/pkg/measure"
)

// catalog holds the built-in container-type descriptors keyed by shortname.
// Geometry and volume figures follow the vendor plate data the original
// catalog was built from.
var catalog = buildCatalog(
	ContainerType{
		Name:          "96-well PCR plate",
		Shortname:     "96-pcr",
		WellCount:     96,
		ColCount:      12,
		WellDepth:     measure.MustParse("14.6:millimeter"),
		WellVolume:    measure.MustParse("160:microliter"),
		DeadVolume:    measure.MustParse("3:microliter"),
		SafeMinVolume: measure.MustParse("5:microliter"),
		TrueMaxVolume: measure.MustParse("200:microliter"),
		CoverTypes:    nil,
		SealTypes:     []string{"ultra-clear", "foil"},
		Capabilities:  []Capability{CapPipette, CapSeal, CapStamp, CapSpin, CapIncubate},
		Prioritize:    PreferSeal,
	},
	ContainerType{
		Name:          "96-well flat-bottom plate",
		Shortname:     "96-flat",
		WellCount:     96,
		ColCount:      12,
		WellDepth:     measure.MustParse("10.67:millimeter"),
		WellVolume:    measure.MustParse("340:microliter"),
		DeadVolume:    measure.MustParse("25:microliter"),
		SafeMinVolume: measure.MustParse("65:microliter"),
		TrueMaxVolume: measure.MustParse("400:microliter"),
		CoverTypes:    []string{"standard", "universal", "low_evaporation"},
		SealTypes:     nil,
		Capabilities:  []Capability{CapPipette, CapCover, CapStamp, CapSpin, CapIncubate},
		Prioritize:    PreferCover,
	},
	ContainerType{
		Name:          "96-well deep-well plate",
		Shortname:     "96-deep",
		WellCount:     96,
		ColCount:      12,
		WellDepth:     measure.MustParse("41.3:millimeter"),
		WellVolume:    measure.MustParse("2000:microliter"),
		DeadVolume:    measure.MustParse("5:microliter"),
		SafeMinVolume: measure.MustParse("30:microliter"),
		TrueMaxVolume: measure.MustParse("2200:microliter"),
		CoverTypes:    []string{"standard", "universal"},
		SealTypes:     []string{"breathable"},
		Capabilities:  []Capability{CapPipette, CapCover, CapSeal, CapStamp, CapIncubate},
		Prioritize:    PreferCover,
	},
	ContainerType{
		Name:          "384-well PCR plate",
		Shortname:     "384-pcr",
		WellCount:     384,
		ColCount:      24,
		WellDepth:     measure.MustParse("9.6:millimeter"),
		WellVolume:    measure.MustParse("40:microliter"),
		DeadVolume:    measure.MustParse("2:microliter"),
		SafeMinVolume: measure.MustParse("3:microliter"),
		TrueMaxVolume: measure.MustParse("50:microliter"),
		CoverTypes:    nil,
		SealTypes:     []string{"ultra-clear", "foil"},
		Capabilities:  []Capability{CapPipette, CapSeal, CapStamp, CapSpin, CapIncubate},
		Prioritize:    PreferSeal,
	},
	ContainerType{
		Name:          "384-well flat-bottom plate",
		Shortname:     "384-flat",
		WellCount:     384,
		ColCount:      24,
		WellDepth:     measure.MustParse("11.43:millimeter"),
		WellVolume:    measure.MustParse("90:microliter"),
		DeadVolume:    measure.MustParse("7:microliter"),
		SafeMinVolume: measure.MustParse("15:microliter"),
		TrueMaxVolume: measure.MustParse("112:microliter"),
		CoverTypes:    []string{"standard", "universal"},
		SealTypes:     []string{"ultra-clear"},
		Capabilities:  []Capability{CapPipette, CapCover, CapSeal, CapStamp, CapSpin, CapIncubate},
		Prioritize:    PreferSeal,
	},
	ContainerType{
		Name:          "384-well echo-compatible plate",
		Shortname:     "384-echo",
		WellCount:     384,
		ColCount:      24,
		WellDepth:     measure.MustParse("11.5:millimeter"),
		WellVolume:    measure.MustParse("65:microliter"),
		DeadVolume:    measure.MustParse("15:microliter"),
		SafeMinVolume: measure.MustParse("15:microliter"),
		TrueMaxVolume: measure.MustParse("135:microliter"),
		CoverTypes:    []string{"universal"},
		SealTypes:     []string{"foil", "ultra-clear"},
		Capabilities:  []Capability{CapPipette, CapCover, CapSeal, CapStamp, CapIncubate},
		Prioritize:    PreferSeal,
	},
	ContainerType{
		Name:          "6-well cell culture plate",
		Shortname:     "6-flat",
		WellCount:     6,
		ColCount:      3,
		WellDepth:     measure.MustParse("16.5:millimeter"),
		WellVolume:    measure.MustParse("5000:microliter"),
		DeadVolume:    measure.MustParse("400:microliter"),
		SafeMinVolume: measure.MustParse("600:microliter"),
		TrueMaxVolume: measure.MustParse("5000:microliter"),
		CoverTypes:    []string{"standard", "universal"},
		SealTypes:     nil,
		Capabilities:  []Capability{CapPipette, CapCover, CapIncubate},
		Prioritize:    PreferCover,
	},
	ContainerType{
		Name:          "1.5 mL microcentrifuge tube",
		Shortname:     "micro-1.5",
		IsTube:        true,
		WellCount:     1,
		ColCount:      1,
		WellDepth:     measure.MustParse("37.8:millimeter"),
		WellVolume:    measure.MustParse("1500:microliter"),
		DeadVolume:    measure.MustParse("20:microliter"),
		SafeMinVolume: measure.MustParse("20:microliter"),
		TrueMaxVolume: measure.MustParse("1600:microliter"),
		CoverTypes:    nil,
		SealTypes:     nil,
		Capabilities:  []Capability{CapPipette, CapSpin, CapIncubate},
		Prioritize:    PreferSeal,
	},
	ContainerType{
		Name:          "2 mL microcentrifuge tube",
		Shortname:     "micro-2.0",
		IsTube:        true,
		WellCount:     1,
		ColCount:      1,
		WellDepth:     measure.MustParse("38:millimeter"),
		WellVolume:    measure.MustParse("2000:microliter"),
		DeadVolume:    measure.MustParse("5:microliter"),
		SafeMinVolume: measure.MustParse("40:microliter"),
		TrueMaxVolume: measure.MustParse("2100:microliter"),
		CoverTypes:    nil,
		SealTypes:     nil,
		Capabilities:  []Capability{CapPipette, CapSpin, CapIncubate},
		Prioritize:    PreferSeal,
	},
)

func buildCatalog(types ...ContainerType) map[string]ContainerType {
	m := make(map[string]ContainerType, len(types))
	for _, t := range types {
		m[t.Shortname] = t
	}
	return m
}

// TypeByShortname looks up a catalog descriptor.
func TypeByShortname(shortname string) (ContainerType, error) {
	t, ok := catalog[shortname]
	if !ok {
		return ContainerType{}, fmt.Errorf("unknown container type %q", shortname)
	}
	return t, nil
}

// Types returns all catalog descriptors ordered by shortname.
func Types() []ContainerType {
	out := make([]ContainerType, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shortname < out[j].Shortname })
	return out
}
