package measure

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		literal string
		value   string
		unit    string
		dim     Dimension
	}{
		{"5:microliter", "5", "microliter", Volume},
		{"0.1:milliliter", "0.1", "milliliter", Volume},
		{"-3:celsius", "-3", "celsius", Temperature},
		{"1000:rpm", "1000", "rpm", Frequency},
		{"2.5:milligram/milliliter", "2.5", "milligram/milliliter", MassConcentration},
		{"30:microliter/second", "30", "microliter/second", FlowRate},
	}
	for _, tc := range cases {
		t.Run(tc.literal, func(t *testing.T) {
			q, err := Parse(tc.literal)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.literal, err)
			}
			if q.Magnitude().String() != tc.value {
				t.Fatalf("magnitude: want %s, got %s", tc.value, q.Magnitude())
			}
			if q.Unit() != tc.unit {
				t.Fatalf("unit: want %s, got %s", tc.unit, q.Unit())
			}
			if q.Dimension() != tc.dim {
				t.Fatalf("dimension: want %s, got %s", tc.dim, q.Dimension())
			}
		})
	}
}

func TestParseRejectsMalformedLiterals(t *testing.T) {
	for _, literal := range []string{
		"5 microliter",
		"microliter",
		"abc:microliter",
		"5:parsec",
		"5:",
		":microliter",
	} {
		t.Run(literal, func(t *testing.T) {
			_, err := Parse(literal)
			var parseErr UnitParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected UnitParseError, got %v", err)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	a := MustParse("12.50:microliter")
	b := MustParse("12.50:microliter")
	if !a.Equal(b) {
		t.Fatalf("parsing the same literal twice produced unequal quantities: %s vs %s", a, b)
	}
}

func TestConvert(t *testing.T) {
	cases := []struct {
		in     string
		target string
		want   string
	}{
		{"1:liter", "microliter", "1000000:microliter"},
		{"2500:microliter", "milliliter", "2.5:milliliter"},
		{"1:minute", "second", "60:second"},
		{"0.25:milliliter", "microliter", "250:microliter"},
		{"1:hertz", "rpm", "60:rpm"},
	}
	for _, tc := range cases {
		t.Run(tc.in+"->"+tc.target, func(t *testing.T) {
			q, err := MustParse(tc.in).Convert(tc.target)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if q.String() != tc.want {
				t.Fatalf("want %s, got %s", tc.want, q)
			}
		})
	}
}

func TestConvertDimensionMismatch(t *testing.T) {
	_, err := MustParse("5:microliter").Convert("second")
	var mismatch DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
}

func TestAddSubSameDimension(t *testing.T) {
	sum, err := MustParse("5:microliter").Add(MustParse("0.005:milliliter"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.String() != "10:microliter" {
		t.Fatalf("want 10:microliter, got %s", sum)
	}
	diff, err := MustParse("1:milliliter").Sub(MustParse("250:microliter"))
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if !diff.Equal(MustParse("750:microliter")) {
		t.Fatalf("want 750:microliter, got %s", diff)
	}
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	_, err := MustParse("5:microliter").Add(MustParse("5:second"))
	var mismatch DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
}

func TestMulRecognizedProduct(t *testing.T) {
	vol, err := MustParse("5:microliter/second").Mul(MustParse("2:minute"))
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if !vol.Equal(MustParse("600:microliter")) {
		t.Fatalf("want 600:microliter, got %s", vol)
	}
	mass, err := MustParse("2:milligram/milliliter").Mul(MustParse("3:milliliter"))
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if !mass.Equal(MustParse("6:milligram")) {
		t.Fatalf("want 6:milligram, got %s", mass)
	}
}

func TestMulUnrecognizedProduct(t *testing.T) {
	_, err := MustParse("10:microliter").Mul(MustParse("2:second"))
	var unsupported UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError, got %v", err)
	}
}

func TestDivRecognizedQuotient(t *testing.T) {
	rate, err := MustParse("30:microliter").Div(MustParse("2:second"))
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	if !rate.Equal(MustParse("15:microliter/second")) {
		t.Fatalf("want 15:microliter/second, got %s", rate)
	}
}

func TestDivUnrecognizedQuotient(t *testing.T) {
	_, err := MustParse("30:second").Div(MustParse("2:microliter"))
	var unsupported UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError, got %v", err)
	}
	// same-dimension division would yield a bare number
	_, err = MustParse("30:microliter").Div(MustParse("2:microliter"))
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOperationError, got %v", err)
	}
}

func TestComparisons(t *testing.T) {
	small := MustParse("5:microliter")
	large := MustParse("0.01:milliliter")
	less, err := small.Less(large)
	if err != nil {
		t.Fatalf("less: %v", err)
	}
	if !less {
		t.Fatalf("expected %s < %s", small, large)
	}
	if _, err := small.Cmp(MustParse("5:second")); err == nil {
		t.Fatalf("expected comparison across dimensions to fail")
	}
}

func TestRepeatedSubtractionIsExact(t *testing.T) {
	// 1000 withdrawals of 0.1 from 100 must land on exactly zero.
	vol := MustParse("100:microliter")
	step := MustParse("0.1:microliter")
	for i := 0; i < 1000; i++ {
		var err error
		vol, err = vol.Sub(step)
		if err != nil {
			t.Fatalf("sub %d: %v", i, err)
		}
	}
	if !vol.IsZero() {
		t.Fatalf("expected exactly 0:microliter after 1000 subtractions, got %s", vol)
	}
}

func TestScale(t *testing.T) {
	q := MustParse("12:microliter").Scale(decimal.RequireFromString("2.5"))
	if q.String() != "30:microliter" {
		t.Fatalf("want 30:microliter, got %s", q)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	q := MustParse("2.5:milliliter")
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2.5:milliliter"` {
		t.Fatalf("unexpected encoding %s", data)
	}
	var back Quantity
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(q) {
		t.Fatalf("round trip mismatch: %s vs %s", back, q)
	}
}
