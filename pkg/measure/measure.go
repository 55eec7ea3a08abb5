// Package measure defines dimensioned quantities with exact decimal
// magnitudes, the unit registry they are expressed in, and the arithmetic
// used for volume bookkeeping throughout benchcore.
package measure

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Dimension identifies the physical quantity kind a magnitude is expressed in.
type Dimension string

// Recognized dimensions. Arithmetic between quantities only succeeds when the
// resulting dimension is one of these.
const (
	Volume             Dimension = "volume"
	Mass               Dimension = "mass"
	Time               Dimension = "time"
	Temperature        Dimension = "temperature"
	Frequency          Dimension = "frequency"
	Length             Dimension = "length"
	MassConcentration  Dimension = "mass_concentration"
	MolarConcentration Dimension = "molar_concentration"
	Acceleration       Dimension = "acceleration"
	FlowRate           Dimension = "flow_rate"
	Speed              Dimension = "speed"
)

// unitDef describes a named unit: the dimension it measures and the exact
// decimal factor relating it to the dimension's base unit. Every factor has a
// finite decimal representation so conversions never round.
type unitDef struct {
	symbol    string
	dimension Dimension
	scale     decimal.Decimal
}

func def(symbol string, dim Dimension, scale string) unitDef {
	return unitDef{symbol: symbol, dimension: dim, scale: decimal.RequireFromString(scale)}
}

// registry maps unit symbols to their definitions. Scale-1 units per
// dimension: microliter, milligram, second, celsius, rpm, millimeter, molar,
// meter/second^2, microliter/second, millimeter/second.
var registry = buildRegistry(
	def("liter", Volume, "1000000"),
	def("milliliter", Volume, "1000"),
	def("microliter", Volume, "1"),
	def("nanoliter", Volume, "0.001"),

	def("kilogram", Mass, "1000000"),
	def("gram", Mass, "1000"),
	def("milligram", Mass, "1"),
	def("microgram", Mass, "0.001"),
	def("nanogram", Mass, "0.000001"),

	def("hour", Time, "3600"),
	def("minute", Time, "60"),
	def("second", Time, "1"),
	def("millisecond", Time, "0.001"),

	def("celsius", Temperature, "1"),

	def("hertz", Frequency, "60"),
	def("rpm", Frequency, "1"),

	def("meter", Length, "1000"),
	def("millimeter", Length, "1"),
	def("micrometer", Length, "0.001"),
	def("nanometer", Length, "0.000001"),

	def("gram/liter", MassConcentration, "0.001"),
	def("milligram/milliliter", MassConcentration, "0.001"),
	def("microgram/milliliter", MassConcentration, "0.000001"),
	def("microgram/microliter", MassConcentration, "0.001"),

	def("molar", MolarConcentration, "1"),
	def("millimolar", MolarConcentration, "0.001"),
	def("micromolar", MolarConcentration, "0.000001"),

	def("meter/second^2", Acceleration, "1"),
	def("g", Acceleration, "9.80665"),

	def("microliter/second", FlowRate, "1"),
	def("milliliter/second", FlowRate, "1000"),
	def("liter/second", FlowRate, "1000000"),

	def("meter/second", Speed, "1000"),
	def("millimeter/second", Speed, "1"),
)

// resultUnits names the unit derived products and quotients are expressed in.
// Base magnitudes form a coherent system (microliter, milligram, second,
// millimeter), so a derived raw value only needs rescaling by the result
// unit's own factor.
var resultUnits = map[Dimension]string{
	Volume:             "microliter",
	Mass:               "milligram",
	Time:               "second",
	Temperature:        "celsius",
	Frequency:          "rpm",
	Length:             "millimeter",
	MassConcentration:  "milligram/milliliter",
	MolarConcentration: "molar",
	Acceleration:       "meter/second^2",
	FlowRate:           "microliter/second",
	Speed:              "millimeter/second",
}

// quotients records the recognized symbolic dimension of dividing one
// dimension by another. Anything absent is an unsupported pairing.
var quotients = map[[2]Dimension]Dimension{
	{Volume, Time}: FlowRate,
	{Length, Time}: Speed,
	{Mass, Volume}: MassConcentration,
}

// products is the inverse relation: multiplying a rate by its denominator
// dimension recovers the numerator.
var products = map[[2]Dimension]Dimension{
	{FlowRate, Time}:            Volume,
	{Speed, Time}:               Length,
	{MassConcentration, Volume}: Mass,
}

func buildRegistry(defs ...unitDef) map[string]unitDef {
	m := make(map[string]unitDef, len(defs))
	for _, d := range defs {
		m[d.symbol] = d
	}
	return m
}

// Units returns the symbols of every registered unit, unordered.
func Units() []string {
	out := make([]string, 0, len(registry))
	for symbol := range registry {
		out = append(out, symbol)
	}
	return out
}

// Quantity is an immutable dimensioned value. The zero Quantity has no unit
// and is not usable; construct quantities via Parse, MustParse or New.
type Quantity struct {
	value decimal.Decimal
	unit  unitDef
}

// Parse builds a Quantity from a "<number>:<unit>" literal.
func Parse(literal string) (Quantity, error) {
	sep := strings.IndexByte(literal, ':')
	if sep < 0 {
		return Quantity{}, UnitParseError{Literal: literal, Reason: "missing ':' separator"}
	}
	number, symbol := literal[:sep], literal[sep+1:]
	value, err := decimal.NewFromString(number)
	if err != nil {
		return Quantity{}, UnitParseError{Literal: literal, Reason: "malformed number " + strconv.Quote(number)}
	}
	unit, ok := registry[symbol]
	if !ok {
		return Quantity{}, UnitParseError{Literal: literal, Reason: "unknown unit " + strconv.Quote(symbol)}
	}
	return Quantity{value: value, unit: unit}, nil
}

// MustParse is Parse for literals known valid at authoring time; it panics on
// malformed input.
func MustParse(literal string) Quantity {
	q, err := Parse(literal)
	if err != nil {
		panic(err)
	}
	return q
}

// New builds a Quantity from an exact decimal value and a registered unit
// symbol.
func New(value decimal.Decimal, symbol string) (Quantity, error) {
	unit, ok := registry[symbol]
	if !ok {
		return Quantity{}, UnitParseError{Literal: symbol, Reason: "unknown unit " + strconv.Quote(symbol)}
	}
	return Quantity{value: value, unit: unit}, nil
}

// Magnitude returns the exact decimal magnitude in the quantity's own unit.
func (q Quantity) Magnitude() decimal.Decimal { return q.value }

// Unit returns the unit symbol the magnitude is expressed in.
func (q Quantity) Unit() string { return q.unit.symbol }

// Dimension returns the physical dimension of the quantity.
func (q Quantity) Dimension() Dimension { return q.unit.dimension }

// IsZero reports whether the magnitude is exactly zero.
func (q Quantity) IsZero() bool { return q.value.IsZero() }

// Negative reports whether the magnitude is below zero.
func (q Quantity) Negative() bool { return q.value.IsNegative() }

// String renders the quantity as a parseable "<number>:<unit>" literal.
func (q Quantity) String() string {
	if q.unit.symbol == "" {
		return q.value.String() + ":?"
	}
	return q.value.String() + ":" + q.unit.symbol
}

// baseValue expresses the magnitude in the dimension's base unit.
func (q Quantity) baseValue() decimal.Decimal {
	return q.value.Mul(q.unit.scale)
}

// Convert re-expresses the quantity in another unit of the same dimension.
func (q Quantity) Convert(symbol string) (Quantity, error) {
	target, ok := registry[symbol]
	if !ok {
		return Quantity{}, UnitParseError{Literal: symbol, Reason: "unknown unit " + strconv.Quote(symbol)}
	}
	if target.dimension != q.unit.dimension {
		return Quantity{}, DimensionMismatchError{Op: "convert", Left: q.unit.dimension, Right: target.dimension}
	}
	if target.symbol == q.unit.symbol {
		return q, nil
	}
	return Quantity{value: q.baseValue().Div(target.scale), unit: target}, nil
}

// Add returns q + other expressed in q's unit. Both quantities must share a
// dimension.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	converted, err := q.sameUnit("add", other)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: q.value.Add(converted.value), unit: q.unit}, nil
}

// Sub returns q - other expressed in q's unit.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	converted, err := q.sameUnit("subtract", other)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: q.value.Sub(converted.value), unit: q.unit}, nil
}

// Scale returns the quantity multiplied by a pure number.
func (q Quantity) Scale(factor decimal.Decimal) Quantity {
	return Quantity{value: q.value.Mul(factor), unit: q.unit}
}

// Mul combines two dimensioned quantities. It succeeds only when the product
// dimension is recognized (for example flow rate times time yields volume);
// otherwise it fails with UnsupportedOperationError.
func (q Quantity) Mul(other Quantity) (Quantity, error) {
	dim, ok := products[[2]Dimension{q.unit.dimension, other.unit.dimension}]
	if !ok {
		// product relations are commutative
		dim, ok = products[[2]Dimension{other.unit.dimension, q.unit.dimension}]
	}
	if !ok {
		return Quantity{}, UnsupportedOperationError{Op: "multiply", Left: q.unit.dimension, Right: other.unit.dimension}
	}
	unit := registry[resultUnits[dim]]
	result := q.baseValue().Mul(other.baseValue()).Div(unit.scale)
	return Quantity{value: result, unit: unit}, nil
}

// Div divides one dimensioned quantity by another. It succeeds only when the
// quotient dimension is recognized (volume over time, length over time, mass
// over volume); dividing quantities of the same dimension would yield a bare
// number and fails with UnsupportedOperationError.
func (q Quantity) Div(other Quantity) (Quantity, error) {
	dim, ok := quotients[[2]Dimension{q.unit.dimension, other.unit.dimension}]
	if !ok {
		return Quantity{}, UnsupportedOperationError{Op: "divide", Left: q.unit.dimension, Right: other.unit.dimension}
	}
	if other.value.IsZero() {
		return Quantity{}, UnsupportedOperationError{Op: "divide by zero", Left: q.unit.dimension, Right: other.unit.dimension}
	}
	unit := registry[resultUnits[dim]]
	result := q.baseValue().Div(other.baseValue()).Div(unit.scale)
	return Quantity{value: result, unit: unit}, nil
}

// Cmp compares two quantities of the same dimension, returning -1, 0 or 1.
func (q Quantity) Cmp(other Quantity) (int, error) {
	converted, err := q.sameUnit("compare", other)
	if err != nil {
		return 0, err
	}
	return q.value.Cmp(converted.value), nil
}

// Less reports q < other.
func (q Quantity) Less(other Quantity) (bool, error) {
	c, err := q.Cmp(other)
	return c < 0, err
}

// LessEq reports q <= other.
func (q Quantity) LessEq(other Quantity) (bool, error) {
	c, err := q.Cmp(other)
	return c <= 0, err
}

// Equal reports whether the two quantities represent the same physical value.
// Quantities of different dimensions are unequal rather than erroneous.
func (q Quantity) Equal(other Quantity) bool {
	if q.unit.dimension != other.unit.dimension {
		return false
	}
	return q.baseValue().Cmp(other.baseValue()) == 0
}

func (q Quantity) sameUnit(op string, other Quantity) (Quantity, error) {
	if other.unit.dimension != q.unit.dimension {
		return Quantity{}, DimensionMismatchError{Op: op, Left: q.unit.dimension, Right: other.unit.dimension}
	}
	if other.unit.symbol == q.unit.symbol {
		return other, nil
	}
	return Quantity{value: other.baseValue().Div(q.unit.scale), unit: q.unit}, nil
}

// MarshalJSON encodes the quantity as its string literal.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}

// UnmarshalJSON decodes a quantity from a string literal.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return UnitParseError{Literal: s, Reason: "expected a quoted literal"}
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
