// Package plate defines the container, well and well-group model used by the
// benchcore planner: static container-type descriptors, well addressing, and
// per-well volume and property bookkeeping.
package plate

import (
	"regexp"
	"strconv"
	"strings"

	"benchcore/pkg/measure"
)

// Capability names an operation class a container type supports.
type Capability string

// Capabilities referenced by the core planner and cover tracker.
const (
	CapPipette  Capability = "pipette"
	CapCover    Capability = "cover"
	CapSeal     Capability = "seal"
	CapStamp    Capability = "stamp"
	CapSpin     Capability = "spin"
	CapIncubate Capability = "incubate"
)

// CoverPreference selects whether a container type is sealed or covered when
// an operation needs it closed and both are possible.
type CoverPreference string

// Cover preferences.
const (
	PreferSeal  CoverPreference = "seal"
	PreferCover CoverPreference = "cover"
)

// ContainerType holds the read-only capabilities and geometry of a particular
// container type. Descriptors are catalog data; the core never mutates them.
type ContainerType struct {
	Name          string
	Shortname     string
	IsTube        bool
	WellCount     int
	ColCount      int
	WellDepth     measure.Quantity
	WellVolume    measure.Quantity
	DeadVolume    measure.Quantity
	SafeMinVolume measure.Quantity
	TrueMaxVolume measure.Quantity
	CoverTypes    []string
	SealTypes     []string
	Capabilities  []Capability
	Prioritize    CoverPreference
}

// RowCount returns the number of rows of this container type.
func (t ContainerType) RowCount() int {
	return t.WellCount / t.ColCount
}

// HasCapability reports whether the type supports the named operation class.
func (t ContainerType) HasCapability(c Capability) bool {
	for _, have := range t.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

var humanRef = regexp.MustCompile(`^([A-Za-z])([A-Za-z]?)(\d+)$`)

const rowAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// WellFromCoordinates returns the robotized index of the well at 0-indexed
// (row, column), origin in the top left corner.
func (t ContainerType) WellFromCoordinates(row, column int) (int, error) {
	if row < 0 || row >= t.RowCount() {
		return 0, AddressError{Type: t.Shortname, Ref: strconv.Itoa(row), Reason: "row outside container bounds"}
	}
	if column < 0 || column >= t.ColCount {
		return 0, AddressError{Type: t.Shortname, Ref: strconv.Itoa(column), Reason: "column outside container bounds"}
	}
	return row*t.ColCount + column, nil
}

// Robotize resolves a human-readable ("A1", "AB12") or numeric ("5") well
// reference to its integer index in container-native row-major ordering.
func (t ContainerType) Robotize(ref string) (int, error) {
	if m := humanRef.FindStringSubmatch(ref); m != nil {
		row := int(m[1][0]|0x20) - 'a'
		if m[2] != "" {
			row = 26*(row+1) + int(m[2][0]|0x20) - 'a'
		}
		col, err := strconv.Atoi(m[3])
		if err != nil || col < 1 {
			return 0, AddressError{Type: t.Shortname, Ref: ref, Reason: "malformed column number"}
		}
		idx, err := t.WellFromCoordinates(row, col-1)
		if err != nil {
			return 0, AddressError{Type: t.Shortname, Ref: ref, Reason: "reference outside container bounds"}
		}
		return idx, nil
	}
	idx, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return 0, AddressError{Type: t.Shortname, Ref: ref, Reason: "reference must be 'A1' form or an integer"}
	}
	return t.RobotizeIndex(idx)
}

// RobotizeIndex validates an integer well index against the container bounds.
func (t ContainerType) RobotizeIndex(idx int) (int, error) {
	if idx < 0 || idx >= t.WellCount {
		return 0, AddressError{Type: t.Shortname, Ref: strconv.Itoa(idx), Reason: "index exceeds container dimensions"}
	}
	return idx, nil
}

// Humanize returns the row-letter+column form of an integer well index. The
// mapping round-trips exactly with Robotize for every valid address.
func (t ContainerType) Humanize(idx int) (string, error) {
	if _, err := t.RobotizeIndex(idx); err != nil {
		return "", err
	}
	row, col := idx/t.ColCount, idx%t.ColCount
	if row >= len(rowAlphabet) {
		return string(rowAlphabet[row/26-1]) + string(rowAlphabet[row%26]) + strconv.Itoa(col+1), nil
	}
	return string(rowAlphabet[row]) + strconv.Itoa(col+1), nil
}

// Decompose returns the 0-indexed (row, column) of an integer well index.
func (t ContainerType) Decompose(idx int) (int, int, error) {
	if _, err := t.RobotizeIndex(idx); err != nil {
		return 0, 0, err
	}
	return idx / t.ColCount, idx % t.ColCount, nil
}
