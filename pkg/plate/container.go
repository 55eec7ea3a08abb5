package plate

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"benchcore/pkg/measure"
)

// SealKinds lists the recognized adhesive seal kinds.
var SealKinds = []string{"ultra-clear", "foil", "breathable"}

// LidKinds lists the recognized removable lid kinds.
var LidKinds = []string{"standard", "universal", "low_evaporation"}

// Destiny records what happens to a container once the protocol run ends:
// stored under a named condition, or discarded.
type Destiny struct {
	where   string
	discard bool
}

// Store destines a container for storage under the given condition
// (for example "cold_4" or "ambient").
func Store(condition string) Destiny { return Destiny{where: condition} }

// Discard destines a container for disposal.
func Discard() Destiny { return Destiny{discard: true} }

// StorageCondition returns the storage condition and whether one is set.
func (d Destiny) StorageCondition() (string, bool) { return d.where, d.where != "" }

// Discarded reports whether the container is to be discarded.
func (d Destiny) Discarded() bool { return d.discard }

// Valid reports whether either a storage condition or discard was chosen.
func (d Destiny) Valid() bool { return d.discard != (d.where != "") }

// wellState is the container-owned mutable state of one well. Well handles
// reference it by index; nothing outside the container holds it directly.
type wellState struct {
	volume     *measure.Quantity
	name       string
	properties map[string]any
}

// Container is a reference to a specific physical container. It owns the
// state of its wells exclusively; Well values are handles into that state.
type Container struct {
	id         string
	externalID string
	name       string
	ctype      ContainerType
	destiny    Destiny
	cover      CoverState
	wells      []wellState
	properties map[string]any
}

// NewContainer builds a container of the given type. externalID may be empty
// for containers that do not yet exist in an inventory; a stable internal
// identity is generated either way.
func NewContainer(name, externalID string, ctype ContainerType, destiny Destiny) (*Container, error) {
	if !destiny.Valid() {
		return nil, fmt.Errorf("container %q needs either a storage condition or discard", name)
	}
	return &Container{
		id:         uuid.NewString(),
		externalID: externalID,
		name:       name,
		ctype:      ctype,
		destiny:    destiny,
		cover:      Uncovered(),
		wells:      make([]wellState, ctype.WellCount),
		properties: map[string]any{},
	}, nil
}

// ID returns the container's stable internal identity.
func (c *Container) ID() string { return c.id }

// ExternalID returns the inventory identifier, empty for new containers.
func (c *Container) ExternalID() string { return c.externalID }

// Name returns the caller-facing ref name.
func (c *Container) Name() string { return c.name }

// Type returns the read-only type descriptor.
func (c *Container) Type() ContainerType { return c.ctype }

// Destiny returns the container's post-run destiny.
func (c *Container) Destiny() Destiny { return c.destiny }

// Well resolves a human-readable or numeric well reference.
func (c *Container) Well(ref string) (Well, error) {
	idx, err := c.ctype.Robotize(ref)
	if err != nil {
		return Well{}, err
	}
	return Well{container: c, index: idx}, nil
}

// WellAt resolves an integer well index.
func (c *Container) WellAt(idx int) (Well, error) {
	idx, err := c.ctype.RobotizeIndex(idx)
	if err != nil {
		return Well{}, err
	}
	return Well{container: c, index: idx}, nil
}

// WellFromCoordinates resolves a 0-indexed (row, column) pair.
func (c *Container) WellFromCoordinates(row, column int) (Well, error) {
	idx, err := c.ctype.WellFromCoordinates(row, column)
	if err != nil {
		return Well{}, err
	}
	return Well{container: c, index: idx}, nil
}

// Tube returns the zeroth well of a tube container.
func (c *Container) Tube() (Well, error) {
	if !c.ctype.IsTube {
		return Well{}, fmt.Errorf("container %q is a %s, not a tube", c.name, c.ctype.Shortname)
	}
	return Well{container: c, index: 0}, nil
}

// AllWells returns every well in row-major order, or column-major when
// columnwise is set.
func (c *Container) AllWells(columnwise bool) *WellGroup {
	group := NewWellGroup()
	if columnwise {
		rows := c.ctype.RowCount()
		for col := 0; col < c.ctype.ColCount; col++ {
			for row := 0; row < rows; row++ {
				group.Append(Well{container: c, index: row*c.ctype.ColCount + col})
			}
		}
		return group
	}
	for idx := range c.wells {
		group.Append(Well{container: c, index: idx})
	}
	return group
}

// WellsFrom returns count contiguous wells starting at the given reference in
// container-native ordering (or columnwise when set). The range must fit the
// container.
func (c *Container) WellsFrom(start string, count int, columnwise bool) (*WellGroup, error) {
	idx, err := c.ctype.Robotize(start)
	if err != nil {
		return nil, err
	}
	if columnwise {
		row, col, err := c.ctype.Decompose(idx)
		if err != nil {
			return nil, err
		}
		idx = col*c.ctype.RowCount() + row
	}
	if count < 0 || idx+count > c.ctype.WellCount {
		return nil, AddressError{
			Type:   c.ctype.Shortname,
			Ref:    fmt.Sprintf("%s+%d", start, count),
			Reason: "range exceeds well count",
		}
	}
	all := c.AllWells(columnwise)
	group := NewWellGroup(all.wells[idx : idx+count]...)
	return group, nil
}

// SetVolume sets the tracked volume of a well owned by this container.
func (c *Container) SetVolume(w Well, volume measure.Quantity) error {
	if err := c.owns(w); err != nil {
		return err
	}
	if err := c.checkVolume(w, volume); err != nil {
		return err
	}
	c.wells[w.index].volume = &volume
	return nil
}

// AddProperties merges properties into a well owned by this container.
func (c *Container) AddProperties(w Well, properties map[string]any) error {
	if err := c.owns(w); err != nil {
		return err
	}
	if err := validateProperties(properties); err != nil {
		return err
	}
	mergeProperties(&c.wells[w.index], properties)
	return nil
}

// SetContainerProperties replaces the container-level property mapping.
func (c *Container) SetContainerProperties(properties map[string]any) error {
	if err := validateProperties(properties); err != nil {
		return err
	}
	c.properties = make(map[string]any, len(properties))
	for k, v := range properties {
		c.properties[k] = v
	}
	return nil
}

// Properties returns the container-level property mapping.
func (c *Container) Properties() map[string]any { return c.properties }

func (c *Container) owns(w Well) error {
	if w.container != c {
		owner := "nil"
		if w.container != nil {
			owner = w.container.name
		}
		return OwnershipError{Container: c.name, Owner: owner, Index: w.index}
	}
	return nil
}

// checkVolume validates dimension and capacity for a prospective well volume.
func (c *Container) checkVolume(w Well, volume measure.Quantity) error {
	if volume.Dimension() != measure.Volume {
		return measure.DimensionMismatchError{Op: "set volume", Left: measure.Volume, Right: volume.Dimension()}
	}
	if volume.Negative() {
		return fmt.Errorf("well %s volume cannot be negative, got %s", w.Display(), volume)
	}
	over, err := c.ctype.TrueMaxVolume.Less(volume)
	if err != nil {
		return err
	}
	if over {
		return fmt.Errorf("volume %s exceeds maximum well volume %s for container %q",
			volume, c.ctype.TrueMaxVolume, c.name)
	}
	return nil
}

// validateProperties rejects mappings whose values do not serialize to JSON.
func validateProperties(properties map[string]any) error {
	for key, value := range properties {
		if _, err := json.Marshal(value); err != nil {
			return fmt.Errorf("property %q is not JSON-serializable: %w", key, err)
		}
	}
	return nil
}

// mergeProperties applies the original catalog merge rule: list values append
// to existing list values, anything else overwrites.
func mergeProperties(state *wellState, properties map[string]any) {
	if state.properties == nil {
		state.properties = make(map[string]any, len(properties))
	}
	for key, value := range properties {
		if existing, ok := state.properties[key].([]any); ok {
			if incoming, ok := value.([]any); ok {
				state.properties[key] = append(existing, incoming...)
				continue
			}
		}
		state.properties[key] = value
	}
}

// Well is a handle to a single location within a container. It carries only
// the owning container and an index; all mutable state lives in the
// container's well array. Well values are comparable.
type Well struct {
	container *Container
	index     int
}

// Container returns the owning container.
func (w Well) Container() *Container { return w.container }

// Index returns the robotized index within the container.
func (w Well) Index() int { return w.index }

// Volume returns the tracked volume and whether one is tracked. An untracked
// volume disables quantitative checks for the well but not structural ones.
func (w Well) Volume() (measure.Quantity, bool) {
	state := &w.container.wells[w.index]
	if state.volume == nil {
		return measure.Quantity{}, false
	}
	return *state.volume, true
}

// SetVolume sets the tracked volume of this well.
func (w Well) SetVolume(volume measure.Quantity) error {
	return w.container.SetVolume(w, volume)
}

// Name returns the caller-assigned aliquot name, if any.
func (w Well) Name() string { return w.container.wells[w.index].name }

// SetName names the aliquot for inclusion in a protocol's outs section.
func (w Well) SetName(name string) { w.container.wells[w.index].name = name }

// Properties returns the well's property mapping.
func (w Well) Properties() map[string]any { return w.container.wells[w.index].properties }

// SetProperties replaces the well's property mapping.
func (w Well) SetProperties(properties map[string]any) error {
	if err := validateProperties(properties); err != nil {
		return err
	}
	copied := make(map[string]any, len(properties))
	for k, v := range properties {
		copied[k] = v
	}
	w.container.wells[w.index].properties = copied
	return nil
}

// AddProperties merges properties into the well's mapping.
func (w Well) AddProperties(properties map[string]any) error {
	return w.container.AddProperties(w, properties)
}

// Humanize returns the human-readable address of this well.
func (w Well) Humanize() string {
	label, err := w.container.ctype.Humanize(w.index)
	if err != nil {
		// a Well handle is always constructed with a validated index
		panic(err)
	}
	return label
}

// Display renders the well as "<container>/<index>" for messages.
func (w Well) Display() string {
	return fmt.Sprintf("%s/%d", w.container.name, w.index)
}

// AvailableVolume returns the tracked volume minus the container type's dead
// volume.
func (w Well) AvailableVolume() (measure.Quantity, error) {
	volume, tracked := w.Volume()
	if !tracked {
		return measure.Quantity{}, fmt.Errorf("well %s has no tracked volume", w.Display())
	}
	return volume.Sub(w.container.ctype.DeadVolume)
}
