// Package harness runs registered protocol functions from a YAML manifest:
// it creates the declared container refs, hands a session to the protocol,
// and returns the finished document for serialization.
package harness

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"benchcore/internal/core"
	"benchcore/pkg/measure"
	"benchcore/pkg/plate"
)

// Manifest declares one protocol run: which protocol function to invoke,
// the container refs to create for it, and its quantity-valued parameters.
type Manifest struct {
	Protocol   string            `yaml:"protocol"`
	Refs       map[string]RefSpec `yaml:"refs"`
	Parameters map[string]string  `yaml:"parameters"`
}

// RefSpec declares one container ref.
type RefSpec struct {
	// Type is the catalog shortname of the container type.
	Type string `yaml:"type"`
	// ID names existing inventory; empty means a new container.
	ID string `yaml:"id"`
	// Store keeps the container at the named condition after the run.
	// Exactly one of Store and Discard must be set.
	Store   string `yaml:"store"`
	Discard bool   `yaml:"discard"`
	// Cover names the lid or seal the container arrives with.
	Cover string `yaml:"cover"`
}

// ParseManifest decodes a manifest from YAML.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Protocol == "" {
		return Manifest{}, fmt.Errorf("manifest names no protocol")
	}
	return m, nil
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return ParseManifest(f)
}

// Run is the state handed to a protocol function: the live session, the
// containers created from the manifest refs, and the raw parameters.
type Run struct {
	Protocol *core.Protocol
	Refs     map[string]*plate.Container
	Params   map[string]string
}

// Container resolves a manifest ref by name.
func (r *Run) Container(name string) (*plate.Container, error) {
	c, ok := r.Refs[name]
	if !ok {
		return nil, fmt.Errorf("manifest declares no ref %q", name)
	}
	return c, nil
}

// Param returns a raw string parameter.
func (r *Run) Param(name string) (string, error) {
	raw, ok := r.Params[name]
	if !ok {
		return "", fmt.Errorf("manifest declares no parameter %q", name)
	}
	return raw, nil
}

// Int parses an integer-valued parameter.
func (r *Run) Int(name string) (int, error) {
	raw, err := r.Param(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", name, err)
	}
	return n, nil
}

// Quantity parses a quantity-valued parameter.
func (r *Run) Quantity(name string) (measure.Quantity, error) {
	raw, ok := r.Params[name]
	if !ok {
		return measure.Quantity{}, fmt.Errorf("manifest declares no parameter %q", name)
	}
	q, err := measure.Parse(raw)
	if err != nil {
		return measure.Quantity{}, fmt.Errorf("parameter %q: %w", name, err)
	}
	return q, nil
}

// Execute resolves the manifest's protocol from the registry, creates its
// refs, runs it, and returns the assembled document.
func Execute(m Manifest, logger *zap.Logger) (core.Document, error) {
	fn, err := lookupProtocol(m.Protocol)
	if err != nil {
		return core.Document{}, err
	}

	p := core.New()
	run := &Run{Protocol: p, Refs: make(map[string]*plate.Container), Params: m.Parameters}
	names := make([]string, 0, len(m.Refs))
	for name := range m.Refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec := m.Refs[name]
		if spec.Store != "" && spec.Discard {
			return core.Document{}, fmt.Errorf("ref %q: store and discard are mutually exclusive", name)
		}
		destiny := plate.Discard()
		if spec.Store != "" {
			destiny = plate.Store(spec.Store)
		}
		c, err := p.Ref(name, core.RefOptions{
			ID:            spec.ID,
			ContainerType: spec.Type,
			Destiny:       destiny,
			Cover:         spec.Cover,
		})
		if err != nil {
			return core.Document{}, fmt.Errorf("ref %q: %w", name, err)
		}
		run.Refs[name] = c
		logger.Info("created ref",
			zap.String("ref", name),
			zap.String("container_type", spec.Type),
			zap.String("cover", c.Cover().String()),
		)
	}

	if err := fn(run); err != nil {
		return core.Document{}, fmt.Errorf("protocol %q: %w", m.Protocol, err)
	}
	logger.Info("protocol complete",
		zap.String("protocol", m.Protocol),
		zap.Int("instructions", p.InstructionCount()),
	)
	return p.Document(), nil
}
