package harness

import (
	"fmt"
	"sort"
	"sync"
)

// ProtocolFunc authors one protocol against the session in the run.
type ProtocolFunc func(*Run) error

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProtocolFunc)
)

// RegisterProtocol makes a protocol function available to manifests under
// the given name. Registering the same name twice panics; registration
// happens at init time and a collision is a programming error.
func RegisterProtocol(name string, fn ProtocolFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" || fn == nil {
		panic("harness: protocol registration needs a name and a function")
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("harness: protocol %q registered twice", name))
	}
	registry[name] = fn
}

// RegisteredProtocols returns the registered protocol names, sorted.
func RegisteredProtocols() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupProtocol(name string) (ProtocolFunc, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("no protocol registered as %q", name)
	}
	return fn, nil
}
