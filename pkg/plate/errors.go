package plate

import "fmt"

// AddressError is returned when a well reference is malformed or outside the
// bounds of a container type.
type AddressError struct {
	Type   string
	Ref    string
	Reason string
}

func (e AddressError) Error() string {
	return fmt.Sprintf("bad well address %q for %s: %s", e.Ref, e.Type, e.Reason)
}

// OwnershipError is returned when a container-level mutation is given a well
// belonging to a different container.
type OwnershipError struct {
	Container string
	Owner     string
	Index     int
}

func (e OwnershipError) Error() string {
	return fmt.Sprintf("well %d belongs to container %q, not %q", e.Index, e.Owner, e.Container)
}

// StateError is returned when a cover or seal operation requires a state the
// container's type cannot provide.
type StateError struct {
	Container string
	Op        string
	Reason    string
}

func (e StateError) Error() string {
	return fmt.Sprintf("cannot %s container %q: %s", e.Op, e.Container, e.Reason)
}
