package ir

import "fmt"

// OperationKind classifies an operation by how it touches shared state.
type OperationKind int

const (
	// KindCreating creates fresh state that no other operation contends on.
	KindCreating OperationKind = iota
	// KindMutating updates existing shared state and contends with every
	// other mutating operation on the same resource.
	KindMutating
)

// String returns the lowercase kind name used in documents and scenarios.
func (k OperationKind) String() string {
	switch k {
	case KindCreating:
		return "creating"
	case KindMutating:
		return "mutating"
	default:
		return fmt.Sprintf("OperationKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OperationKind) MarshalText() ([]byte, error) {
	switch k {
	case KindCreating, KindMutating:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown operation kind %d", int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OperationKind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses "creating" or "mutating".
func ParseKind(s string) (OperationKind, error) {
	switch s {
	case "creating":
		return KindCreating, nil
	case "mutating":
		return KindMutating, nil
	default:
		return 0, fmt.Errorf("unknown operation kind %q", s)
	}
}

// Operation is one generated transaction. Operations are immutable value
// records; identity is Seq.
type Operation struct {
	// Seq is the global sequence id, assigned in final shuffled order starting
	// at 0. It doubles as the originator identity of the operation.
	Seq int64 `json:"seq"`

	// Kind selects the operation template.
	Kind OperationKind `json:"kind"`

	// Ref is the kind-specific sub-identifier: the id of the resource a
	// creating operation makes, or the distinct mutation index of a mutating
	// operation. Refs are dense per kind, starting at 0.
	Ref int64 `json:"ref"`
}
