package roehn

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Ref is an optional reference to another node of the same document.
// The zero Ref is unset and serialises as the all-zero GUID.
type Ref struct {
	id uuid.UUID
}

// RefTo returns a reference to the node with the given GUID.
// RefTo(uuid.Nil) is the unset reference.
func RefTo(id uuid.UUID) Ref {
	return Ref{id: id}
}

// IsSet reports whether the reference points at a node.
func (r Ref) IsSet() bool {
	return r.id != uuid.Nil
}

// GUID returns the referenced GUID, or uuid.Nil when unset.
func (r Ref) GUID() uuid.UUID {
	return r.id
}

func (r Ref) String() string {
	return r.id.String()
}

// MarshalJSON implements json.Marshaler.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.id.String())
}

// UnmarshalJSON implements json.Unmarshaler. JSON null and the empty
// string decode to the unset reference.
func (r *Ref) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if s == "" {
		*r = Ref{}
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("reference %q: %w", s, err)
	}
	*r = Ref{id: id}
	return nil
}

// refs builds a slot array of the given length with every entry unset.
func refs(n int) []Ref {
	return make([]Ref, n)
}
