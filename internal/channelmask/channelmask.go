// Package channelmask implements ChannelMask from §3: a finite set of
// unsigned channel indices with a canonical sorted representation.
package channelmask

import "sort"

// Mask is a sorted, deduplicated set of channel indices. The zero
// value is the empty mask.
type Mask struct {
	indices []uint32
}

// New builds a Mask from a raw index slice, deduplicating and sorting
// it per §4.3.
func New(raw []uint32) Mask {
	if len(raw) == 0 {
		return Mask{}
	}
	dedup := make(map[uint32]struct{}, len(raw))
	for _, v := range raw {
		dedup[v] = struct{}{}
	}
	out := make([]uint32, 0, len(dedup))
	for v := range dedup {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return Mask{indices: out}
}

// Indices returns the mask's members in increasing order. The caller
// must not mutate the returned slice.
func (m Mask) Indices() []uint32 { return m.indices }

// Len returns the number of channels in the mask.
func (m Mask) Len() int { return len(m.indices) }

// Contains reports whether idx is a member of the mask.
func (m Mask) Contains(idx uint32) bool {
	i := sort.Search(len(m.indices), func(i int) bool { return m.indices[i] >= idx })
	return i < len(m.indices) && m.indices[i] == idx
}

// Equal reports set-equality with other, per §3's "equality is
// set-equality" invariant (canonical form makes this a slice compare).
func (m Mask) Equal(other Mask) bool {
	if len(m.indices) != len(other.indices) {
		return false
	}
	for i := range m.indices {
		if m.indices[i] != other.indices[i] {
			return false
		}
	}
	return true
}

// ToSerialized emits the canonical index list for the serialized
// envelope.
func (m Mask) ToSerialized() []uint32 {
	out := make([]uint32, len(m.indices))
	copy(out, m.indices)
	return out
}

// FromSerialized accepts any permutation of a raw index list and
// canonicalizes it, per §4.3's "the inverse accepts any permutation".
func FromSerialized(raw []uint32) Mask {
	return New(raw)
}

// MarshalYAML emits a Mask as a plain index list, so a Mask-typed
// struct field round-trips through YAML like the raw slice it
// replaces.
func (m Mask) MarshalYAML() (interface{}, error) {
	return m.ToSerialized(), nil
}

// UnmarshalYAML reconstructs a Mask from a plain index list,
// canonicalizing it per FromSerialized.
func (m *Mask) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw []uint32
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*m = FromSerialized(raw)
	return nil
}
