package typeast

import "sync/atomic"

// This file fixes the Go value representation generators produce and
// validators check membership against. spec.md leaves the host-language
// encoding of values unspecified (its examples are written in Elixir
// term syntax); these are this implementation's concrete choices,
// recorded here and in DESIGN.md rather than split across every builder.

// Atom is the Go representation of an interned symbolic name (AtomType,
// AtomLit). Kept as a distinct named string type so "atom" values never
// get mistaken for free-form Go strings elsewhere in a generated term.
type Atom string

// TupleValue is the Go representation of Tuple/TupleAny values. It is a
// distinct named slice type (rather than reusing []any, which represents
// proper lists) purely so IsTuple/IsList checks in the validator can tell
// the two apart by Go type alone.
type TupleValue []any

// ConsValue is the Go representation of the four ImproperList families.
// Elems holds the proper-list-like H-typed prefix; Tail holds the
// Tail-typed value that terminated the chain. A MaybeProper list that ends
// properly is represented as a plain []any, not as a ConsValue.
type ConsValue struct {
	Elems []any
	Tail  any
}

// Bits is the Go representation of Bitstring/BinaryPattern values, which
// may have a length that is not a multiple of 8 (Go has no native
// bitstring type). Bytes holds ceil(BitLen/8) bytes; any bits in the
// final byte beyond BitLen are always zero.
type Bits struct {
	Bytes  []byte
	BitLen int
}

// RefValue is the Go representation of Ref (an "opaque identity token").
type RefValue struct{ id uint64 }

var refCounter uint64

// NewRef mints a fresh, unique RefValue.
func NewRef() RefValue {
	return RefValue{id: atomic.AddUint64(&refCounter, 1)}
}

// PidValue and PortValue represent the opaque runtime handles the
// generator builder refuses to fabricate (§4.2 Unsupported) but the
// validator builder can still recognise if one reaches it via an Opaque
// argument.
type PidValue struct{ id uint64 }
type PortValue struct{ id uint64 }
