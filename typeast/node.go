// Package typeast implements the canonical algebraic type AST described in
// §3 of the specification: an immutable tagged-variant tree together with
// the normalizer that rewrites it into the form the generator and validator
// builders consume.
package typeast

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Node is a single variant of the type AST. Variants carry no behaviour of
// their own beyond structural identity (Hash) and display (String); the
// interpretation lives in the Normalizer and in the genbuild/validate
// builders, which type-switch over concrete Node implementations.
type Node interface {
	node()
	Hash() uint64
	String() string
}

func hashKind(tag string, parts ...uint64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(tag))
	for _, p := range parts {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(p >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Any is the universal top type.
type Any struct{}

func (Any) node()          {}
func (Any) Hash() uint64   { return hashKind("any") }
func (Any) String() string { return "any()" }

// NoneType is the empty type; it has no inhabitants.
type NoneType struct{}

func (NoneType) node()          {}
func (NoneType) Hash() uint64   { return hashKind("none") }
func (NoneType) String() string { return "none()" }

// AtomType is the type of all interned symbolic names.
type AtomType struct{}

func (AtomType) node()          {}
func (AtomType) Hash() uint64   { return hashKind("atom") }
func (AtomType) String() string { return "atom()" }

// AtomLit is a singleton atom value.
type AtomLit struct{ Value string }

func (AtomLit) node()            {}
func (a AtomLit) Hash() uint64   { return hashKind("atom_lit", hashString(a.Value)) }
func (a AtomLit) String() string { return ":" + a.Value }

// IntType is the type of all integers.
type IntType struct{}

func (IntType) node()          {}
func (IntType) Hash() uint64   { return hashKind("int") }
func (IntType) String() string { return "integer()" }

// PosIntType is the type of strictly positive integers.
type PosIntType struct{}

func (PosIntType) node()          {}
func (PosIntType) Hash() uint64   { return hashKind("pos_int") }
func (PosIntType) String() string { return "pos_integer()" }

// NegIntType is the type of strictly negative integers.
type NegIntType struct{}

func (NegIntType) node()          {}
func (NegIntType) Hash() uint64   { return hashKind("neg_int") }
func (NegIntType) String() string { return "neg_integer()" }

// NonNegIntType is the type of integers >= 0.
type NonNegIntType struct{}

func (NonNegIntType) node()          {}
func (NonNegIntType) Hash() uint64   { return hashKind("non_neg_int") }
func (NonNegIntType) String() string { return "non_neg_integer()" }

// IntLit is a singleton integer value.
type IntLit struct{ Value int64 }

func (IntLit) node()            {}
func (i IntLit) Hash() uint64   { return hashKind("int_lit", uint64(i.Value)) }
func (i IntLit) String() string { return strconv.FormatInt(i.Value, 10) }

// RangeType is the inclusive integer range [Lo, Hi].
type RangeType struct{ Lo, Hi int64 }

func (RangeType) node()          {}
func (r RangeType) Hash() uint64 { return hashKind("range", uint64(r.Lo), uint64(r.Hi)) }
func (r RangeType) String() string {
	return fmt.Sprintf("%d..%d", r.Lo, r.Hi)
}

// FloatType is the type of floating point numbers.
type FloatType struct{}

func (FloatType) node()          {}
func (FloatType) Hash() uint64   { return hashKind("float") }
func (FloatType) String() string { return "float()" }

// BoolType is AtomLit(true) | AtomLit(false); kept distinct from its
// expansion so builders can special-case it (see alias.go).
type BoolType struct{}

func (BoolType) node()          {}
func (BoolType) Hash() uint64   { return hashKind("bool") }
func (BoolType) String() string { return "boolean()" }

// ByteType is Range(0, 255).
type ByteType struct{}

func (ByteType) node()          {}
func (ByteType) Hash() uint64   { return hashKind("byte") }
func (ByteType) String() string { return "byte()" }

// CharType is Range(0, 0x10FFFF).
type CharType struct{}

func (CharType) node()          {}
func (CharType) Hash() uint64   { return hashKind("char") }
func (CharType) String() string { return "char()" }

// ArityType is Range(0, 255).
type ArityType struct{}

func (ArityType) node()          {}
func (ArityType) Hash() uint64   { return hashKind("arity") }
func (ArityType) String() string { return "arity()" }

// BitstringType is the type of arbitrary bit sequences.
type BitstringType struct{}

func (BitstringType) node()          {}
func (BitstringType) Hash() uint64   { return hashKind("bitstring") }
func (BitstringType) String() string { return "bitstring()" }

// BinaryType is the type of arbitrary byte sequences.
type BinaryType struct{}

func (BinaryType) node()          {}
func (BinaryType) Hash() uint64   { return hashKind("binary") }
func (BinaryType) String() string { return "binary()" }

// BinaryPattern restricts bit length to size + k*unit for non-negative k
// (or exactly empty when Size == Unit == 0).
type BinaryPattern struct{ Size, Unit int64 }

func (BinaryPattern) node() {}
func (b BinaryPattern) Hash() uint64 {
	return hashKind("binary_pattern", uint64(b.Size), uint64(b.Unit))
}
func (b BinaryPattern) String() string {
	return fmt.Sprintf("<<_:%d, _:_*%d>>", b.Size, b.Unit)
}

// RefType is an opaque identity token.
type RefType struct{}

func (RefType) node()          {}
func (RefType) Hash() uint64   { return hashKind("ref") }
func (RefType) String() string { return "reference()" }

// NilType is the empty ordered sequence.
type NilType struct{}

func (NilType) node()          {}
func (NilType) Hash() uint64   { return hashKind("nil") }
func (NilType) String() string { return "[]" }

// PidType and PortType denote opaque runtime handles; they are always
// Unsupported (§4.2 Failure semantics) but are represented so a registry
// can describe them without the normalizer failing early.
type PidType struct{}

func (PidType) node()          {}
func (PidType) Hash() uint64   { return hashKind("pid") }
func (PidType) String() string { return "pid()" }

type PortType struct{}

func (PortType) node()          {}
func (PortType) Hash() uint64   { return hashKind("port") }
func (PortType) String() string { return "port()" }

// List is a homogeneous, possibly-empty sequence of Elem.
type List struct{ Elem Node }

func (List) node()          {}
func (l List) Hash() uint64 { return hashKind("list", l.Elem.Hash()) }
func (l List) String() string {
	return "list(" + l.Elem.String() + ")"
}

// NonemptyList is a List with a minimum length of 1.
type NonemptyList struct{ Elem Node }

func (NonemptyList) node()          {}
func (l NonemptyList) Hash() uint64 { return hashKind("nonempty_list", l.Elem.Hash()) }
func (l NonemptyList) String() string {
	return "nonempty_list(" + l.Elem.String() + ")"
}

// ImproperList represents the four improper-list families of §3, selected
// by the Nonempty and MaybeProper flags:
//
//	ImproperList:                   !Nonempty, !MaybeProper
//	NonemptyImproperList:            Nonempty, !MaybeProper
//	MaybeImproperList:              !Nonempty,  MaybeProper
//	NonemptyMaybeImproperList:       Nonempty,  MaybeProper
type ImproperList struct {
	Head, Tail  Node
	Nonempty    bool
	MaybeProper bool
}

func (ImproperList) node() {}
func (l ImproperList) Hash() uint64 {
	return hashKind("improper_list", l.Head.Hash(), l.Tail.Hash(), boolHash(l.Nonempty), boolHash(l.MaybeProper))
}
func (l ImproperList) String() string {
	return fmt.Sprintf("improper_list(%s, %s)", l.Head.String(), l.Tail.String())
}

func boolHash(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Tuple is a fixed-arity ordered product.
type Tuple struct{ Elems []Node }

func (Tuple) node() {}
func (t Tuple) Hash() uint64 {
	parts := make([]uint64, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Hash()
	}
	return hashKind("tuple", parts...)
}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TupleAny is a tuple of unconstrained arity and element types.
type TupleAny struct{}

func (TupleAny) node()          {}
func (TupleAny) Hash() uint64   { return hashKind("tuple_any") }
func (TupleAny) String() string { return "tuple()" }

// MapFieldKind distinguishes a Required map field from an Optional one.
type MapFieldKind uint8

const (
	Required MapFieldKind = iota
	Optional
)

// MapField is one key/value constraint of a Map node. See §3.
type MapField struct {
	Kind       MapFieldKind
	Key, Value Node
}

func (f MapField) Hash() uint64 {
	return hashKind("map_field", uint64(f.Kind), f.Key.Hash(), f.Value.Hash())
}

func (f MapField) String() string {
	if f.Kind == Optional {
		return fmt.Sprintf("optional(%s) => %s", f.Key.String(), f.Value.String())
	}
	if lit, ok := f.Key.(AtomLit); ok {
		return fmt.Sprintf("%s: %s", lit.Value, f.Value.String())
	}
	return fmt.Sprintf("required(%s) => %s", f.Key.String(), f.Value.String())
}

// Map is a key/value bag constrained field by field.
type Map struct{ Fields []MapField }

func (Map) node() {}
func (m Map) Hash() uint64 {
	parts := make([]uint64, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = f.Hash()
	}
	return hashKind("map", parts...)
}
func (m Map) String() string {
	parts := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = f.String()
	}
	return "%{" + strings.Join(parts, ", ") + "}"
}

// MapAny admits any map.
type MapAny struct{}

func (MapAny) node()          {}
func (MapAny) Hash() uint64   { return hashKind("map_any") }
func (MapAny) String() string { return "map()" }

// EmptyMapType admits only the empty map.
type EmptyMapType struct{}

func (EmptyMapType) node()          {}
func (EmptyMapType) Hash() uint64   { return hashKind("empty_map") }
func (EmptyMapType) String() string { return "%{}" }

// Union is a flat sum of two or more alternatives; after normalization no
// Union is a direct child of another Union (§3).
type Union struct{ Alts []Node }

func (Union) node() {}
func (u Union) Hash() uint64 {
	parts := make([]uint64, len(u.Alts))
	for i, a := range u.Alts {
		parts[i] = a.Hash()
	}
	return hashKind("union", parts...)
}
func (u Union) String() string {
	parts := make([]string, len(u.Alts))
	for i, a := range u.Alts {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

// UserRef names another definition in the same module, applied to Args.
// It also doubles as the self-reference marker described in §4.1: a
// UserRef whose Name equals the definition currently being normalized is
// retained rather than inlined.
type UserRef struct {
	Name string
	Args []Node
}

func (UserRef) node() {}
func (r UserRef) Hash() uint64 {
	parts := make([]uint64, 0, len(r.Args)+1)
	parts = append(parts, hashString(r.Name))
	for _, a := range r.Args {
		parts = append(parts, a.Hash())
	}
	return hashKind("user_ref", parts...)
}
func (r UserRef) String() string {
	return r.Name + argsString(r.Args)
}

// RemoteRef names a definition in another module.
type RemoteRef struct {
	Module string
	Name   string
	Args   []Node
}

func (RemoteRef) node() {}
func (r RemoteRef) Hash() uint64 {
	parts := make([]uint64, 0, len(r.Args)+2)
	parts = append(parts, hashString(r.Module), hashString(r.Name))
	for _, a := range r.Args {
		parts = append(parts, a.Hash())
	}
	return hashKind("remote_ref", parts...)
}
func (r RemoteRef) String() string {
	return r.Module + "." + r.Name + argsString(r.Args)
}

func argsString(args []Node) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Var is a type-parameter placeholder; after parameter substitution no Var
// nodes remain in a normalized AST (§3).
type Var struct{ Name string }

func (Var) node()          {}
func (v Var) Hash() uint64 { return hashKind("var", hashString(v.Name)) }
func (v Var) String() string {
	return v.Name
}

// OpaqueKind distinguishes an Opaque node carrying a caller-supplied
// generator from one carrying a caller-supplied validator. Per the §9 open
// question, this implementation's convention is: a generator does NOT
// implicitly supply a matching validator and vice versa, and mixed usage
// (passing a generator where a validator is required, or the reverse) is
// refused at build time with BadArgument. See DESIGN.md.
type OpaqueKind uint8

const (
	OpaqueGenerator OpaqueKind = iota
	OpaqueValidator
)

// Opaque wraps an externally supplied GeneratorHandle or ValidatorHandle so
// it can be threaded through the AST like any other type argument (§6.1(f)).
type Opaque struct {
	Kind OpaqueKind
	Gen  GeneratorHandle
	Val  ValidatorHandle
	// id disambiguates distinct opaque values for Hash/equality purposes;
	// callers need not set it, NewOpaqueGenerator/NewOpaqueValidator do.
	id uint64
}

func (Opaque) node()          {}
func (o Opaque) Hash() uint64 { return hashKind("opaque", uint64(o.Kind), o.id) }
func (o Opaque) String() string {
	if o.Kind == OpaqueGenerator {
		return "opaque_generator()"
	}
	return "opaque_validator()"
}

var opaqueCounter uint64

// NewOpaqueGenerator lifts a caller-supplied GeneratorHandle into a Node
// that can be used wherever a type is expected, e.g. as a type argument.
func NewOpaqueGenerator(g GeneratorHandle) Opaque {
	opaqueCounter++
	return Opaque{Kind: OpaqueGenerator, Gen: g, id: opaqueCounter}
}

// NewOpaqueValidator lifts a caller-supplied ValidatorHandle into a Node.
func NewOpaqueValidator(v ValidatorHandle) Opaque {
	opaqueCounter++
	return Opaque{Kind: OpaqueValidator, Val: v, id: opaqueCounter}
}
