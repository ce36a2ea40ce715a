package typeast

// This file implements the built-in alias table of §4.1. Each alias is
// represented as its own Node variant (so builders can special-case it,
// e.g. to bias Timeout's generator 9:1) but also knows its Expand()ed
// form, which the genbuild and validate builders build from for the
// aliases they do not special-case. The normalizer leaves alias nodes as
// they are.

// Expand returns the canonical, alias-free expansion of n, or n itself if
// n is not an alias node (including recursively: Expand does not descend
// into children it did not itself introduce).
func Expand(n Node) Node {
	switch t := n.(type) {
	case BoolType:
		return Union{Alts: []Node{AtomLit{Value: "true"}, AtomLit{Value: "false"}}}
	case ByteType:
		return RangeType{Lo: 0, Hi: 255}
	case CharType:
		return RangeType{Lo: 0, Hi: 0x10FFFF}
	case ArityType:
		return RangeType{Lo: 0, Hi: 255}
	case Number:
		return Union{Alts: []Node{IntType{}, FloatType{}}}
	case Timeout:
		return Union{Alts: []Node{NonNegIntType{}, AtomLit{Value: "infinity"}}}
	case Charlist:
		return List{Elem: CharType{}}
	case NonemptyCharlist:
		return NonemptyList{Elem: CharType{}}
	case StringAlias:
		return List{Elem: CharType{}}
	case NonemptyStringAlias:
		return NonemptyList{Elem: CharType{}}
	case Mfa:
		return Tuple{Elems: []Node{ModuleName{}, ModuleName{}, ArityType{}}}
	case ModuleName:
		return AtomType{}
	case NodeName:
		return AtomType{}
	case Iolist:
		// iolist() :: maybe_improper_list(byte() | binary() | iolist(), binary() | [])
		// expressed with a self-reference; callers that need a concrete
		// AST to normalize should reference the "iolist" user type instead
		// of expanding it blindly, since the self-reference here is not
		// anchored to any registry definition name.
		return t
	case Iodata:
		return Union{Alts: []Node{BinaryType{}, Iolist{}}}
	default:
		return n
	}
}

// Charlist, NonemptyCharlist, StringAlias, NonemptyStringAlias, Mfa,
// ModuleName, NodeName, Number and Timeout are the convenience aliases of
// §3/§4.1 with fixed meanings. They are distinct Node kinds (rather than
// always being expanded eagerly) so the generator builder can special-case
// Timeout's 9:1 bias and so validator error messages stay readable.

type Charlist struct{}

func (Charlist) node()          {}
func (Charlist) Hash() uint64   { return hashKind("charlist") }
func (Charlist) String() string { return "charlist()" }

type NonemptyCharlist struct{}

func (NonemptyCharlist) node()          {}
func (NonemptyCharlist) Hash() uint64   { return hashKind("nonempty_charlist") }
func (NonemptyCharlist) String() string { return "nonempty_charlist()" }

// StringAlias is spec.md's String (== Charlist); named to avoid clashing
// with Go's built-in string type in call sites that `import . "typeast"`-
// style dot-import (discouraged, but the rename also just reads better).
type StringAlias struct{}

func (StringAlias) node()          {}
func (StringAlias) Hash() uint64   { return hashKind("string_alias") }
func (StringAlias) String() string { return "string()" }

type NonemptyStringAlias struct{}

func (NonemptyStringAlias) node()          {}
func (NonemptyStringAlias) Hash() uint64   { return hashKind("nonempty_string_alias") }
func (NonemptyStringAlias) String() string { return "nonempty_string()" }

type Iolist struct{}

func (Iolist) node()          {}
func (Iolist) Hash() uint64   { return hashKind("iolist") }
func (Iolist) String() string { return "iolist()" }

type Iodata struct{}

func (Iodata) node()          {}
func (Iodata) Hash() uint64   { return hashKind("iodata") }
func (Iodata) String() string { return "iodata()" }

type Mfa struct{}

func (Mfa) node()          {}
func (Mfa) Hash() uint64   { return hashKind("mfa") }
func (Mfa) String() string { return "mfa()" }

type ModuleName struct{}

func (ModuleName) node()          {}
func (ModuleName) Hash() uint64   { return hashKind("module") }
func (ModuleName) String() string { return "module()" }

type NodeName struct{}

func (NodeName) node()          {}
func (NodeName) Hash() uint64   { return hashKind("node") }
func (NodeName) String() string { return "node()" }

type Number struct{}

func (Number) node()          {}
func (Number) Hash() uint64   { return hashKind("number") }
func (Number) String() string { return "number()" }

type Timeout struct{}

func (Timeout) node()          {}
func (Timeout) Hash() uint64   { return hashKind("timeout") }
func (Timeout) String() string { return "timeout()" }
