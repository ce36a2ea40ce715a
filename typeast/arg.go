package typeast

// ArgKind tags the variants of the "caller language" described in §4.1's
// Argument rewriting and §6.1's args column. It is a closed set on purpose
// (per the §9 design note, "tagged variant for argument shapes") so that
// callers never need reflection to build an Arg.
type ArgKind uint8

const (
	// ArgBuiltin names a built-in type by its conventional atom, e.g.
	// "int", "atom", "float", "bool", "byte", "binary", "bitstring",
	// "charlist", "nonempty_charlist", "string", "nonempty_string",
	// "iolist", "iodata", "mfa", "module", "node", "number", "timeout",
	// "any", "none", "nil", "ref", "pid", "port".
	ArgBuiltin ArgKind = iota
	// ArgLiteral wraps {literal, value}: a singleton atom (string) or
	// integer (int64); no other literal payload is accepted.
	ArgLiteral
	// ArgRange wraps an inclusive integer range argument.
	ArgRange
	// ArgContainer wraps {container, [subargs]} — list, nonempty_list,
	// tuple, improper_list and friends, map, union.
	ArgContainer
	// ArgUserType wraps {user_type, name} or {user_type, {name, subargs}}.
	ArgUserType
	// ArgRemoteType wraps {remote_type, {module, name}} or
	// {remote_type, {module, name, subargs}}.
	ArgRemoteType
	// ArgOpaqueGenerator/ArgOpaqueValidator wrap a pre-built handle, used
	// by from_type_with_validator (§6.1).
	ArgOpaqueGenerator
	ArgOpaqueValidator
)

// ContainerKind enumerates the container shapes accepted by ArgContainer.
type ContainerKind string

const (
	ContainerList                      ContainerKind = "list"
	ContainerNonemptyList              ContainerKind = "nonempty_list"
	ContainerTuple                     ContainerKind = "tuple"
	ContainerImproperList              ContainerKind = "improper_list"
	ContainerNonemptyImproperList      ContainerKind = "nonempty_improper_list"
	ContainerMaybeImproperList         ContainerKind = "maybe_improper_list"
	ContainerNonemptyMaybeImproperList ContainerKind = "nonempty_maybe_improper_list"
	ContainerMap                       ContainerKind = "map"
	ContainerUnion                     ContainerKind = "union"
)

// ArgMapField is one field of a {map, fields} container argument: either
// {k, v} (required) or {optional, {k, v}}.
type ArgMapField struct {
	Optional   bool
	Key, Value Arg
}

// Arg is the caller-language representation of a single type argument or
// type reference, as accepted by from_type/validator_for_type/etc (§6.1).
type Arg struct {
	Kind ArgKind

	Builtin string // ArgBuiltin

	LiteralAtom    string // ArgLiteral, when the literal is an atom
	LiteralInt     int64  // ArgLiteral, when the literal is an integer
	LiteralIsAtom  bool
	LiteralIsInt   bool

	RangeLo, RangeHi int64 // ArgRange

	Container ContainerKind // ArgContainer
	SubArgs   []Arg         // ArgContainer (list/tuple/improper_list/union)
	MapFields []ArgMapField // ArgContainer == map

	TypeName   string // ArgUserType / ArgRemoteType
	ModuleName string // ArgRemoteType
	SubTypeArg []Arg  // ArgUserType / ArgRemoteType type arguments

	OpaqueGen GeneratorHandle // ArgOpaqueGenerator
	OpaqueVal ValidatorHandle // ArgOpaqueValidator
}

// Builtin constructs an ArgBuiltin for a conventional built-in type name.
func Builtin(name string) Arg { return Arg{Kind: ArgBuiltin, Builtin: name} }

// AtomLiteral constructs a literal-atom argument, e.g. AtomLiteral("ok").
func AtomLiteral(v string) Arg {
	return Arg{Kind: ArgLiteral, LiteralAtom: v, LiteralIsAtom: true}
}

// IntLiteral constructs a literal-integer argument.
func IntLiteral(v int64) Arg {
	return Arg{Kind: ArgLiteral, LiteralInt: v, LiteralIsInt: true}
}

// IntRange constructs a {lo, hi} integer range argument.
func IntRange(lo, hi int64) Arg { return Arg{Kind: ArgRange, RangeLo: lo, RangeHi: hi} }

// Container constructs a {container, [subargs]} argument.
func Container(kind ContainerKind, subArgs ...Arg) Arg {
	return Arg{Kind: ArgContainer, Container: kind, SubArgs: subArgs}
}

// MapOf constructs a {map, fields} argument.
func MapOf(fields ...ArgMapField) Arg {
	return Arg{Kind: ArgContainer, Container: ContainerMap, MapFields: fields}
}

// UserType constructs a {user_type, name} or {user_type, {name, subargs}}
// argument.
func UserType(name string, subArgs ...Arg) Arg {
	return Arg{Kind: ArgUserType, TypeName: name, SubTypeArg: subArgs}
}

// RemoteType constructs a {remote_type, {module, name}} (or with subargs)
// argument.
func RemoteType(module, name string, subArgs ...Arg) Arg {
	return Arg{Kind: ArgRemoteType, ModuleName: module, TypeName: name, SubTypeArg: subArgs}
}

// OpaqueGeneratorArg lifts a pre-built generator into an Arg, for
// from_type_with_validator (§6.1).
func OpaqueGeneratorArg(g GeneratorHandle) Arg { return Arg{Kind: ArgOpaqueGenerator, OpaqueGen: g} }

// OpaqueValidatorArg lifts a pre-built validator into an Arg.
func OpaqueValidatorArg(v ValidatorHandle) Arg { return Arg{Kind: ArgOpaqueValidator, OpaqueVal: v} }

// RewriteArg turns one caller-language Arg into a well-formed Node,
// recursively rewriting container subarguments. It fails with BadArgument
// when the Arg is malformed (§4.1).
func RewriteArg(a Arg) (Node, error) {
	switch a.Kind {
	case ArgBuiltin:
		return rewriteBuiltin(a.Builtin)
	case ArgLiteral:
		if a.LiteralIsAtom {
			return AtomLit{Value: a.LiteralAtom}, nil
		}
		if a.LiteralIsInt {
			return IntLit{Value: a.LiteralInt}, nil
		}
		return nil, NewError(BadArgument, "literal argument has neither an atom nor an integer payload")
	case ArgRange:
		if a.RangeLo > a.RangeHi {
			return nil, NewError(BadArgument, "range %d..%d has lo > hi", a.RangeLo, a.RangeHi)
		}
		return RangeType{Lo: a.RangeLo, Hi: a.RangeHi}, nil
	case ArgContainer:
		return rewriteContainer(a)
	case ArgUserType:
		args, err := rewriteArgs(a.SubTypeArg)
		if err != nil {
			return nil, err
		}
		return UserRef{Name: a.TypeName, Args: args}, nil
	case ArgRemoteType:
		args, err := rewriteArgs(a.SubTypeArg)
		if err != nil {
			return nil, err
		}
		return RemoteRef{Module: a.ModuleName, Name: a.TypeName, Args: args}, nil
	case ArgOpaqueGenerator:
		if !a.OpaqueGen.Valid() {
			return nil, NewError(BadArgument, "opaque generator argument is empty")
		}
		return NewOpaqueGenerator(a.OpaqueGen), nil
	case ArgOpaqueValidator:
		if !a.OpaqueVal.Valid() {
			return nil, NewError(BadArgument, "opaque validator argument is empty")
		}
		return NewOpaqueValidator(a.OpaqueVal), nil
	default:
		return nil, NewError(BadArgument, "unrecognised argument kind %d", a.Kind)
	}
}

func rewriteArgs(args []Arg) ([]Node, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]Node, len(args))
	for i, a := range args {
		n, err := RewriteArg(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func rewriteContainer(a Arg) (Node, error) {
	switch a.Container {
	case ContainerList, ContainerNonemptyList:
		if len(a.SubArgs) != 1 {
			return nil, NewError(BadArgument, "%s expects exactly one subargument, got %d", a.Container, len(a.SubArgs))
		}
		elem, err := RewriteArg(a.SubArgs[0])
		if err != nil {
			return nil, err
		}
		if a.Container == ContainerNonemptyList {
			return NonemptyList{Elem: elem}, nil
		}
		return List{Elem: elem}, nil
	case ContainerTuple:
		elems, err := rewriteArgs(a.SubArgs)
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil
	case ContainerUnion:
		if len(a.SubArgs) < 2 {
			return nil, NewError(BadArgument, "union expects at least two alternatives, got %d", len(a.SubArgs))
		}
		alts, err := rewriteArgs(a.SubArgs)
		if err != nil {
			return nil, err
		}
		return Union{Alts: alts}, nil
	case ContainerImproperList, ContainerNonemptyImproperList, ContainerMaybeImproperList, ContainerNonemptyMaybeImproperList:
		if len(a.SubArgs) != 2 {
			return nil, NewError(BadArgument, "%s expects exactly two subarguments (head, tail), got %d", a.Container, len(a.SubArgs))
		}
		head, err := RewriteArg(a.SubArgs[0])
		if err != nil {
			return nil, err
		}
		tail, err := RewriteArg(a.SubArgs[1])
		if err != nil {
			return nil, err
		}
		return ImproperList{
			Head:        head,
			Tail:        tail,
			Nonempty:    a.Container == ContainerNonemptyImproperList || a.Container == ContainerNonemptyMaybeImproperList,
			MaybeProper: a.Container == ContainerMaybeImproperList || a.Container == ContainerNonemptyMaybeImproperList,
		}, nil
	case ContainerMap:
		fields := make([]MapField, len(a.MapFields))
		for i, f := range a.MapFields {
			k, err := RewriteArg(f.Key)
			if err != nil {
				return nil, err
			}
			v, err := RewriteArg(f.Value)
			if err != nil {
				return nil, err
			}
			kind := Required
			if f.Optional {
				kind = Optional
			}
			fields[i] = MapField{Kind: kind, Key: k, Value: v}
		}
		return Map{Fields: fields}, nil
	default:
		return nil, NewError(BadArgument, "unrecognised container kind %q", a.Container)
	}
}

func rewriteBuiltin(name string) (Node, error) {
	switch name {
	case "any", "term":
		return Any{}, nil
	case "none", "no_return":
		return NoneType{}, nil
	case "atom":
		return AtomType{}, nil
	case "int", "integer":
		return IntType{}, nil
	case "pos_integer":
		return PosIntType{}, nil
	case "neg_integer":
		return NegIntType{}, nil
	case "non_neg_integer":
		return NonNegIntType{}, nil
	case "float":
		return FloatType{}, nil
	case "bool", "boolean":
		return BoolType{}, nil
	case "byte":
		return ByteType{}, nil
	case "char":
		return CharType{}, nil
	case "arity":
		return ArityType{}, nil
	case "bitstring":
		return BitstringType{}, nil
	case "binary":
		return BinaryType{}, nil
	case "ref", "reference":
		return RefType{}, nil
	case "nil":
		return NilType{}, nil
	case "pid":
		return PidType{}, nil
	case "port":
		return PortType{}, nil
	case "tuple":
		return TupleAny{}, nil
	case "map":
		return MapAny{}, nil
	case "empty_map":
		return EmptyMapType{}, nil
	case "charlist":
		return Charlist{}, nil
	case "nonempty_charlist":
		return NonemptyCharlist{}, nil
	case "string":
		return StringAlias{}, nil
	case "nonempty_string":
		return NonemptyStringAlias{}, nil
	case "iolist":
		return Iolist{}, nil
	case "iodata":
		return Iodata{}, nil
	case "mfa":
		return Mfa{}, nil
	case "module":
		return ModuleName{}, nil
	case "node":
		return NodeName{}, nil
	case "number":
		return Number{}, nil
	case "timeout":
		return Timeout{}, nil
	default:
		return nil, NewError(BadArgument, "unrecognised built-in type name %q", name)
	}
}
