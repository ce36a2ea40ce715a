// Package genbuild implements the Generator Builder of §4.2: it folds a
// normalized typeast.Node into a typeast.GeneratorHandle, using
// pgregory.net/rapid as the combinator library assumed by §6.4.
package genbuild

import (
	"log/slog"

	"github.com/cottand/typegen/internal/log"
	"github.com/cottand/typegen/typeast"
)

var buildLog = log.DefaultLogger.With("section", "genbuild")

// DefaultTreeDepth bounds how many recursive unfoldings tree() performs
// before forcing a base case, satisfying P2 (termination): every
// recursive generator this builder produces is depth-bounded regardless
// of the shape of the recursive type.
const DefaultTreeDepth = 6

// Builder is the Generator Builder: §6.1's from_type/from_type_with_validator
// entry points, built over a shared typeast.Registry and
// typeast.ProtocolCollaborator.
type Builder struct {
	registry   *typeast.Registry
	normalizer *typeast.Normalizer
	protocol   typeast.ProtocolCollaborator
}

// NewBuilder builds a Builder over reg, consulting protocol (which may be
// nil, treating every remote module as a non-protocol) to refuse remote
// references into open polymorphic dispatch surfaces (§6.3).
func NewBuilder(reg *typeast.Registry, protocol typeast.ProtocolCollaborator) *Builder {
	return &Builder{
		registry:   reg,
		normalizer: typeast.NewNormalizer(reg),
		protocol:   protocol,
	}
}

// FromType is §6.1's from_type(module, name, args).
func (b *Builder) FromType(module, name string, args []typeast.Arg) (typeast.GeneratorHandle, error) {
	nodes, err := rewriteArgs(args)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	return b.fromNodes(module, name, nodes)
}

// FromNode builds a generator for an already-rewritten node that has no
// enclosing TypeDef of its own, used by speccheck to build generators for
// an overload's argument types directly from the SpecCollaborator's AST.
func (b *Builder) FromNode(module string, n typeast.Node) (typeast.GeneratorHandle, error) {
	norm, err := b.normalizer.NormalizeNode(module, n)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	return b.build(module, norm)
}

func (b *Builder) fromNodes(module, name string, nodes []typeast.Node) (typeast.GeneratorHandle, error) {
	norm, err := b.normalizer.Normalize(module, name, nodes)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	return b.build(module, norm)
}

func rewriteArgs(args []typeast.Arg) ([]typeast.Node, error) {
	nodes := make([]typeast.Node, len(args))
	for i, a := range args {
		n, err := typeast.RewriteArg(a)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (b *Builder) build(module string, norm *typeast.Normalized) (typeast.GeneratorHandle, error) {
	if norm.Recursion == nil {
		return b.buildNode(module, norm.Root)
	}
	switch norm.Recursion.Kind {
	case typeast.RecursionUnion:
		return b.buildUnionRecursion(module, norm.Recursion)
	case typeast.RecursionNonUnion:
		return b.buildNonUnionRecursion(module, norm.Recursion)
	default:
		return b.buildNode(module, norm.Root)
	}
}

// buildNode dispatches on the concrete Node kind, mirroring §4.2's
// Primitive mapping and Structural mapping tables.
func (b *Builder) buildNode(module string, n typeast.Node) (typeast.GeneratorHandle, error) {
	switch t := n.(type) {
	case typeast.Any:
		return anyGen(), nil
	case typeast.NoneType:
		return typeast.GeneratorHandle{}, typeast.NewError(typeast.NoInhabitants, "none() has no inhabitants to generate")
	case typeast.AtomType:
		return atomGen(), nil
	case typeast.AtomLit:
		return constantGen(typeast.Atom(t.Value)), nil
	case typeast.IntType:
		return intGen(), nil
	case typeast.PosIntType:
		return posIntGen(), nil
	case typeast.NegIntType:
		return negIntGen(), nil
	case typeast.NonNegIntType:
		return nonNegIntGen(), nil
	case typeast.IntLit:
		return constantGen(t.Value), nil
	case typeast.RangeType:
		return rangeGen(t.Lo, t.Hi), nil
	case typeast.FloatType:
		return floatGen(), nil
	case typeast.BoolType:
		return boolGen(), nil
	case typeast.ByteType:
		return rangeGen(0, 255), nil
	case typeast.CharType:
		return rangeGen(0, 0x10FFFF), nil
	case typeast.ArityType:
		return rangeGen(0, 255), nil
	case typeast.BitstringType:
		return bitstringGen(), nil
	case typeast.BinaryType:
		return binaryGen(), nil
	case typeast.BinaryPattern:
		return binaryPatternGen(t.Size, t.Unit), nil
	case typeast.RefType:
		return refGen(), nil
	case typeast.PidType:
		return typeast.GeneratorHandle{}, typeast.NewError(typeast.Unsupported, "pid() values cannot be fabricated")
	case typeast.PortType:
		return typeast.GeneratorHandle{}, typeast.NewError(typeast.Unsupported, "port() values cannot be fabricated")
	case typeast.NilType:
		return constantGen[any]([]any{}), nil

	case typeast.List:
		return b.buildList(module, t.Elem, 0)
	case typeast.NonemptyList:
		return b.buildList(module, t.Elem, 1)
	case typeast.ImproperList:
		return b.buildImproperList(module, t)
	case typeast.Tuple:
		return b.buildTuple(module, t)
	case typeast.TupleAny:
		return b.buildTupleAny(module)
	case typeast.Map:
		return b.buildMap(module, t)
	case typeast.MapAny:
		return mapAnyGen(), nil
	case typeast.EmptyMapType:
		return constantGen[any](map[any]any{}), nil
	case typeast.Union:
		return b.buildUnion(module, t)
	case typeast.RemoteRef:
		return b.buildRemoteRef(module, t)
	case typeast.UserRef:
		// Only reachable if a self-reference marker survived recursion
		// classification without being substituted (a build-time bug in
		// the recursion engine, not a caller error).
		return typeast.GeneratorHandle{}, typeast.NewError(typeast.InfiniteType, "unresolved self-reference to %q while building a generator", t.Name)
	case typeast.Opaque:
		return b.buildOpaque(t)

	case typeast.Charlist:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.NonemptyCharlist:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.StringAlias:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.NonemptyStringAlias:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.Number:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.Mfa:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.ModuleName:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.NodeName:
		return b.buildNode(module, typeast.Expand(t))
	case typeast.Timeout:
		return timeoutGen(), nil
	case typeast.Iolist:
		return b.buildIolist(module)
	case typeast.Iodata:
		return b.buildIodata(module)

	default:
		return typeast.GeneratorHandle{}, typeast.NewError(typeast.BadArgument, "generator builder: unsupported node %T", n)
	}
}

func (b *Builder) buildOpaque(o typeast.Opaque) (typeast.GeneratorHandle, error) {
	if o.Kind != typeast.OpaqueGenerator {
		return typeast.GeneratorHandle{}, typeast.NewError(typeast.BadArgument,
			"an opaque validator was supplied where a generator was required; this implementation does not derive a generator from a validator (see DESIGN.md)")
	}
	return o.Gen, nil
}

func (b *Builder) buildUnion(module string, u typeast.Union) (typeast.GeneratorHandle, error) {
	gens := make([]typeast.GeneratorHandle, len(u.Alts))
	for i, alt := range u.Alts {
		g, err := b.buildNode(module, alt)
		if err != nil {
			return typeast.GeneratorHandle{}, err
		}
		gens[i] = g
	}
	return oneOfHandles(gens), nil
}

func (b *Builder) buildRemoteRef(module string, r typeast.RemoteRef) (typeast.GeneratorHandle, error) {
	if b.protocol != nil {
		isProto, err := b.protocol.IsProtocol(r.Module)
		if err != nil {
			return typeast.GeneratorHandle{}, typeast.WrapError(typeast.Protocol, err, "checking whether %q is a protocol", r.Module)
		}
		if isProto {
			return typeast.GeneratorHandle{}, typeast.NewError(typeast.Protocol, "%s is a protocol/interface type and cannot be sampled", r.Module)
		}
	}
	buildLog.Debug("resolving remote reference", slog.String("module", r.Module), slog.String("name", r.Name))
	return b.fromNodes(r.Module, r.Name, r.Args)
}
