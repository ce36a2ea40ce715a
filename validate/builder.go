// Package validate implements the Validator Builder of §4.3: it folds a
// normalized typeast.Node into a total predicate closure, mirroring
// genbuild's structural traversal but producing a boolean function instead
// of a value stream.
package validate

import (
	"log/slog"

	"github.com/cottand/typegen/internal/log"
	"github.com/cottand/typegen/typeast"
)

var buildLog = log.DefaultLogger.With("section", "validate")

// Builder is the Validator Builder.
type Builder struct {
	registry   *typeast.Registry
	normalizer *typeast.Normalizer
	protocol   typeast.ProtocolCollaborator
}

// NewBuilder builds a Builder over reg, consulting protocol the same way
// genbuild.NewBuilder does.
func NewBuilder(reg *typeast.Registry, protocol typeast.ProtocolCollaborator) *Builder {
	return &Builder{
		registry:   reg,
		normalizer: typeast.NewNormalizer(reg),
		protocol:   protocol,
	}
}

// FromType is §6.1's validator_for_type(module, name, args).
func (b *Builder) FromType(module, name string, args []typeast.Arg) (typeast.ValidatorHandle, error) {
	nodes := make([]typeast.Node, len(args))
	for i, a := range args {
		n, err := typeast.RewriteArg(a)
		if err != nil {
			return typeast.ValidatorHandle{}, err
		}
		nodes[i] = n
	}
	return b.fromNodes(module, name, nodes)
}

// FromNode builds a validator for an already-rewritten node with no
// enclosing TypeDef of its own, the validate-side counterpart of
// genbuild.Builder.FromNode used by speccheck for an overload's return type.
func (b *Builder) FromNode(module string, n typeast.Node) (typeast.ValidatorHandle, error) {
	norm, err := b.normalizer.NormalizeNode(module, n)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	return b.build(module, norm)
}

func (b *Builder) fromNodes(module, name string, nodes []typeast.Node) (typeast.ValidatorHandle, error) {
	norm, err := b.normalizer.Normalize(module, name, nodes)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	return b.build(module, norm)
}

func (b *Builder) build(module string, norm *typeast.Normalized) (typeast.ValidatorHandle, error) {
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

// buildNode dispatches on the concrete Node kind, mirroring §4.3's
// predicate mapping table.
func (b *Builder) buildNode(module string, n typeast.Node) (typeast.ValidatorHandle, error) {
	switch t := n.(type) {
	case typeast.Any:
		return always(true), nil
	case typeast.NoneType:
		return always(false), nil
	case typeast.AtomType:
		return pred(isAtom), nil
	case typeast.AtomLit:
		return pred(func(v any) bool {
			a, ok := v.(typeast.Atom)
			return ok && string(a) == t.Value
		}), nil
	case typeast.IntType:
		return pred(isInt), nil
	case typeast.PosIntType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i > 0 }), nil
	case typeast.NegIntType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i < 0 }), nil
	case typeast.NonNegIntType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i >= 0 }), nil
	case typeast.IntLit:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i == t.Value }), nil
	case typeast.RangeType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i >= t.Lo && i <= t.Hi }), nil
	case typeast.FloatType:
		return pred(func(v any) bool { _, ok := v.(float64); return ok }), nil
	case typeast.BoolType:
		return pred(func(v any) bool {
			a, ok := v.(typeast.Atom)
			return ok && (a == "true" || a == "false")
		}), nil
	case typeast.ByteType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i >= 0 && i <= 255 }), nil
	case typeast.CharType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i >= 0 && i <= 0x10FFFF }), nil
	case typeast.ArityType:
		return pred(func(v any) bool { i, ok := asInt(v); return ok && i >= 0 && i <= 255 }), nil
	case typeast.BitstringType:
		return pred(func(v any) bool { _, ok := v.(typeast.Bits); return ok }), nil
	case typeast.BinaryType:
		return pred(isBinary), nil
	case typeast.BinaryPattern:
		return pred(func(v any) bool {
			b, ok := v.(typeast.Bits)
			if !ok {
				return false
			}
			if t.Unit == 0 {
				return int64(b.BitLen) == t.Size
			}
			delta := int64(b.BitLen) - t.Size
			return delta >= 0 && delta%t.Unit == 0
		}), nil
	case typeast.RefType:
		return pred(func(v any) bool { _, ok := v.(typeast.RefValue); return ok }), nil
	case typeast.PidType:
		return pred(func(v any) bool { _, ok := v.(typeast.PidValue); return ok }), nil
	case typeast.PortType:
		return pred(func(v any) bool { _, ok := v.(typeast.PortValue); return ok }), nil
	case typeast.NilType:
		return pred(isEmptyList), nil

	case typeast.List:
		return b.buildList(module, t.Elem, 0)
	case typeast.NonemptyList:
		return b.buildList(module, t.Elem, 1)
	case typeast.ImproperList:
		return b.buildImproperList(module, t)
	case typeast.Tuple:
		return b.buildTuple(module, t)
	case typeast.TupleAny:
		return pred(func(v any) bool { _, ok := v.(typeast.TupleValue); return ok }), nil
	case typeast.Map:
		return b.buildMap(module, t)
	case typeast.MapAny:
		return pred(isMap), nil
	case typeast.EmptyMapType:
		return pred(func(v any) bool { m, ok := v.(map[any]any); return ok && len(m) == 0 }), nil
	case typeast.Union:
		return b.buildUnion(module, t)
	case typeast.RemoteRef:
		return b.buildRemoteRef(module, t)
	case typeast.UserRef:
		return typeast.ValidatorHandle{}, typeast.NewError(typeast.InfiniteType, "unresolved self-reference to %q while building a validator", t.Name)
	case typeast.Opaque:
		return b.buildOpaque(t)

	case typeast.Charlist, typeast.NonemptyCharlist, typeast.StringAlias, typeast.NonemptyStringAlias,
		typeast.Number, typeast.Mfa, typeast.ModuleName, typeast.NodeName:
		return b.buildNode(module, typeast.Expand(n))
	case typeast.Timeout:
		return pred(isTimeout), nil
	case typeast.Iolist:
		return pred(isIolist), nil
	case typeast.Iodata:
		return pred(func(v any) bool { return isBinary(v) || isIolist(v) }), nil

	default:
		return typeast.ValidatorHandle{}, typeast.NewError(typeast.BadArgument, "validator builder: unsupported node %T", n)
	}
}

func (b *Builder) buildOpaque(o typeast.Opaque) (typeast.ValidatorHandle, error) {
	if o.Kind != typeast.OpaqueValidator {
		return typeast.ValidatorHandle{}, typeast.NewError(typeast.BadArgument,
			"an opaque generator was supplied where a validator was required; this implementation does not derive a validator from a generator (see DESIGN.md)")
	}
	return o.Val, nil
}

func (b *Builder) buildUnion(module string, u typeast.Union) (typeast.ValidatorHandle, error) {
	preds := make([]typeast.ValidatorHandle, len(u.Alts))
	for i, alt := range u.Alts {
		p, err := b.buildNode(module, alt)
		if err != nil {
			return typeast.ValidatorHandle{}, err
		}
		preds[i] = p
	}
	return anyOf(preds), nil
}

func (b *Builder) buildRemoteRef(module string, r typeast.RemoteRef) (typeast.ValidatorHandle, error) {
	if b.protocol != nil {
		isProto, err := b.protocol.IsProtocol(r.Module)
		if err != nil {
			return typeast.ValidatorHandle{}, typeast.WrapError(typeast.Protocol, err, "checking whether %q is a protocol", r.Module)
		}
		if isProto {
			return typeast.ValidatorHandle{}, typeast.NewError(typeast.Protocol, "%s is a protocol/interface type and cannot be validated against", r.Module)
		}
	}
	buildLog.Debug("resolving remote reference", slog.String("module", r.Module), slog.String("name", r.Name))
	return b.fromNodes(r.Module, r.Name, r.Args)
}
