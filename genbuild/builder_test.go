package genbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cottand/typegen/typeast"
)

type mapRegistry map[string][]typeast.TypeDef

func (m mapRegistry) LookupTypes(module string) ([]typeast.TypeDef, error) {
	defs, ok := m[module]
	if !ok {
		return nil, typeast.NewError(typeast.UnknownModule, "no such module %q", module)
	}
	return defs, nil
}

func def(name string, params []string, body typeast.Node) typeast.TypeDef {
	return typeast.TypeDef{Name: name, Params: params, Body: body}
}

func asTuple(t *testing.T, v any) typeast.TupleValue {
	tup, ok := v.(typeast.TupleValue)
	require.True(t, ok, "expected a TupleValue, got %T (%v)", v, v)
	return tup
}

// TestFromTypeSimpleTuple covers §8 scenario 1: @type t :: {atom, int}.
// The first few draws must be tuples whose first component is an atom and
// second an integer.
func TestFromTypeSimpleTuple(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("t", nil, typeast.Tuple{Elems: []typeast.Node{typeast.AtomType{}, typeast.IntType{}}})},
	})
	b := NewBuilder(reg, nil)
	h, err := b.FromType("m", "t", nil)
	require.NoError(t, err)

	for seed := uint64(0); seed < 3; seed++ {
		v := h.Example(seed)
		tup := asTuple(t, v)
		require.Len(t, tup, 2)
		_, isAtom := tup[0].(typeast.Atom)
		assert.True(t, isAtom)
		_, isInt := tup[1].(int64)
		assert.True(t, isInt)
	}
}

func TestFromTypeRangeStaysInBounds(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("r", nil, typeast.RangeType{Lo: 0, Hi: 10})},
	})
	b := NewBuilder(reg, nil)
	h, err := b.FromType("m", "r", nil)
	require.NoError(t, err)

	for seed := uint64(0); seed < 50; seed++ {
		v := h.Example(seed).(int64)
		assert.True(t, v >= 0 && v <= 10, "range draw %d out of bounds", v)
	}
}

// TestFromTypeRecursiveUnionTerminates covers §8 scenario 3 and P2
// (termination): draws from a recursive union must be finite Go values
// produced in finite time, at every depth the tree combinator can reach.
func TestFromTypeRecursiveUnionTerminates(t *testing.T) {
	body := typeast.Union{Alts: []typeast.Node{
		typeast.NilType{},
		typeast.Tuple{Elems: []typeast.Node{typeast.IntType{}, typeast.UserRef{Name: "tt"}}},
	}}
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("tt", nil, body)},
	})
	b := NewBuilder(reg, nil)
	h, err := b.FromType("m", "tt", nil)
	require.NoError(t, err)

	for seed := uint64(0); seed < 30; seed++ {
		v := h.Example(seed)
		depth := 0
		for {
			if _, isNil := v.([]any); isNil {
				break
			}
			tup := asTuple(t, v)
			require.Len(t, tup, 2)
			v = tup[1]
			depth++
			require.LessOrEqual(t, depth, DefaultTreeDepth, "recursive draw exceeded the depth budget")
		}
	}
}

func TestFromTypeNoneFailsWithNoInhabitants(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("empty", nil, typeast.NoneType{})},
	})
	b := NewBuilder(reg, nil)
	_, err := b.FromType("m", "empty", nil)
	kind, ok := typeast.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, typeast.NoInhabitants, kind)
}

func TestFromTypePidFailsWithUnsupported(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("p", nil, typeast.PidType{})},
	})
	b := NewBuilder(reg, nil)
	_, err := b.FromType("m", "p", nil)
	kind, ok := typeast.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, typeast.Unsupported, kind)
}

type protoCollaborator map[string]bool

func (p protoCollaborator) IsProtocol(module string) (bool, error) {
	return p[module], nil
}

func TestFromTypeRemoteProtocolRefused(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("t", nil, typeast.RemoteRef{Module: "proto_mod", Name: "x"})},
	})
	b := NewBuilder(reg, protoCollaborator{"proto_mod": true})
	_, err := b.FromType("m", "t", nil)
	kind, ok := typeast.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, typeast.Protocol, kind)
}

// TestMembershipCoherence is a property test of P1 (§8): every value drawn
// from a handful of representative types must be accepted by a validator
// built from the same type — checked here against a hand-rolled predicate
// per type, since genbuild must not depend on the validate package.
func TestMembershipCoherence(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {
			def("t", nil, typeast.Tuple{Elems: []typeast.Node{typeast.AtomType{}, typeast.IntType{}}}),
			def("r", nil, typeast.RangeType{Lo: -5, Hi: 5}),
			// mp mirrors the reviewer's own left-merge/union example: a
			// Required open-key field and an Optional open-key field share
			// the same key domain (AtomType) but different value types, so
			// a naive single-field-owns-every-matching-key validator would
			// reject values the merge-then-draw generator legitimately
			// produces on a key collision between the two fields.
			def("mp", nil, typeast.Map{Fields: []typeast.MapField{
				{Kind: typeast.Required, Key: typeast.AtomType{}, Value: typeast.IntType{}},
				{Kind: typeast.Optional, Key: typeast.AtomType{}, Value: typeast.FloatType{}},
			}}),
		},
	})
	b := NewBuilder(reg, nil)

	rapid.Check(t, func(rt *rapid.T) {
		which := rapid.SampledFrom([]string{"t", "r", "mp"}).Draw(rt, "which")
		h, err := b.FromType("m", which, nil)
		require.NoError(rt, err)
		v := h.Draw(rt, "v")
		switch which {
		case "t":
			tup, ok := v.(typeast.TupleValue)
			require.True(rt, ok)
			require.Len(rt, tup, 2)
			_, atomOk := tup[0].(typeast.Atom)
			require.True(rt, atomOk)
			_, intOk := tup[1].(int64)
			require.True(rt, intOk)
		case "r":
			n, ok := v.(int64)
			require.True(rt, ok)
			require.True(rt, n >= -5 && n <= 5)
		case "mp":
			m, ok := v.(map[any]any)
			require.True(rt, ok)
			require.True(rt, mapMatchesRequiredOptionalAtomFields(m))
		}
	})
}

// TestBuildMapEarlierFieldWinsCollision pins down the left-merge direction
// concretely rather than relying on a property test to happen to roll a
// colliding key: both fields key on the same literal atom, so every single
// draw collides, and the Required field's int value must never be
// clobbered by the Optional field's float value.
func TestBuildMapEarlierFieldWinsCollision(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{
		"m": {def("mp", nil, typeast.Map{Fields: []typeast.MapField{
			{Kind: typeast.Required, Key: typeast.AtomLit{Value: "x"}, Value: typeast.IntType{}},
			{Kind: typeast.Optional, Key: typeast.AtomLit{Value: "x"}, Value: typeast.FloatType{}},
		}})},
	})
	b := NewBuilder(reg, nil)
	h, err := b.FromType("m", "mp", nil)
	require.NoError(t, err)

	for seed := uint64(0); seed < 20; seed++ {
		v := h.Example(seed)
		m, ok := v.(map[any]any)
		require.True(t, ok)
		val, present := m[typeast.Atom("x")]
		require.True(t, present, "Required field's key must always be present")
		_, isInt := val.(int64)
		assert.True(t, isInt, "earlier Required field's value must win the collision, got %T", val)
	}
}

// mapMatchesRequiredOptionalAtomFields hand-rolls the union-semantics
// predicate for the "mp" type above, without depending on the validate
// package: at least one entry must carry an int64 value (the Required
// field's presence invariant), and every entry's value must be either an
// int64 or a float64 (the union of both fields' value predicates, since
// both fields share an atom key domain and an entry matching either
// field's value type is legitimate regardless of which field "drew" it).
func mapMatchesRequiredOptionalAtomFields(m map[any]any) bool {
	sawInt := false
	for k, v := range m {
		if _, ok := k.(typeast.Atom); !ok {
			return false
		}
		switch v.(type) {
		case int64:
			sawInt = true
		case float64:
		default:
			return false
		}
	}
	return sawInt
}
