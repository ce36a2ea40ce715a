package typeast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeSimpleTuple covers §8 scenario 1: @type t :: {atom, int}.
func TestNormalizeSimpleTuple(t *testing.T) {
	reg := NewRegistry(mapRegistry{
		"m": {def("t", nil, Tuple{Elems: []Node{AtomType{}, IntType{}}})},
	})
	nz := NewNormalizer(reg)

	norm, err := nz.Normalize("m", "t", nil)
	require.NoError(t, err)
	assert.Nil(t, norm.Recursion)
	assert.Equal(t, Tuple{Elems: []Node{AtomType{}, IntType{}}}, norm.Root)
}

// TestNormalizeRangeType covers §8 scenario 2: @type r :: 0..10.
func TestNormalizeRangeType(t *testing.T) {
	reg := NewRegistry(mapRegistry{
		"m": {def("r", nil, RangeType{Lo: 0, Hi: 10})},
	})
	nz := NewNormalizer(reg)

	norm, err := nz.Normalize("m", "r", nil)
	require.NoError(t, err)
	assert.Equal(t, RangeType{Lo: 0, Hi: 10}, norm.Root)
}

// TestNormalizeRecursiveUnion covers §8 scenario 3:
// @type tt :: nil | {int, tt}.
func TestNormalizeRecursiveUnion(t *testing.T) {
	body := Union{Alts: []Node{
		NilType{},
		Tuple{Elems: []Node{IntType{}, UserRef{Name: "tt"}}},
	}}
	reg := NewRegistry(mapRegistry{
		"m": {def("tt", nil, body)},
	})
	nz := NewNormalizer(reg)

	norm, err := nz.Normalize("m", "tt", nil)
	require.NoError(t, err)
	require.NotNil(t, norm.Recursion)
	assert.Equal(t, RecursionUnion, norm.Recursion.Kind)
	assert.Len(t, norm.Recursion.Leaves, 1)
	assert.Len(t, norm.Recursion.Nodes, 1)
	assert.Equal(t, NilType{}, norm.Recursion.Leaves[0])
}

// TestNormalizeInfiniteTypeHasNoBaseCase: a union every alternative of which
// recurses has no base case and must fail with InfiniteType (§4.1, §7).
func TestNormalizeInfiniteTypeHasNoBaseCase(t *testing.T) {
	body := Union{Alts: []Node{
		Tuple{Elems: []Node{IntType{}, UserRef{Name: "loop"}}},
		Tuple{Elems: []Node{FloatType{}, UserRef{Name: "loop"}}},
	}}
	reg := NewRegistry(mapRegistry{
		"m": {def("loop", nil, body)},
	})
	nz := NewNormalizer(reg)

	_, err := nz.Normalize("m", "loop", nil)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, InfiniteType, kind)
}

// TestNormalizeNonUnionRecursionPrunesListSelfReference covers the
// "self-reference outside any union" branch of §4.1: list(T) where
// T = list(T) must bottom out at nil.
func TestNormalizeNonUnionRecursionPrunesListSelfReference(t *testing.T) {
	reg := NewRegistry(mapRegistry{
		"m": {def("ll", nil, List{Elem: UserRef{Name: "ll"}})},
	})
	nz := NewNormalizer(reg)

	norm, err := nz.Normalize("m", "ll", nil)
	require.NoError(t, err)
	require.NotNil(t, norm.Recursion)
	assert.Equal(t, RecursionNonUnion, norm.Recursion.Kind)
	assert.Equal(t, NilType{}, norm.Recursion.Base)
}

// TestNormalizeParametricAlias covers §8 scenario 4:
// @type dict(k, v) :: list({k, v}).
func TestNormalizeParametricAlias(t *testing.T) {
	body := List{Elem: Tuple{Elems: []Node{Var{Name: "k"}, Var{Name: "v"}}}}
	reg := NewRegistry(mapRegistry{
		"m": {def("dict", []string{"k", "v"}, body)},
	})
	nz := NewNormalizer(reg)

	norm, err := nz.Normalize("m", "dict", []Node{AtomType{}, IntType{}})
	require.NoError(t, err)
	assert.Equal(t, List{Elem: Tuple{Elems: []Node{AtomType{}, IntType{}}}}, norm.Root)
}

func TestNormalizeWrongArity(t *testing.T) {
	reg := NewRegistry(mapRegistry{
		"m": {def("dict", []string{"k", "v"}, List{Elem: Var{Name: "k"}})},
	})
	nz := NewNormalizer(reg)

	_, err := nz.Normalize("m", "dict", []Node{AtomType{}})
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, WrongArity, kind)
}

func TestNormalizeUnknownType(t *testing.T) {
	reg := NewRegistry(mapRegistry{"m": {}})
	nz := NewNormalizer(reg)

	_, err := nz.Normalize("m", "nope", nil)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, UnknownType, kind)
}

// TestNormalizeInlinesNonSelfUserRef ensures a reference to a different
// named type is inlined, while a reference to the type being built is kept
// as a self-reference marker (§4.1 "User-type inlining").
func TestNormalizeInlinesNonSelfUserRef(t *testing.T) {
	reg := NewRegistry(mapRegistry{
		"m": {
			def("pair", nil, Tuple{Elems: []Node{IntType{}, UserRef{Name: "other"}}}),
			def("other", nil, AtomType{}),
		},
	})
	nz := NewNormalizer(reg)

	norm, err := nz.Normalize("m", "pair", nil)
	require.NoError(t, err)
	assert.Equal(t, Tuple{Elems: []Node{IntType{}, AtomType{}}}, norm.Root)
}

func TestSubstituteReplacesOnlySelfRef(t *testing.T) {
	body := Union{Alts: []Node{NilType{}, Tuple{Elems: []Node{IntType{}, UserRef{Name: "tt"}}}}}
	leaf := NewOpaqueGenerator(GeneratorHandle{})
	out := Substitute(body, "tt", leaf)
	union := out.(Union)
	tup := union.Alts[1].(Tuple)
	assert.Equal(t, leaf, tup.Elems[1])
	assert.Equal(t, NilType{}, union.Alts[0])
}
