package typeast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeHashStability(t *testing.T) {
	testCases := []struct {
		name string
		a, b Node
		want bool
	}{
		{"same atom lit", AtomLit{Value: "ok"}, AtomLit{Value: "ok"}, true},
		{"different atom lit", AtomLit{Value: "ok"}, AtomLit{Value: "error"}, false},
		{"same range", RangeType{Lo: 0, Hi: 10}, RangeType{Lo: 0, Hi: 10}, true},
		{"different range", RangeType{Lo: 0, Hi: 10}, RangeType{Lo: 0, Hi: 11}, false},
		{"same tuple", Tuple{Elems: []Node{AtomType{}, IntType{}}}, Tuple{Elems: []Node{AtomType{}, IntType{}}}, true},
		{"tuple order matters", Tuple{Elems: []Node{AtomType{}, IntType{}}}, Tuple{Elems: []Node{IntType{}, AtomType{}}}, false},
		{"union order does not collapse to equal node but hash still comparable", Union{Alts: []Node{AtomType{}, IntType{}}}, Union{Alts: []Node{AtomType{}, IntType{}}}, true},
		{"distinct kinds never collide", AtomType{}, IntType{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Hash() == tc.b.Hash()
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNodeString(t *testing.T) {
	testCases := []struct {
		node Node
		want string
	}{
		{Any{}, "any()"},
		{NoneType{}, "none()"},
		{AtomLit{Value: "ok"}, ":ok"},
		{RangeType{Lo: 0, Hi: 10}, "0..10"},
		{Tuple{Elems: []Node{AtomType{}, IntType{}}}, "{atom(), integer()}"},
		{List{Elem: IntType{}}, "list(integer())"},
		{NilType{}, "[]"},
		{UserRef{Name: "tree", Args: []Node{IntType{}}}, "tree(integer())"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.node.String())
		})
	}
}

func TestOpaqueNodesHaveDistinctIdentity(t *testing.T) {
	g1 := NewOpaqueGenerator(GeneratorHandle{})
	g2 := NewOpaqueGenerator(GeneratorHandle{})
	assert.NotEqual(t, g1.Hash(), g2.Hash(), "two distinct opaque generators must not collide by construction order")
}
