package genbuild

import (
	"pgregory.net/rapid"

	"github.com/cottand/typegen/typeast"
)

// buildUnionRecursion implements §4.2's union-recursion case: the leaves
// (alternatives with no self-reference) form depth 0, and each depth d>0
// mixes the leaves with the recursive alternatives grown from depth d-1 by
// substituting the self-reference with an Opaque wrapping the previous
// depth's generator.
func (b *Builder) buildUnionRecursion(module string, r *typeast.Recursion) (typeast.GeneratorHandle, error) {
	leafGen, err := b.buildUnion(module, typeast.Union{Alts: r.Leaves})
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	grow := func(prev typeast.GeneratorHandle) (typeast.GeneratorHandle, error) {
		grown := make([]typeast.Node, len(r.Nodes))
		for i, n := range r.Nodes {
			grown[i] = typeast.Substitute(n, r.SelfName, typeast.NewOpaqueGenerator(prev))
		}
		nodeGens, err := b.buildUnion(module, typeast.Union{Alts: grown})
		if err != nil {
			return typeast.GeneratorHandle{}, err
		}
		return oneOfHandles([]typeast.GeneratorHandle{leafGen, nodeGens}), nil
	}
	return treeCombinator(leafGen, grow, DefaultTreeDepth)
}

// buildNonUnionRecursion implements §4.2's non-union-recursion case: Base is
// the pruned, self-reference-free depth-0 AST; each deeper level rebuilds
// Original with the self-reference substituted for the previous depth.
func (b *Builder) buildNonUnionRecursion(module string, r *typeast.Recursion) (typeast.GeneratorHandle, error) {
	baseGen, err := b.buildNode(module, r.Base)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	grow := func(prev typeast.GeneratorHandle) (typeast.GeneratorHandle, error) {
		grown := typeast.Substitute(r.Original, r.SelfName, typeast.NewOpaqueGenerator(prev))
		return b.buildNode(module, grown)
	}
	return treeCombinator(baseGen, grow, DefaultTreeDepth)
}

// treeCombinator is this implementation's tree(base, grow) of §4.2: it
// eagerly materializes one generator per depth level 0..maxDepth (depth 0 is
// base, depth d is grow(depth d-1)), then wraps them behind a single
// generator that draws a random depth and delegates to it. Materializing
// every level up front, rather than growing lazily on each draw, keeps the
// resulting generator itself side-effect-free and reusable across draws,
// at the cost of building maxDepth+1 generators regardless of which depth
// ends up being drawn.
func treeCombinator(base typeast.GeneratorHandle, grow func(typeast.GeneratorHandle) (typeast.GeneratorHandle, error), maxDepth int) (typeast.GeneratorHandle, error) {
	levels := make([]typeast.GeneratorHandle, maxDepth+1)
	levels[0] = base
	for d := 1; d <= maxDepth; d++ {
		g, err := grow(levels[d-1])
		if err != nil {
			return typeast.GeneratorHandle{}, err
		}
		levels[d] = g
	}
	return lift(rapid.Custom(func(t *rapid.T) any {
		depth := rapid.IntRange(0, maxDepth).Draw(t, "tree_depth")
		return levels[depth].Draw(t, "tree_value")
	}), "tree"), nil
}
