package validate

import "github.com/cottand/typegen/typeast"

// buildUnionRecursion implements §4.3/§9's Y-combinator encoding: self is a
// ValidatorHandle whose predicate closes over a mutable predPtr, so the node
// alternatives can be built with the self-reference substituted for self
// before predPtr itself is assigned — a classic fixed-point wrapper applied
// to itself at call time.
func (b *Builder) buildUnionRecursion(module string, r *typeast.Recursion) (typeast.ValidatorHandle, error) {
	var predPtr func(any) bool
	self := typeast.NewValidatorHandle(func(v any) bool { return predPtr(v) })

	leafPred, err := b.buildUnion(module, typeast.Union{Alts: r.Leaves})
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	grownAlts := make([]typeast.Node, len(r.Nodes))
	for i, n := range r.Nodes {
		grownAlts[i] = typeast.Substitute(n, r.SelfName, typeast.NewOpaqueValidator(self))
	}
	nodesPred, err := b.buildUnion(module, typeast.Union{Alts: grownAlts})
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}

	predPtr = func(v any) bool {
		if leafPred.Check(v) {
			return true
		}
		return nodesPred.Check(v)
	}
	return self, nil
}

// buildNonUnionRecursion mirrors buildUnionRecursion for the non-union
// recursion case: Base is the pruned, self-reference-free predicate; the
// grown branch re-checks the original shape with the self-reference routed
// back to self.
func (b *Builder) buildNonUnionRecursion(module string, r *typeast.Recursion) (typeast.ValidatorHandle, error) {
	var predPtr func(any) bool
	self := typeast.NewValidatorHandle(func(v any) bool { return predPtr(v) })

	basePred, err := b.buildNode(module, r.Base)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	grown := typeast.Substitute(r.Original, r.SelfName, typeast.NewOpaqueValidator(self))
	grownPred, err := b.buildNode(module, grown)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}

	predPtr = func(v any) bool {
		if basePred.Check(v) {
			return true
		}
		return grownPred.Check(v)
	}
	return self, nil
}
