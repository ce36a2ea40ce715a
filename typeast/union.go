package typeast

import (
	"sort"

	xtgoset "github.com/xtgo/set"
)

// flattenUnions implements §3's "Union is flat" invariant: nested unions
// are merged and duplicate alternatives (by structural hash) are removed,
// following P6's commutativity/flattening property. Descends into every
// structural node so a union nested inside a list/tuple/map is flattened
// too.
func flattenUnions(n Node) Node {
	switch t := n.(type) {
	case Union:
		var flat []Node
		for _, a := range t.Alts {
			a = flattenUnions(a)
			if sub, ok := a.(Union); ok {
				flat = append(flat, sub.Alts...)
			} else {
				flat = append(flat, a)
			}
		}
		return dedupAlts(flat)
	case List:
		return List{Elem: flattenUnions(t.Elem)}
	case NonemptyList:
		return NonemptyList{Elem: flattenUnions(t.Elem)}
	case ImproperList:
		return ImproperList{
			Head:        flattenUnions(t.Head),
			Tail:        flattenUnions(t.Tail),
			Nonempty:    t.Nonempty,
			MaybeProper: t.MaybeProper,
		}
	case Tuple:
		elems := make([]Node, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = flattenUnions(e)
		}
		return Tuple{Elems: elems}
	case Map:
		fields := make([]MapField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = MapField{Kind: f.Kind, Key: flattenUnions(f.Key), Value: flattenUnions(f.Value)}
		}
		return Map{Fields: fields}
	case UserRef:
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = flattenUnions(a)
		}
		return UserRef{Name: t.Name, Args: args}
	default:
		return n
	}
}

// hashedAlts pairs each alternative's structural hash with the node
// itself so the two can be sorted and deduplicated together by
// github.com/xtgo/set, which operates on sort.Interface.
type hashedAlts struct {
	hashes []uint64
	nodes  []Node
}

func (h hashedAlts) Len() int      { return len(h.hashes) }
func (h hashedAlts) Less(i, j int) bool { return h.hashes[i] < h.hashes[j] }
func (h hashedAlts) Swap(i, j int) {
	h.hashes[i], h.hashes[j] = h.hashes[j], h.hashes[i]
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
}

// dedupAlts removes structurally-duplicate alternatives and folds the
// result back into a Node: zero survivors is None, one is returned
// unwrapped, two or more stay a Union.
func dedupAlts(alts []Node) Node {
	switch len(alts) {
	case 0:
		return NoneType{}
	case 1:
		return alts[0]
	}

	h := hashedAlts{hashes: make([]uint64, len(alts)), nodes: make([]Node, len(alts))}
	for i, a := range alts {
		h.hashes[i] = a.Hash()
		h.nodes[i] = a
	}
	sort.Sort(h)
	n := xtgoset.Uniq(h)

	if n == 1 {
		return h.nodes[0]
	}
	return Union{Alts: h.nodes[:n]}
}
