package genbuild

import (
	"pgregory.net/rapid"

	"github.com/cottand/typegen/typeast"
)

func (b *Builder) buildList(module string, elem typeast.Node, minLen int) (typeast.GeneratorHandle, error) {
	eg, err := b.buildNode(module, elem)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	return lift(rapid.Custom(func(t *rapid.T) any {
		n := rapid.IntRange(minLen, minLen+8).Draw(t, "list_len")
		out := make([]any, n)
		for i := range out {
			out[i] = eg.Draw(t, "list_elem")
		}
		return out
	}), "list"), nil
}

// buildImproperList handles the four ImproperList families (§3): Nonempty
// sets a floor of one head element, MaybeProper lets the tail resolve to a
// genuinely proper (nil-terminated) list instead of a Tail-typed value.
func (b *Builder) buildImproperList(module string, n typeast.ImproperList) (typeast.GeneratorHandle, error) {
	hg, err := b.buildNode(module, n.Head)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	tg, err := b.buildNode(module, n.Tail)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	minLen := 0
	if n.Nonempty {
		minLen = 1
	}
	return lift(rapid.Custom(func(t *rapid.T) any {
		length := rapid.IntRange(minLen, minLen+6).Draw(t, "improper_len")
		elems := make([]any, length)
		for i := range elems {
			elems[i] = hg.Draw(t, "improper_head")
		}
		if n.MaybeProper && rapid.Bool().Draw(t, "improper_proper_choice") {
			return elems
		}
		return typeast.ConsValue{Elems: elems, Tail: tg.Draw(t, "improper_tail")}
	}), "improper_list"), nil
}

func (b *Builder) buildTuple(module string, n typeast.Tuple) (typeast.GeneratorHandle, error) {
	gens := make([]typeast.GeneratorHandle, len(n.Elems))
	for i, e := range n.Elems {
		g, err := b.buildNode(module, e)
		if err != nil {
			return typeast.GeneratorHandle{}, err
		}
		gens[i] = g
	}
	return lift(rapid.Custom(func(t *rapid.T) any {
		out := make(typeast.TupleValue, len(gens))
		for i, g := range gens {
			out[i] = g.Draw(t, "tuple_elem")
		}
		return out
	}), "tuple"), nil
}

func (b *Builder) buildTupleAny(module string) (typeast.GeneratorHandle, error) {
	elemGen := anyGen()
	return lift(rapid.Custom(func(t *rapid.T) any {
		n := rapid.IntRange(0, 4).Draw(t, "tuple_any_arity")
		out := make(typeast.TupleValue, n)
		for i := range out {
			out[i] = elemGen.Draw(t, "tuple_any_elem")
		}
		return out
	}), "tuple_any"), nil
}

// buildMap builds one sub-generator per field and left-merges them into a
// single map[any]any draw, per §4.2's map_of(gen(K), gen(V), min_length)
// composition: each field draws its own variable-length run of key/value
// pairs (at least one for Required, zero or more for Optional — the same
// min_length=1-vs-unbounded distinction §4.2 draws for lists), and fields
// are merged in declaration order with an earlier field's entry winning any
// key collision against a later one, so an earlier Required field's
// presence invariant can never be clobbered by a later field drawing the
// same key.
func (b *Builder) buildMap(module string, n typeast.Map) (typeast.GeneratorHandle, error) {
	type fieldGen struct {
		minLen int
		key    typeast.GeneratorHandle
		value  typeast.GeneratorHandle
	}
	fields := make([]fieldGen, len(n.Fields))
	for i, f := range n.Fields {
		kg, err := b.buildNode(module, f.Key)
		if err != nil {
			return typeast.GeneratorHandle{}, err
		}
		vg, err := b.buildNode(module, f.Value)
		if err != nil {
			return typeast.GeneratorHandle{}, err
		}
		minLen := 0
		if f.Kind == typeast.Required {
			minLen = 1
		}
		fields[i] = fieldGen{minLen: minLen, key: kg, value: vg}
	}
	return lift(rapid.Custom(func(t *rapid.T) any {
		m := make(map[any]any, len(fields))
		for _, f := range fields {
			count := rapid.IntRange(f.minLen, f.minLen+3).Draw(t, "map_field_len")
			for i := 0; i < count; i++ {
				setMapKeyIfAbsent(m, f.key.Draw(t, "map_key"), f.value.Draw(t, "map_value"))
			}
		}
		return m
	}), "map"), nil
}

// buildIolist/buildIodata hand-build the self-referential alias shapes
// rather than going through Expand+buildUnionRecursion, since their
// self-reference is not anchored to any registry definition name for the
// normalizer's classifyRecursion to detect.
func (b *Builder) buildIolist(module string) (typeast.GeneratorHandle, error) {
	byteOrBinary := oneOfHandles([]typeast.GeneratorHandle{rangeGen(0, 255), binaryGen()})
	tail := oneOfHandles([]typeast.GeneratorHandle{binaryGen(), constantGen[any]([]any{})})
	var draw func(t *rapid.T, depth int) any
	draw = func(t *rapid.T, depth int) any {
		n := rapid.IntRange(0, 6).Draw(t, "iolist_len")
		out := make([]any, n)
		for i := range out {
			if depth > 0 && rapid.Bool().Draw(t, "iolist_nest") {
				out[i] = draw(t, depth-1)
				continue
			}
			out[i] = byteOrBinary.Draw(t, "iolist_item")
		}
		if rapid.Bool().Draw(t, "iolist_proper") {
			return out
		}
		return typeast.ConsValue{Elems: out, Tail: tail.Draw(t, "iolist_tail")}
	}
	return lift(rapid.Custom(func(t *rapid.T) any {
		return draw(t, rapid.IntRange(0, DefaultTreeDepth).Draw(t, "iolist_depth"))
	}), "iolist"), nil
}

func (b *Builder) buildIodata(module string) (typeast.GeneratorHandle, error) {
	iolist, err := b.buildIolist(module)
	if err != nil {
		return typeast.GeneratorHandle{}, err
	}
	return oneOfHandles([]typeast.GeneratorHandle{binaryGen(), iolist}), nil
}
