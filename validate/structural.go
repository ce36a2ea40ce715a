package validate

import "github.com/cottand/typegen/typeast"

func (b *Builder) buildList(module string, elem typeast.Node, minLen int) (typeast.ValidatorHandle, error) {
	elemPred, err := b.buildNode(module, elem)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	return pred(func(v any) bool {
		l, ok := v.([]any)
		if !ok || len(l) < minLen {
			return false
		}
		for _, e := range l {
			if !elemPred.Check(e) {
				return false
			}
		}
		return true
	}), nil
}

// buildImproperList implements §4.3's recursive head/tail walk: a proper
// (nil-terminated or, for MaybeProper, []any) sequence is accepted only
// when MaybeProper is set; otherwise every element must satisfy Head and
// the terminating Tail must satisfy the Tail predicate.
func (b *Builder) buildImproperList(module string, n typeast.ImproperList) (typeast.ValidatorHandle, error) {
	headPred, err := b.buildNode(module, n.Head)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	tailPred, err := b.buildNode(module, n.Tail)
	if err != nil {
		return typeast.ValidatorHandle{}, err
	}
	minLen := 0
	if n.Nonempty {
		minLen = 1
	}
	return pred(func(v any) bool {
		switch t := v.(type) {
		case []any:
			if !n.MaybeProper {
				return false
			}
			if len(t) < minLen {
				return false
			}
			for _, e := range t {
				if !headPred.Check(e) {
					return false
				}
			}
			return true
		case typeast.ConsValue:
			if len(t.Elems) < minLen {
				return false
			}
			for _, e := range t.Elems {
				if !headPred.Check(e) {
					return false
				}
			}
			return tailPred.Check(t.Tail)
		default:
			return false
		}
	}), nil
}

func (b *Builder) buildTuple(module string, n typeast.Tuple) (typeast.ValidatorHandle, error) {
	preds := make([]typeast.ValidatorHandle, len(n.Elems))
	for i, e := range n.Elems {
		p, err := b.buildNode(module, e)
		if err != nil {
			return typeast.ValidatorHandle{}, err
		}
		preds[i] = p
	}
	return pred(func(v any) bool {
		t, ok := v.(typeast.TupleValue)
		if !ok || len(t) != len(preds) {
			return false
		}
		for i, p := range preds {
			if !p.Check(t[i]) {
				return false
			}
		}
		return true
	}), nil
}

// mapFieldPred is one MapField's key/value predicates, plus whether the key
// is a literal atom (making the field "exact" per §4.3) and whether it is
// Required.
type mapFieldPred struct {
	literalKey string
	isLiteral  bool
	required   bool
	keyPred    typeast.ValidatorHandle
	valPred    typeast.ValidatorHandle
}

// buildMap implements §4.3's Map validation: exact (literal-key required)
// fields are checked by key presence and then removed from the candidate
// set; the remaining (open-key) fields describe a union of (key, value)
// shapes over what's left — each Required field needs at least one entry
// that matches its own key and value predicates together, and every
// remaining entry must in turn satisfy at least one field's pair (not
// necessarily the same one a Required field already matched), so two
// general fields with overlapping key predicates but different value
// predicates can coexist instead of the presence of one field's entry
// always failing the other's scan.
func (b *Builder) buildMap(module string, n typeast.Map) (typeast.ValidatorHandle, error) {
	fields := make([]mapFieldPred, len(n.Fields))
	for i, f := range n.Fields {
		kp, err := b.buildNode(module, f.Key)
		if err != nil {
			return typeast.ValidatorHandle{}, err
		}
		vp, err := b.buildNode(module, f.Value)
		if err != nil {
			return typeast.ValidatorHandle{}, err
		}
		fp := mapFieldPred{required: f.Kind == typeast.Required, keyPred: kp, valPred: vp}
		if lit, ok := f.Key.(typeast.AtomLit); ok && f.Kind == typeast.Required {
			fp.isLiteral = true
			fp.literalKey = lit.Value
		}
		fields[i] = fp
	}

	var exact, general []mapFieldPred
	for _, f := range fields {
		if f.isLiteral {
			exact = append(exact, f)
		} else {
			general = append(general, f)
		}
	}

	return pred(func(v any) bool {
		m, ok := v.(map[any]any)
		if !ok {
			return false
		}
		remaining := make(map[any]any, len(m))
		for k, val := range m {
			remaining[k] = val
		}
		for _, f := range exact {
			val, present := remaining[typeast.Atom(f.literalKey)]
			if !present || !f.valPred.Check(val) {
				return false
			}
			delete(remaining, typeast.Atom(f.literalKey))
		}
		for _, f := range general {
			if !f.required {
				continue
			}
			if !anyEntryMatchesField(remaining, f) {
				return false
			}
		}
		if len(general) == 0 {
			return len(remaining) == 0
		}
		return allClaimedByAnyGeneralField(remaining, general)
	}), nil
}

// anyEntryMatchesField reports whether some entry in remaining satisfies
// both f's key and value predicates together.
func anyEntryMatchesField(remaining map[any]any, f mapFieldPred) bool {
	for k, val := range remaining {
		if f.keyPred.Check(k) && f.valPred.Check(val) {
			return true
		}
	}
	return false
}

// allClaimedByAnyGeneralField checks every entry still in remaining
// satisfies at least one general field's (key, value) pair, so an entry
// whose key matches one field but whose value only matches another
// overlapping-domain field is still accepted, and an entry matching no
// declared field at all correctly fails membership.
func allClaimedByAnyGeneralField(remaining map[any]any, general []mapFieldPred) bool {
	for k, val := range remaining {
		claimed := false
		for _, f := range general {
			if f.keyPred.Check(k) && f.valPred.Check(val) {
				claimed = true
				break
			}
		}
		if !claimed {
			return false
		}
	}
	return true
}
