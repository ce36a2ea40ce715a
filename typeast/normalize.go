package typeast

import (
	"log/slog"

	hashset "github.com/hashicorp/go-set/v3"

	"github.com/cottand/typegen/internal/log"
)

var normLog = log.DefaultLogger.With("section", "typeast.normalize")

// RecursionKind classifies how a normalized type recurses into itself, per
// §4.1's "Recursion detection".
type RecursionKind uint8

const (
	RecursionNone RecursionKind = iota
	RecursionUnion
	RecursionNonUnion
)

// Recursion records the decomposition a recursive type was classified
// into, so genbuild/validate can each build their own depth-bounded
// unfolding from the same analysis (§8's "validators share the same
// normalized AST the generator consumes").
type Recursion struct {
	Kind     RecursionKind
	SelfName string

	// Union case: alternatives with no self-reference, and alternatives
	// that do contain one (still in their original, unsubstituted form —
	// substitution toward the previous depth happens at build time).
	Leaves []Node
	Nodes  []Node

	// Non-union case: Base is the pruned, self-reference-free AST used as
	// the recursion's depth-0 value; Original is the untouched body, whose
	// self-reference is substituted toward the previous depth at build
	// time (§4.2 "Substitution for tree growth").
	Base     Node
	Original Node
}

// Normalized is the result of running the Normalizer over one
// (module, name, args) reference: a canonical AST plus, if the type
// recurses, the decomposition the builders need to bound it.
type Normalized struct {
	Root      Node
	Recursion *Recursion
}

// Normalizer is the entry point of §4.1: it owns no mutable state beyond
// the Registry it normalizes against.
type Normalizer struct {
	Registry *Registry
}

// NewNormalizer builds a Normalizer over reg.
func NewNormalizer(reg *Registry) *Normalizer {
	return &Normalizer{Registry: reg}
}

// Normalize resolves name/len(args) in module, substitutes args for the
// definition's parameters, inlines every reachable user-type reference
// except self-references, flattens unions, and classifies recursion.
func (nz *Normalizer) Normalize(module, name string, args []Node) (*Normalized, error) {
	def, err := nz.Registry.Lookup(module, name, len(args))
	if err != nil {
		return nil, err
	}

	body := substitute(def.Body, bindParams(def.Params, args))
	if free := freeVars(body); len(free) > 0 {
		return nil, NewError(ArityMismatch, "type %q has unbound type variable(s) %v after substitution", name, free)
	}

	stack := hashset.New[string](4)
	stack.Insert(name)
	body, err = nz.inline(module, body, name, stack)
	if err != nil {
		return nil, err
	}

	body = flattenUnions(body)

	return classifyRecursion(name, body)
}

// inline implements §4.1's "User-type inlining": every UserRef(n, args)
// is replaced by the (recursively substituted and inlined) body of n's
// definition, except when n is the definition currently being built
// (rootName) — that UserRef is retained as the self-reference marker — or
// when n is already on the inlining stack, which would otherwise inline
// forever for mutually-recursive definitions (an extension beyond the
// single-name self-reference spec.md describes; see DESIGN.md).
func (nz *Normalizer) inline(module string, n Node, rootName string, stack *hashset.Set[string]) (Node, error) {
	switch t := n.(type) {
	case UserRef:
		args, err := nz.inlineSlice(module, t.Args, rootName, stack)
		if err != nil {
			return nil, err
		}
		if t.Name == rootName || stack.Contains(t.Name) {
			return UserRef{Name: t.Name, Args: args}, nil
		}
		def, err := nz.Registry.Lookup(module, t.Name, len(args))
		if err != nil {
			return nil, err
		}
		inlined := substitute(def.Body, bindParams(def.Params, args))
		stack.Insert(t.Name)
		result, err := nz.inline(module, inlined, rootName, stack)
		stack.Remove(t.Name)
		return result, err
	case Union:
		alts, err := nz.inlineSlice(module, t.Alts, rootName, stack)
		if err != nil {
			return nil, err
		}
		return Union{Alts: alts}, nil
	case List:
		elem, err := nz.inline(module, t.Elem, rootName, stack)
		if err != nil {
			return nil, err
		}
		return List{Elem: elem}, nil
	case NonemptyList:
		elem, err := nz.inline(module, t.Elem, rootName, stack)
		if err != nil {
			return nil, err
		}
		return NonemptyList{Elem: elem}, nil
	case ImproperList:
		head, err := nz.inline(module, t.Head, rootName, stack)
		if err != nil {
			return nil, err
		}
		tail, err := nz.inline(module, t.Tail, rootName, stack)
		if err != nil {
			return nil, err
		}
		return ImproperList{Head: head, Tail: tail, Nonempty: t.Nonempty, MaybeProper: t.MaybeProper}, nil
	case Tuple:
		elems, err := nz.inlineSlice(module, t.Elems, rootName, stack)
		if err != nil {
			return nil, err
		}
		return Tuple{Elems: elems}, nil
	case Map:
		fields := make([]MapField, len(t.Fields))
		for i, f := range t.Fields {
			k, err := nz.inline(module, f.Key, rootName, stack)
			if err != nil {
				return nil, err
			}
			v, err := nz.inline(module, f.Value, rootName, stack)
			if err != nil {
				return nil, err
			}
			fields[i] = MapField{Kind: f.Kind, Key: k, Value: v}
		}
		return Map{Fields: fields}, nil
	default:
		// Primitives, RemoteRef (resolved lazily by the builders, §4.1),
		// Opaque and Var (Var should not remain at this stage) are leaves.
		return n, nil
	}
}

func (nz *Normalizer) inlineSlice(module string, nodes []Node, rootName string, stack *hashset.Set[string]) ([]Node, error) {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		r, err := nz.inline(module, n, rootName, stack)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func bindParams(params []string, args []Node) map[string]Node {
	m := make(map[string]Node, len(params))
	for i, p := range params {
		if i < len(args) {
			m[p] = args[i]
		}
	}
	return m
}

// substitute implements §4.1's "Parameter substitution": every Var(name)
// reachable in n is replaced by bind[name], left untouched if absent.
func substitute(n Node, bind map[string]Node) Node {
	switch t := n.(type) {
	case Var:
		if v, ok := bind[t.Name]; ok {
			return v
		}
		return t
	case List:
		return List{Elem: substitute(t.Elem, bind)}
	case NonemptyList:
		return NonemptyList{Elem: substitute(t.Elem, bind)}
	case ImproperList:
		return ImproperList{
			Head:        substitute(t.Head, bind),
			Tail:        substitute(t.Tail, bind),
			Nonempty:    t.Nonempty,
			MaybeProper: t.MaybeProper,
		}
	case Tuple:
		elems := make([]Node, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = substitute(e, bind)
		}
		return Tuple{Elems: elems}
	case Map:
		fields := make([]MapField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = MapField{Kind: f.Kind, Key: substitute(f.Key, bind), Value: substitute(f.Value, bind)}
		}
		return Map{Fields: fields}
	case Union:
		alts := make([]Node, len(t.Alts))
		for i, a := range t.Alts {
			alts[i] = substitute(a, bind)
		}
		return Union{Alts: alts}
	case UserRef:
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, bind)
		}
		return UserRef{Name: t.Name, Args: args}
	case RemoteRef:
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, bind)
		}
		return RemoteRef{Module: t.Module, Name: t.Name, Args: args}
	default:
		return n
	}
}

// NormalizeNode runs the inline/flatten/classify stages of Normalize over an
// already-substituted node that has no enclosing TypeDef of its own — used
// by the Spec Checker to turn a raw overload argument/return type into a
// buildable AST (§4.4). Top-level recursion is only detected when n is
// itself a bare UserRef, in which case this delegates to the registry-backed
// Normalize using that UserRef's own name as the recursion root; any other
// shape is treated as already fully inlined once every reachable UserRef is
// expanded, since there is no enclosing definition name to classify
// recursion against.
func (nz *Normalizer) NormalizeNode(module string, n Node) (*Normalized, error) {
	if ref, ok := n.(UserRef); ok {
		return nz.Normalize(module, ref.Name, ref.Args)
	}
	stack := hashset.New[string](4)
	body, err := nz.inline(module, n, "$spec", stack)
	if err != nil {
		return nil, err
	}
	body = flattenUnions(body)
	return &Normalized{Root: body}, nil
}

// SubstituteVars replaces every Var(name) reachable in n per bind,
// mirroring Normalize's own parameter substitution step. The Spec Checker
// uses this to apply a spec's declared type-variable bounds (§4.4) before
// handing each overload's argument/return types to from_type/
// validator_for_type.
func SubstituteVars(n Node, bind map[string]Node) Node {
	return substitute(n, bind)
}

func freeVars(n Node) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case Var:
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		case List:
			walk(t.Elem)
		case NonemptyList:
			walk(t.Elem)
		case ImproperList:
			walk(t.Head)
			walk(t.Tail)
		case Tuple:
			for _, e := range t.Elems {
				walk(e)
			}
		case Map:
			for _, f := range t.Fields {
				walk(f.Key)
				walk(f.Value)
			}
		case Union:
			for _, a := range t.Alts {
				walk(a)
			}
		case UserRef:
			for _, a := range t.Args {
				walk(a)
			}
		case RemoteRef:
			for _, a := range t.Args {
				walk(a)
			}
		}
	}
	walk(n)
	return out
}

// containsSelfRef reports whether n contains a UserRef named name anywhere
// reachable without crossing a RemoteRef or Opaque boundary.
func containsSelfRef(name string, n Node) bool {
	switch t := n.(type) {
	case UserRef:
		if t.Name == name {
			return true
		}
		for _, a := range t.Args {
			if containsSelfRef(name, a) {
				return true
			}
		}
		return false
	case List:
		return containsSelfRef(name, t.Elem)
	case NonemptyList:
		return containsSelfRef(name, t.Elem)
	case ImproperList:
		return containsSelfRef(name, t.Head) || containsSelfRef(name, t.Tail)
	case Tuple:
		for _, e := range t.Elems {
			if containsSelfRef(name, e) {
				return true
			}
		}
		return false
	case Map:
		for _, f := range t.Fields {
			if containsSelfRef(name, f.Key) || containsSelfRef(name, f.Value) {
				return true
			}
		}
		return false
	case Union:
		for _, a := range t.Alts {
			if containsSelfRef(name, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isBareSelfRef(name string, n Node) bool {
	r, ok := n.(UserRef)
	return ok && r.Name == name
}

// pruneSelfRef implements the "self-reference outside any union" branch of
// §4.1's Recursion detection: it rewrites n into a self-reference-free AST
// by cutting every recursive hole it knows how to cut (List's sole
// recursive element, Map's optional recursive fields). ok is false when n
// recurses through a shape with no known base case, e.g. a bare
// UserRef(name) that is not the sole element of a List, or a Tuple/
// required Map field/NonemptyList with no way to terminate.
func pruneSelfRef(name string, n Node) (out Node, ok bool) {
	if !containsSelfRef(name, n) {
		return n, true
	}
	switch t := n.(type) {
	case UserRef:
		return nil, false
	case List:
		if isBareSelfRef(name, t.Elem) {
			return NilType{}, true
		}
		elem, ok := pruneSelfRef(name, t.Elem)
		if !ok {
			return nil, false
		}
		return List{Elem: elem}, true
	case NonemptyList:
		if isBareSelfRef(name, t.Elem) {
			return nil, false
		}
		elem, ok := pruneSelfRef(name, t.Elem)
		if !ok {
			return nil, false
		}
		return NonemptyList{Elem: elem}, true
	case ImproperList:
		head, ok1 := pruneSelfRef(name, t.Head)
		tail, ok2 := pruneSelfRef(name, t.Tail)
		if !ok1 || !ok2 {
			return nil, false
		}
		return ImproperList{Head: head, Tail: tail, Nonempty: t.Nonempty, MaybeProper: t.MaybeProper}, true
	case Tuple:
		elems := make([]Node, len(t.Elems))
		for i, e := range t.Elems {
			pruned, ok := pruneSelfRef(name, e)
			if !ok {
				return nil, false
			}
			elems[i] = pruned
		}
		return Tuple{Elems: elems}, true
	case Map:
		fields := make([]MapField, 0, len(t.Fields))
		for _, f := range t.Fields {
			refs := containsSelfRef(name, f.Key) || containsSelfRef(name, f.Value)
			if !refs {
				fields = append(fields, f)
				continue
			}
			if f.Kind == Optional {
				continue // dropped per §4.1
			}
			return nil, false // required field with no base case
		}
		return Map{Fields: fields}, true
	case Union:
		var alts []Node
		for _, a := range t.Alts {
			if !containsSelfRef(name, a) {
				alts = append(alts, a)
				continue
			}
			pruned, ok := pruneSelfRef(name, a)
			if ok {
				alts = append(alts, pruned)
			}
		}
		if len(alts) == 0 {
			return nil, false
		}
		if len(alts) == 1 {
			return alts[0], true
		}
		return Union{Alts: alts}, true
	default:
		return n, true
	}
}

// classifyRecursion implements the rest of §4.1's Recursion detection,
// assuming body has already had parameters substituted and user-refs
// (other than self-references to name) inlined.
func classifyRecursion(name string, body Node) (*Normalized, error) {
	if !containsSelfRef(name, body) {
		return &Normalized{Root: body}, nil
	}

	if u, ok := body.(Union); ok {
		var leaves, nodes []Node
		for _, alt := range u.Alts {
			if containsSelfRef(name, alt) {
				nodes = append(nodes, alt)
			} else {
				leaves = append(leaves, alt)
			}
		}
		if len(leaves) == 0 {
			normLog.Warn("recursive union has no base case", slog.String("type", name))
			return nil, NewError(InfiniteType, "type %q recurses through every union alternative with no base case", name)
		}
		normLog.Debug("classified union recursion", slog.String("type", name), slog.Int("leaves", len(leaves)), slog.Int("nodes", len(nodes)))
		return &Normalized{
			Root:      body,
			Recursion: &Recursion{Kind: RecursionUnion, SelfName: name, Leaves: leaves, Nodes: nodes},
		}, nil
	}

	base, ok := pruneSelfRef(name, body)
	if !ok {
		normLog.Warn("non-union recursion has no base case", slog.String("type", name))
		return nil, NewError(InfiniteType, "type %q recurses with no base case to bottom out on", name)
	}
	normLog.Debug("classified non-union recursion", slog.String("type", name))
	return &Normalized{
		Root:      body,
		Recursion: &Recursion{Kind: RecursionNonUnion, SelfName: name, Base: base, Original: body},
	}, nil
}

// Substitute rewrites every occurrence of UserRef(selfName, _) in n with
// leaf, following §4.1/§4.2's "Substitution for tree growth". It is
// exported so genbuild and validate can both use it to build the `grow`
// step of their respective tree(base, grow) / Y-combinator encodings from
// the same Recursion analysis.
func Substitute(n Node, selfName string, leaf Node) Node {
	switch t := n.(type) {
	case UserRef:
		if t.Name == selfName {
			return leaf
		}
		args := make([]Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, selfName, leaf)
		}
		return UserRef{Name: t.Name, Args: args}
	case List:
		return List{Elem: Substitute(t.Elem, selfName, leaf)}
	case NonemptyList:
		return NonemptyList{Elem: Substitute(t.Elem, selfName, leaf)}
	case ImproperList:
		return ImproperList{
			Head:        Substitute(t.Head, selfName, leaf),
			Tail:        Substitute(t.Tail, selfName, leaf),
			Nonempty:    t.Nonempty,
			MaybeProper: t.MaybeProper,
		}
	case Tuple:
		elems := make([]Node, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Substitute(e, selfName, leaf)
		}
		return Tuple{Elems: elems}
	case Map:
		fields := make([]MapField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = MapField{Kind: f.Kind, Key: Substitute(f.Key, selfName, leaf), Value: Substitute(f.Value, selfName, leaf)}
		}
		return Map{Fields: fields}
	case Union:
		alts := make([]Node, len(t.Alts))
		for i, a := range t.Alts {
			alts[i] = Substitute(a, selfName, leaf)
		}
		return Union{Alts: alts}
	default:
		// RemoteRef self-recursion is resolved through the registry
		// instead of local substitution, per §4.2.
		return n
	}
}
