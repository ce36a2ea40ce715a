package typeast

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/immutable"
)

// TypeDef is a single named, parameterized type definition (§3).
type TypeDef struct {
	Name   string
	Params []string
	Body   Node
}

func (d TypeDef) key() string {
	return fmt.Sprintf("%s/%d", d.Name, len(d.Params))
}

// Overload is one (arg_types, return_type) signature returned by
// lookup_specs for a given (module, name, arity) (§6.2/§4.4). TypeVars
// carries the bound for each declared type variable so the Spec Checker
// can substitute it before delegating to the Normalizer (§4.4's
// "Bounded-variable handling").
type Overload struct {
	ArgTypes  []Node
	Return    Node
	TypeVars  map[string]Node
}

// RegistryCollaborator is the external collaborator of §6.2: "a single
// operation: lookup_types(module) -> [TypeDef]". Implementations raise
// UnknownModule when the module cannot be located.
type RegistryCollaborator interface {
	LookupTypes(module string) ([]TypeDef, error)
}

// SpecCollaborator is §6.2's lookup_specs collaborator.
type SpecCollaborator interface {
	LookupSpecs(module, name string, arity int) ([]Overload, error)
}

// ProtocolCollaborator is §6.3's is_protocol collaborator.
type ProtocolCollaborator interface {
	IsProtocol(module string) (bool, error)
}

// stringHasher is the immutable.Hasher[string] the Registry uses to key
// its per-module TypeDef tables.
type stringHasher struct{}

func (stringHasher) Hash(value string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(value); i++ {
		h ^= uint32(value[i])
		h *= 16777619
	}
	return h
}

func (stringHasher) Equal(a, b string) bool { return a == b }

// Registry memoizes RegistryCollaborator.LookupTypes per module, honouring
// §3's invariant that a TypeRegistry is "populated lazily... immutable
// after populated" and §5's requirement that concurrent first-access
// attempts "either serialize or produce equivalent results": population
// is guarded by a per-module sync.Once, and the populated table itself is
// a frozen immutable.Map so later readers never observe a half-built map.
type Registry struct {
	collab RegistryCollaborator

	mu       sync.Mutex
	once     map[string]*sync.Once
	tables   map[string]*immutable.Map[string, TypeDef]
	tableErr map[string]error
}

// NewRegistry wraps a RegistryCollaborator with memoized, concurrency-safe
// population.
func NewRegistry(collab RegistryCollaborator) *Registry {
	return &Registry{
		collab:   collab,
		once:     make(map[string]*sync.Once),
		tables:   make(map[string]*immutable.Map[string, TypeDef]),
		tableErr: make(map[string]error),
	}
}

func (r *Registry) onceFor(module string) *sync.Once {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.once[module]
	if !ok {
		o = &sync.Once{}
		r.once[module] = o
	}
	return o
}

func (r *Registry) populate(module string) {
	defs, err := r.collab.LookupTypes(module)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.tableErr[module] = WrapError(UnknownModule, err, "looking up types for module %q", module)
		return
	}
	table := immutable.NewMap[string, TypeDef](stringHasher{})
	for _, d := range defs {
		table = table.Set(d.key(), d)
	}
	r.tables[module] = table
}

func (r *Registry) tableFor(module string) (*immutable.Map[string, TypeDef], error) {
	r.onceFor(module).Do(func() { r.populate(module) })
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.tableErr[module]; err != nil {
		return nil, err
	}
	return r.tables[module], nil
}

// Lookup finds the TypeDef named name/arity in module. It fails with
// UnknownType when no definition with that name exists at all, and with
// WrongArity when definitions exist under that name but none has the
// requested arity (§4.1 "Definition selection").
func (r *Registry) Lookup(module, name string, arity int) (TypeDef, error) {
	table, err := r.tableFor(module)
	if err != nil {
		return TypeDef{}, err
	}
	if table == nil {
		return TypeDef{}, NewError(UnknownModule, "module %q has no populated type table", module)
	}
	if d, ok := table.Get(fmt.Sprintf("%s/%d", name, arity)); ok {
		return d, nil
	}
	if anyNameMatches(table, name) {
		return TypeDef{}, NewError(WrongArity, "type %q exists in module %q but not with arity %d", name, module, arity)
	}
	return TypeDef{}, NewError(UnknownType, "no type named %q in module %q", name, module)
}

func anyNameMatches(table *immutable.Map[string, TypeDef], name string) bool {
	it := table.Iterator()
	for !it.Done() {
		_, d, _ := it.Next()
		if d.Name == name {
			return true
		}
	}
	return false
}
