package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cottand/typegen/typeast"
)

// fileRegistry is a demo RegistryCollaborator/SpecCollaborator/
// ProtocolCollaborator (§6.2/§6.3) backed by a single YAML document,
// grounded on the teacher's use of gopkg.in/yaml.v3 for its own project
// metadata files (ile/ metadata loading). Real deployments are expected to
// supply their own collaborator (reflecting a compiled artifact, a
// database, etc.); this one exists so the CLI has something concrete to
// drive end to end.
type fileRegistry struct {
	Modules map[string]moduleDoc `yaml:"modules"`
}

type moduleDoc struct {
	Protocol bool       `yaml:"protocol"`
	Types    []typeDoc  `yaml:"types"`
	Specs    []specDoc  `yaml:"specs"`
}

type typeDoc struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Body   any      `yaml:"body"`
}

type specDoc struct {
	Name      string         `yaml:"name"`
	Arity     int            `yaml:"arity"`
	ArgTypes  []any          `yaml:"arg_types"`
	Return    any            `yaml:"return_type"`
	TypeVars  map[string]any `yaml:"type_vars"`
}

// LoadFileRegistry parses a YAML registry document from path.
func LoadFileRegistry(path string) (*fileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	var doc fileRegistry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing registry file: %w", err)
	}
	return &doc, nil
}

func (r *fileRegistry) LookupTypes(module string) ([]typeast.TypeDef, error) {
	mod, ok := r.Modules[module]
	if !ok {
		return nil, fmt.Errorf("no module %q in registry file", module)
	}
	defs := make([]typeast.TypeDef, 0, len(mod.Types))
	for _, td := range mod.Types {
		arg, err := parseArg(td.Body)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", td.Name, err)
		}
		body, err := typeast.RewriteArg(arg)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", td.Name, err)
		}
		defs = append(defs, typeast.TypeDef{Name: td.Name, Params: td.Params, Body: body})
	}
	return defs, nil
}

func (r *fileRegistry) LookupSpecs(module, name string, arity int) ([]typeast.Overload, error) {
	mod, ok := r.Modules[module]
	if !ok {
		return nil, fmt.Errorf("no module %q in registry file", module)
	}
	var out []typeast.Overload
	for _, sd := range mod.Specs {
		if sd.Name != name || sd.Arity != arity {
			continue
		}
		argTypes := make([]typeast.Node, 0, len(sd.ArgTypes))
		for _, raw := range sd.ArgTypes {
			a, err := parseArg(raw)
			if err != nil {
				return nil, fmt.Errorf("spec %s/%d: %w", name, arity, err)
			}
			n, err := typeast.RewriteArg(a)
			if err != nil {
				return nil, fmt.Errorf("spec %s/%d: %w", name, arity, err)
			}
			argTypes = append(argTypes, n)
		}
		retArg, err := parseArg(sd.Return)
		if err != nil {
			return nil, fmt.Errorf("spec %s/%d return type: %w", name, arity, err)
		}
		ret, err := typeast.RewriteArg(retArg)
		if err != nil {
			return nil, fmt.Errorf("spec %s/%d return type: %w", name, arity, err)
		}
		vars := make(map[string]typeast.Node, len(sd.TypeVars))
		for k, raw := range sd.TypeVars {
			a, err := parseArg(raw)
			if err != nil {
				return nil, fmt.Errorf("spec %s/%d type var %q: %w", name, arity, k, err)
			}
			n, err := typeast.RewriteArg(a)
			if err != nil {
				return nil, fmt.Errorf("spec %s/%d type var %q: %w", name, arity, k, err)
			}
			vars[k] = n
		}
		out = append(out, typeast.Overload{ArgTypes: argTypes, Return: ret, TypeVars: vars})
	}
	return out, nil
}

func (r *fileRegistry) IsProtocol(module string) (bool, error) {
	mod, ok := r.Modules[module]
	if !ok {
		return false, fmt.Errorf("no module %q in registry file", module)
	}
	return mod.Protocol, nil
}

// parseArg decodes one YAML node into a typeast.Arg, mirroring §6.1's
// "caller language": a plain string always names a built-in type, and a
// single-key map selects one of the richer shapes (a user-type reference
// needs the {user_type: ...} form).
func parseArg(raw any) (typeast.Arg, error) {
	switch v := raw.(type) {
	case string:
		return typeast.Builtin(v), nil
	case map[string]any:
		return parseArgMap(v)
	default:
		return typeast.Arg{}, fmt.Errorf("unrecognised type document node %#v", raw)
	}
}

func parseArgMap(m map[string]any) (typeast.Arg, error) {
	if v, ok := m["builtin"]; ok {
		return typeast.Builtin(fmt.Sprint(v)), nil
	}
	if v, ok := m["atom"]; ok {
		return typeast.AtomLiteral(fmt.Sprint(v)), nil
	}
	if v, ok := m["int"]; ok {
		return typeast.IntLiteral(toInt64(v)), nil
	}
	if v, ok := m["range"]; ok {
		bounds, ok := v.([]any)
		if !ok || len(bounds) != 2 {
			return typeast.Arg{}, fmt.Errorf("range expects [lo, hi]")
		}
		return typeast.IntRange(toInt64(bounds[0]), toInt64(bounds[1])), nil
	}
	if v, ok := m["list"]; ok {
		return parseUnaryContainer(typeast.ContainerList, v)
	}
	if v, ok := m["nonempty_list"]; ok {
		return parseUnaryContainer(typeast.ContainerNonemptyList, v)
	}
	if v, ok := m["tuple"]; ok {
		return parseListContainer(typeast.ContainerTuple, v)
	}
	if v, ok := m["union"]; ok {
		return parseListContainer(typeast.ContainerUnion, v)
	}
	for key, kind := range improperKinds {
		if v, ok := m[key]; ok {
			return parseImproperContainer(kind, v)
		}
	}
	if v, ok := m["map"]; ok {
		return parseMapContainer(v)
	}
	if v, ok := m["user_type"]; ok {
		return parseUserType(v)
	}
	if v, ok := m["remote_type"]; ok {
		return parseRemoteType(v)
	}
	return typeast.Arg{}, fmt.Errorf("unrecognised type document keys %v", keysOf(m))
}

var improperKinds = map[string]typeast.ContainerKind{
	"improper_list":                 typeast.ContainerImproperList,
	"nonempty_improper_list":        typeast.ContainerNonemptyImproperList,
	"maybe_improper_list":           typeast.ContainerMaybeImproperList,
	"nonempty_maybe_improper_list":  typeast.ContainerNonemptyMaybeImproperList,
}

func parseUnaryContainer(kind typeast.ContainerKind, raw any) (typeast.Arg, error) {
	sub, err := parseArg(raw)
	if err != nil {
		return typeast.Arg{}, err
	}
	return typeast.Container(kind, sub), nil
}

func parseListContainer(kind typeast.ContainerKind, raw any) (typeast.Arg, error) {
	items, ok := raw.([]any)
	if !ok {
		return typeast.Arg{}, fmt.Errorf("%s expects a list", kind)
	}
	subs := make([]typeast.Arg, len(items))
	for i, it := range items {
		a, err := parseArg(it)
		if err != nil {
			return typeast.Arg{}, err
		}
		subs[i] = a
	}
	return typeast.Container(kind, subs...), nil
}

func parseImproperContainer(kind typeast.ContainerKind, raw any) (typeast.Arg, error) {
	items, ok := raw.([]any)
	if !ok || len(items) != 2 {
		return typeast.Arg{}, fmt.Errorf("%s expects [head, tail]", kind)
	}
	head, err := parseArg(items[0])
	if err != nil {
		return typeast.Arg{}, err
	}
	tail, err := parseArg(items[1])
	if err != nil {
		return typeast.Arg{}, err
	}
	return typeast.Container(kind, head, tail), nil
}

func parseMapContainer(raw any) (typeast.Arg, error) {
	items, ok := raw.([]any)
	if !ok {
		return typeast.Arg{}, fmt.Errorf("map expects a list of fields")
	}
	fields := make([]typeast.ArgMapField, len(items))
	for i, it := range items {
		fm, ok := it.(map[string]any)
		if !ok {
			return typeast.Arg{}, fmt.Errorf("map field %d is not a mapping", i)
		}
		k, err := parseArg(fm["key"])
		if err != nil {
			return typeast.Arg{}, fmt.Errorf("map field %d key: %w", i, err)
		}
		v, err := parseArg(fm["value"])
		if err != nil {
			return typeast.Arg{}, fmt.Errorf("map field %d value: %w", i, err)
		}
		optional, _ := fm["optional"].(bool)
		fields[i] = typeast.ArgMapField{Optional: optional, Key: k, Value: v}
	}
	return typeast.MapOf(fields...), nil
}

func parseUserType(raw any) (typeast.Arg, error) {
	switch v := raw.(type) {
	case string:
		return typeast.UserType(v), nil
	case map[string]any:
		name, _ := v["name"].(string)
		subs, err := parseArgList(v["args"])
		if err != nil {
			return typeast.Arg{}, err
		}
		return typeast.UserType(name, subs...), nil
	default:
		return typeast.Arg{}, fmt.Errorf("user_type expects a name or {name, args}")
	}
}

func parseRemoteType(raw any) (typeast.Arg, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return typeast.Arg{}, fmt.Errorf("remote_type expects {module, name, args?}")
	}
	module, _ := m["module"].(string)
	name, _ := m["name"].(string)
	subs, err := parseArgList(m["args"])
	if err != nil {
		return typeast.Arg{}, err
	}
	return typeast.RemoteType(module, name, subs...), nil
}

func parseArgList(raw any) ([]typeast.Arg, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of type arguments")
	}
	out := make([]typeast.Arg, len(items))
	for i, it := range items {
		a, err := parseArg(it)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
