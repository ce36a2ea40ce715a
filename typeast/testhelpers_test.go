package typeast

// mapRegistry is a minimal in-memory RegistryCollaborator used across this
// package's tests, playing the role a real reflection-backed collaborator
// would play in production (§6.2).
type mapRegistry map[string][]TypeDef

func (m mapRegistry) LookupTypes(module string) ([]TypeDef, error) {
	defs, ok := m[module]
	if !ok {
		return nil, NewError(UnknownModule, "no such module %q", module)
	}
	return defs, nil
}

func def(name string, params []string, body Node) TypeDef {
	return TypeDef{Name: name, Params: params, Body: body}
}
