package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/typegen/typeast"
)

const sampleRegistryYAML = `
modules:
  demo:
    protocol: false
    types:
      - name: t
        params: []
        body:
          tuple: [atom, int]
      - name: dict
        params: [k, v]
        body:
          list:
            tuple: [{user_type: k}, {user_type: v}]
    specs:
      - name: is_integer
        arity: 1
        arg_types: [any]
        return_type: bool
  proto_mod:
    protocol: true
    types: []
    specs: []
`

func writeSampleRegistry(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistryYAML), 0o644))
	return path
}

func TestLoadFileRegistryParsesTypesSpecsAndProtocol(t *testing.T) {
	path := writeSampleRegistry(t)
	reg, err := LoadFileRegistry(path)
	require.NoError(t, err)

	defs, err := reg.LookupTypes("demo")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "t", defs[0].Name)
	assert.Equal(t, typeast.Tuple{Elems: []typeast.Node{typeast.AtomType{}, typeast.IntType{}}}, defs[0].Body)

	specs, err := reg.LookupSpecs("demo", "is_integer", 1)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, typeast.BoolType{}, specs[0].Return)
	assert.Equal(t, []typeast.Node{typeast.Any{}}, specs[0].ArgTypes)

	isProto, err := reg.IsProtocol("proto_mod")
	require.NoError(t, err)
	assert.True(t, isProto)

	isProto, err = reg.IsProtocol("demo")
	require.NoError(t, err)
	assert.False(t, isProto)
}

func TestLoadFileRegistryUnknownModuleFails(t *testing.T) {
	path := writeSampleRegistry(t)
	reg, err := LoadFileRegistry(path)
	require.NoError(t, err)

	_, err = reg.LookupTypes("nope")
	assert.Error(t, err)
}

func TestLoadFileRegistryMissingFileFails(t *testing.T) {
	_, err := LoadFileRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseArgUserTypeWithParams(t *testing.T) {
	path := writeSampleRegistry(t)
	reg, err := LoadFileRegistry(path)
	require.NoError(t, err)

	defs, err := reg.LookupTypes("demo")
	require.NoError(t, err)
	var dict typeast.TypeDef
	for _, d := range defs {
		if d.Name == "dict" {
			dict = d
		}
	}
	require.Equal(t, "dict", dict.Name)
	assert.Equal(t, []string{"k", "v"}, dict.Params)
	list, ok := dict.Body.(typeast.List)
	require.True(t, ok)
	tup, ok := list.Elem.(typeast.Tuple)
	require.True(t, ok)
	require.Len(t, tup.Elems, 2)
	assert.Equal(t, typeast.UserRef{Name: "k"}, tup.Elems[0])
	assert.Equal(t, typeast.UserRef{Name: "v"}, tup.Elems[1])
}
