package speccheck

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/typegen/typeast"
)

type mapRegistry map[string][]typeast.TypeDef

func (m mapRegistry) LookupTypes(module string) ([]typeast.TypeDef, error) {
	defs, ok := m[module]
	if !ok {
		return nil, typeast.NewError(typeast.UnknownModule, "no such module %q", module)
	}
	return defs, nil
}

type specMap map[string][]typeast.Overload

func (s specMap) LookupSpecs(module, name string, arity int) ([]typeast.Overload, error) {
	key := fmt.Sprintf("%s:%s/%d", module, name, arity)
	ov, ok := s[key]
	if !ok {
		return nil, nil
	}
	return ov, nil
}

// TestValidateIsIntegerSpec covers §8 scenario 6: @spec is_integer(term) ::
// boolean, checked against a correctly-implemented callable, must report Ok.
func TestValidateIsIntegerSpec(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{})
	spec := specMap{"m:is_integer/1": {{
		ArgTypes: []typeast.Node{typeast.Any{}},
		Return:   typeast.BoolType{},
	}}}
	c := NewChecker(reg, spec, nil)

	isInteger := func(args []any) (any, error) {
		_, ok := args[0].(int64)
		if ok {
			return typeast.Atom("true"), nil
		}
		return typeast.Atom("false"), nil
	}

	res, err := c.Validate("m", "is_integer", 1, isInteger)
	require.NoError(t, err)
	assert.True(t, res.Ok)
	require.Len(t, res.Overloads, 1)
	assert.True(t, res.Overloads[0].Ok)
}

// TestValidateWrongReturnSpecFailsWithCounterexample covers §8 scenario 6's
// negative case: a spec claiming a boolean return, implemented by a
// callable that always returns something else, must be reported as
// failing with a counterexample.
func TestValidateWrongReturnSpecFailsWithCounterexample(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{})
	spec := specMap{"m:bad/1": {{
		ArgTypes: []typeast.Node{typeast.Any{}},
		Return:   typeast.BoolType{},
	}}}
	c := NewChecker(reg, spec, nil)

	alwaysWrong := func(args []any) (any, error) {
		return typeast.TupleValue{typeast.Atom("error"), typeast.Atom("nope")}, nil
	}

	res, err := c.Validate("m", "bad", 1, alwaysWrong)
	require.NoError(t, err)
	assert.False(t, res.Ok)
	require.Len(t, res.Overloads, 1)
	assert.False(t, res.Overloads[0].Ok)
	assert.NotEmpty(t, res.Overloads[0].Message)
	assert.NotNil(t, res.Overloads[0].ReturnValue)
}

// TestValidateNoReturnSpecIgnoresExceptions exercises §4.4 rule (a): a spec
// whose return type contains none() never fails — exceptions are always
// absorbed, and a successful return is not checked against the validator
// either.
func TestValidateNoReturnSpecIgnoresExceptions(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{})
	spec := specMap{"m:boom/1": {{
		ArgTypes: []typeast.Node{typeast.Any{}},
		Return:   typeast.NoneType{},
	}}}
	c := NewChecker(reg, spec, nil)

	alwaysPanics := func(args []any) (any, error) {
		panic("boom")
	}

	res, err := c.Validate("m", "boom", 1, alwaysPanics)
	require.NoError(t, err)
	assert.True(t, res.Ok)
}

// TestValidateAggregatesMultipleOverloads checks that a name/arity with
// several overloads (as an Elixir-style multi-clause @spec union produces)
// is only Ok overall when every overload's campaign succeeds.
func TestValidateAggregatesMultipleOverloads(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{})
	spec := specMap{"m:f/1": {
		{ArgTypes: []typeast.Node{typeast.RangeType{Lo: 0, Hi: 5}}, Return: typeast.BoolType{}},
		{ArgTypes: []typeast.Node{typeast.RangeType{Lo: 6, Hi: 10}}, Return: typeast.IntType{}},
	}}
	c := NewChecker(reg, spec, nil)

	f := func(args []any) (any, error) {
		n := args[0].(int64)
		if n <= 5 {
			return typeast.Atom("true"), nil
		}
		return n, nil
	}

	res, err := c.Validate("m", "f", 1, f)
	require.NoError(t, err)
	assert.True(t, res.Ok)
	require.Len(t, res.Overloads, 2)
}

func TestValidateMissingSpecFails(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{})
	spec := specMap{}
	c := NewChecker(reg, spec, nil)

	_, err := c.Validate("m", "nowhere", 1, func(args []any) (any, error) { return nil, nil })
	kind, ok := typeast.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, typeast.MissingSpec, kind)
}

// TestValidatePropagatesPanicAsException exercises invoke's panic-to-error
// conversion directly: a callable that panics behaves exactly like one that
// returns an error, from the campaign's point of view.
func TestValidatePropagatesPanicAsException(t *testing.T) {
	reg := typeast.NewRegistry(mapRegistry{})
	spec := specMap{"m:g/1": {{
		ArgTypes: []typeast.Node{typeast.Any{}},
		Return:   typeast.BoolType{},
	}}}
	c := NewChecker(reg, spec, nil)

	g := func(args []any) (any, error) {
		panic("always raises")
	}

	res, err := c.Validate("m", "g", 1, g)
	require.NoError(t, err)
	assert.True(t, res.Ok)
}
