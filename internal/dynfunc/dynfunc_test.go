package dynfunc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const isIntegerSrc = `
package main

func IsInteger(v interface{}) bool {
	_, ok := v.(int64)
	return ok
}
`

func TestLoadInterpretsAndInvokesFunction(t *testing.T) {
	callable, err := Load(isIntegerSrc, "IsInteger")
	require.NoError(t, err)

	ok, err := callable([]any{int64(5)})
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	ok, err = callable([]any{"not an int"})
	require.NoError(t, err)
	assert.Equal(t, false, ok)
}

const divSrc = `
package main

import "errors"

func Div(a, b int) (int, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}
`

func TestLoadUnwrapsResultErrorPair(t *testing.T) {
	callable, err := Load(divSrc, "Div")
	require.NoError(t, err)

	result, err := callable([]any{10, 2})
	require.NoError(t, err)
	assert.Equal(t, 5, result)

	_, err = callable([]any{10, 0})
	assert.Error(t, err)
}

func TestLoadFailsOnUnknownFunction(t *testing.T) {
	_, err := Load(isIntegerSrc, "NoSuchFunc")
	assert.Error(t, err)
}

func TestLoadFailsOnBadSource(t *testing.T) {
	_, err := Load("this is not go source {{{", "X")
	assert.Error(t, err)
}

func TestLoadFailsWhenSymbolIsNotAFunction(t *testing.T) {
	const src = `
package main

var NotAFunc = 42
`
	_, err := Load(src, "NotAFunc")
	assert.Error(t, err)
}

func TestWrapRejectsWrongArgumentCount(t *testing.T) {
	callable, err := Load(isIntegerSrc, "IsInteger")
	require.NoError(t, err)

	_, err = callable([]any{1, 2})
	assert.Error(t, err)
}
