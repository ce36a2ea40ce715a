// Package dynfunc loads a Go function from source text at runtime using
// traefik/yaegi, the same interpreter the teacher repo's end-to-end tests
// use to execute generated Go ASTs. It exists so speccheck.Checker can be
// exercised against a function defined as a string (tests, the CLI's
// "check" command, demos) without shelling out to `go build`.
package dynfunc

import (
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/cottand/typegen/speccheck"
)

// Load interprets src (a complete Go source file, package main or
// otherwise) and returns the exported function named fn as a
// speccheck.Callable, converting the typegen value representation
// (typeast.Atom, typeast.TupleValue, plain slices/maps) to and from the
// reflect.Value shapes the interpreted function's signature expects.
func Load(src, fn string) (speccheck.Callable, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("dynfunc: registering stdlib symbols: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("dynfunc: evaluating source: %w", err)
	}
	v, err := i.Eval(fn)
	if err != nil {
		return nil, fmt.Errorf("dynfunc: looking up %q: %w", fn, err)
	}
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("dynfunc: %q is a %s, not a function", fn, v.Kind())
	}
	return wrap(v), nil
}

// wrap adapts a reflect.Value function to speccheck.Callable. A later
// return-value mismatch is the validator's job to catch; wrap only handles
// the generic plumbing of building reflect.Value arguments and unwrapping a
// single result (or an (result, error) pair, the common Go convention).
func wrap(fn reflect.Value) speccheck.Callable {
	t := fn.Type()
	return func(args []any) (any, error) {
		if len(args) != t.NumIn() && !t.IsVariadic() {
			return nil, fmt.Errorf("dynfunc: %d arguments supplied, function wants %d", len(args), t.NumIn())
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			rv, err := toReflectArg(a, t, i)
			if err != nil {
				return nil, err
			}
			in[i] = rv
		}
		out := fn.Call(in)
		return unwrapResults(out)
	}
}

func toReflectArg(a any, t reflect.Type, i int) (reflect.Value, error) {
	want := t.In(i)
	if t.IsVariadic() && i >= t.NumIn()-1 {
		want = t.In(t.NumIn() - 1).Elem()
	}
	v := reflect.ValueOf(a)
	if !v.IsValid() {
		return reflect.Zero(want), nil
	}
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	if v.Type().ConvertibleTo(want) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("dynfunc: argument %d of type %s is not assignable to %s", i, v.Type(), want)
}

func unwrapResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errType) && !out[0].IsNil() {
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if last.Type().Implements(errType) && !last.IsNil() {
			return nil, last.Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()
