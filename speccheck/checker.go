// Package speccheck implements the Spec Checker of §4.4: given a function's
// declared argument/return type signature, it builds an argument generator
// and a return-type validator per overload and drives a bounded randomized
// campaign against a caller-supplied callable.
package speccheck

import (
	"fmt"
	"log/slog"

	"github.com/cottand/typegen/genbuild"
	"github.com/cottand/typegen/internal/log"
	"github.com/cottand/typegen/typeast"
	"github.com/cottand/typegen/validate"
)

var checkLog = log.DefaultLogger.With("section", "speccheck")

// DefaultCampaignSize bounds how many argument tuples a single overload's
// property run draws before declaring success.
const DefaultCampaignSize = 100

// Callable is the thing being checked: a function taking one value per
// declared argument and returning either a result or an error. A non-nil
// err models a raised exception for the purposes of the NoReturn rule
// (§4.4): it is never itself a property failure.
type Callable func(args []any) (result any, err error)

// OverloadResult is one overload's {ok, meta} or {error, meta} (§4.4).
type OverloadResult struct {
	ArgTypes []string
	Return   string
	Ok       bool
	Message  string
	// Counterexample is populated when Ok is false because a drawn call's
	// return value failed the validator.
	Counterexample []any
	ReturnValue    any
}

// Result is the checker's aggregated outcome across every overload.
type Result struct {
	Ok        bool
	Overloads []OverloadResult
}

// Checker is the Spec Checker, built over the same Registry-backed
// genbuild/validate builders the rest of the module uses, plus the
// SpecCollaborator that supplies overload signatures.
type Checker struct {
	gen  *genbuild.Builder
	val  *validate.Builder
	spec typeast.SpecCollaborator
}

// NewChecker wires a Checker over reg/spec/protocol.
func NewChecker(reg *typeast.Registry, spec typeast.SpecCollaborator, protocol typeast.ProtocolCollaborator) *Checker {
	return &Checker{
		gen:  genbuild.NewBuilder(reg, protocol),
		val:  validate.NewBuilder(reg, protocol),
		spec: spec,
	}
}

// Validate is §6.1's validate(module, name, arity): it runs one bounded
// campaign per overload and aggregates the results.
func (c *Checker) Validate(module, name string, arity int, callable Callable) (Result, error) {
	overloads, err := c.spec.LookupSpecs(module, name, arity)
	if err != nil {
		return Result{}, typeast.WrapError(typeast.UnknownModule, err, "looking up specs for %s/%d in %q", name, arity, module)
	}
	if len(overloads) == 0 {
		return Result{}, typeast.NewError(typeast.MissingSpec, "no signatures found for %s/%d in module %q", name, arity, module)
	}

	results := make([]OverloadResult, len(overloads))
	allOk := true
	for i, ov := range overloads {
		r, err := c.checkOverload(module, ov, callable)
		if err != nil {
			return Result{}, err
		}
		results[i] = r
		allOk = allOk && r.Ok
	}
	return Result{Ok: allOk, Overloads: results}, nil
}

func (c *Checker) checkOverload(module string, ov typeast.Overload, callable Callable) (OverloadResult, error) {
	argTypes := substituteBounds(ov.ArgTypes, ov.TypeVars)
	retType := typeast.SubstituteVars(ov.Return, ov.TypeVars)

	argGens := make([]typeast.GeneratorHandle, len(argTypes))
	argLabels := make([]string, len(argTypes))
	for i, a := range argTypes {
		g, err := c.gen.FromNode(module, a)
		if err != nil {
			return OverloadResult{}, err
		}
		argGens[i] = g
		argLabels[i] = a.String()
	}

	retValidator, err := c.val.FromNode(module, retType)
	if err != nil {
		return OverloadResult{}, err
	}

	noReturn := containsNoneType(retType)

	res := OverloadResult{ArgTypes: argLabels, Return: retType.String(), Ok: true}

	for seed := uint64(0); seed < DefaultCampaignSize; seed++ {
		args := make([]any, len(argGens))
		for i, g := range argGens {
			args[i] = g.Example(seed + uint64(i)*7919)
		}

		ret, callErr := invoke(callable, args)
		if callErr != nil {
			// Exceptions are absorbed regardless of return shape: for
			// NoReturn specs this is the expected outcome (§4.4 rule a);
			// for ordinary specs it is the charitable-interpretation rule
			// ("an uncaught exception is ignored").
			continue
		}
		if noReturn {
			// Rule (b): a NoReturn-compatible spec never fails on a
			// successful return either — it is simply not exercised
			// further once it returns normally.
			continue
		}
		if !retValidator.Check(ret) {
			res.Ok = false
			res.Message = fmt.Sprintf("call with args %v returned %v, which does not inhabit %s", args, ret, retType.String())
			res.Counterexample = args
			res.ReturnValue = ret
			checkLog.Debug("counterexample found", slog.String("return_type", retType.String()), slog.Any("args", args))
			break
		}
	}
	return res, nil
}

// invoke runs callable, converting a panic into the same (nil, error) shape
// a returned error takes, so a callable written as an ordinary Go function
// (which signals failure by panicking, as Elixir's raise does) composes the
// same way a callable that returns an error does.
func invoke(callable Callable, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return callable(args)
}

func substituteBounds(nodes []typeast.Node, bind map[string]typeast.Node) []typeast.Node {
	out := make([]typeast.Node, len(nodes))
	for i, n := range nodes {
		out[i] = typeast.SubstituteVars(n, bind)
	}
	return out
}

// containsNoneType implements the "transitively contains NoReturn" check of
// §4.4's NoReturn rule over an already-inlined, flattened node.
func containsNoneType(n typeast.Node) bool {
	switch t := n.(type) {
	case typeast.NoneType:
		return true
	case typeast.List:
		return containsNoneType(t.Elem)
	case typeast.NonemptyList:
		return containsNoneType(t.Elem)
	case typeast.ImproperList:
		return containsNoneType(t.Head) || containsNoneType(t.Tail)
	case typeast.Tuple:
		for _, e := range t.Elems {
			if containsNoneType(e) {
				return true
			}
		}
		return false
	case typeast.Map:
		for _, f := range t.Fields {
			if containsNoneType(f.Key) || containsNoneType(f.Value) {
				return true
			}
		}
		return false
	case typeast.Union:
		for _, a := range t.Alts {
			if containsNoneType(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
