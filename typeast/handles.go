package typeast

import "pgregory.net/rapid"

// GeneratorHandle is the opaque value produced by the Generator Builder
// (§3). It wraps a rapid.Generator[any] — the combinator library this
// implementation assumes per §6.4/§9 — so that typeast, genbuild and
// validate can all refer to "a generator" without genbuild importing
// typeast's consumers or vice versa.
type GeneratorHandle struct {
	gen *rapid.Generator[any]
}

// NewGeneratorHandle lifts a rapid generator of any into a GeneratorHandle.
// Only the genbuild package and test code that builds Opaque arguments
// should need to call this directly.
func NewGeneratorHandle(g *rapid.Generator[any]) GeneratorHandle {
	return GeneratorHandle{gen: g}
}

// Rapid exposes the underlying rapid.Generator[any] for composition inside
// genbuild's own combinators (tuple, list, tree, ...).
func (h GeneratorHandle) Rapid() *rapid.Generator[any] {
	return h.gen
}

// Valid reports whether the handle actually wraps a generator; the zero
// value is invalid and must never be drawn from.
func (h GeneratorHandle) Valid() bool {
	return h.gen != nil
}

// Draw pulls one value from the generator using an in-flight rapid draw
// session (used when this generator is nested inside another one).
func (h GeneratorHandle) Draw(t *rapid.T, label string) any {
	return h.gen.Draw(t, label)
}

// Example draws a single, reproducible value using the given seed, without
// requiring an enclosing rapid.Check session. This is the primitive both
// the CLI's "generate" command and speccheck's bounded campaign use to
// pull draws outside of `go test` (§5: "draws are independent").
func (h GeneratorHandle) Example(seed uint64) any {
	return h.gen.Example(int(seed))
}

// ValidatorHandle is the opaque, total predicate produced by the Validator
// Builder (§3). It is guaranteed to return true/false for any input and
// never panic — see NewValidatorHandle.
type ValidatorHandle struct {
	pred func(any) bool
}

// NewValidatorHandle wraps pred so that any panic raised while deciding
// membership is caught and turned into a `false` result, honouring the
// Validator totality invariant (§3, P3) even if a predicate built from a
// malformed Opaque value misbehaves.
func NewValidatorHandle(pred func(any) bool) ValidatorHandle {
	return ValidatorHandle{pred: func(v any) (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		return pred(v)
	}}
}

// Check decides whether v inhabits the type this validator was built from.
func (h ValidatorHandle) Check(v any) bool {
	if h.pred == nil {
		return false
	}
	return h.pred(v)
}

// Valid reports whether the handle actually wraps a predicate.
func (h ValidatorHandle) Valid() bool {
	return h.pred != nil
}
