package validate

import "github.com/cottand/typegen/typeast"

// pred and always are the thin wrappers around typeast.NewValidatorHandle
// used throughout this package; always exists separately so Any/None read
// as their own named cases rather than `pred(func(any) bool)` boilerplate.
func pred(fn func(any) bool) typeast.ValidatorHandle {
	return typeast.NewValidatorHandle(fn)
}

func always(b bool) typeast.ValidatorHandle {
	return typeast.NewValidatorHandle(func(any) bool { return b })
}

func isAtom(v any) bool {
	_, ok := v.(typeast.Atom)
	return ok
}

// asInt accepts either the generator's native int64 representation or a
// plain Go int, so values built by hand (e.g. in tests) need not match the
// generator's exact numeric width.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func isInt(v any) bool {
	_, ok := asInt(v)
	return ok
}

func isBinary(v any) bool {
	_, ok := v.([]byte)
	return ok
}

func isEmptyList(v any) bool {
	l, ok := v.([]any)
	return ok && len(l) == 0
}

func isMap(v any) bool {
	_, ok := v.(map[any]any)
	return ok
}

func isTimeout(v any) bool {
	if a, ok := v.(typeast.Atom); ok {
		return a == "infinity"
	}
	i, ok := asInt(v)
	return ok && i >= 0
}

// isIolist implements §4.3's inductive predicate: [], any binary, or a list
// whose head is a byte, a binary or itself an iolist, and whose tail is an
// iolist (proper or not).
func isIolist(v any) bool {
	if isEmptyList(v) {
		return true
	}
	if isBinary(v) {
		return true
	}
	switch l := v.(type) {
	case []any:
		for _, h := range l {
			if !isIolistHead(h) {
				return false
			}
		}
		return true
	case typeast.ConsValue:
		for _, h := range l.Elems {
			if !isIolistHead(h) {
				return false
			}
		}
		return isIolist(l.Tail)
	default:
		return false
	}
}

func isIolistHead(v any) bool {
	if i, ok := asInt(v); ok {
		return i >= 0 && i <= 255
	}
	return isBinary(v) || isIolist(v)
}

func anyOf(preds []typeast.ValidatorHandle) typeast.ValidatorHandle {
	return pred(func(v any) bool {
		for _, p := range preds {
			if p.Check(v) {
				return true
			}
		}
		return false
	})
}
