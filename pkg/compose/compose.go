// Package compose aggregates same-named callbacks into a single callable.
package compose

// Fn is the callable shape used throughout the construction pipeline.
// Callbacks receive the raw argument list of the event or operation that
// triggered them and may return nil to contribute no result.
type Fn func(args ...any) any

// Compose reduces a list of callbacks to one callable.
//
// An empty list yields nil unless force is set, in which case a no-op
// callable is returned. A single callback is returned as-is, not wrapped.
// Two or more callbacks yield a new callable that invokes them in order and
// collects the non-nil results: exactly one non-nil result is returned bare,
// several are returned as []any, none yields nil.
func Compose(list []Fn, force bool) Fn {
	switch len(list) {
	case 0:
		if force {
			return func(args ...any) any { return nil }
		}
		return nil
	case 1:
		return list[0]
	}

	// Copy so later appends to the caller's slice cannot change the composite.
	fns := make([]Fn, len(list))
	copy(fns, list)

	return func(args ...any) any {
		var results []any
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if r := fn(args...); r != nil {
				results = append(results, r)
			}
		}
		switch len(results) {
		case 0:
			return nil
		case 1:
			return results[0]
		}
		return results
	}
}
