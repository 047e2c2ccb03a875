package facts

import (
	"fmt"
)

// Lookup is one attempt in a fallback chain. It reports ok=false for a
// miss, a failed read, or a value that does not parse.
type Lookup[T any] func() (T, bool)

// FirstOf tries lookups in order and returns the first success.
func FirstOf[T any](lookups ...Lookup[T]) (T, bool) {
	for _, l := range lookups {
		if v, ok := l(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Guard turns a panic inside l into a miss so one broken read cannot abort
// the chain.
func Guard[T any](name string, l Lookup[T]) Lookup[T] {
	return func() (v T, ok bool) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("lookup panicked", "lookup", name, "error", fmt.Sprint(r))
				var zero T
				v, ok = zero, false
			}
		}()
		return l()
	}
}
