//go:build !windows

package svcquery

// GetStatus is unavailable off Windows; the snapshot source stands in there.
func GetStatus(name string) (State, error) {
	return StateError, ErrNotSupported
}
