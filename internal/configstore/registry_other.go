//go:build !windows

package configstore

// System is unavailable off Windows; use a snapshot source instead.
type System struct{}

// NewSystem always fails on this platform.
func NewSystem() (*System, error) {
	return nil, ErrNotSupported
}

// Exists implements Source.
func (*System) Exists(path string) bool {
	return PathExists(path)
}

// Read implements Source.
func (*System) Read(path, key string) (Value, bool) {
	return Value{}, false
}
