//go:build !windows

package security

// SecurityCenterProducts returns unsupported on non-Windows hosts.
func SecurityCenterProducts() ([]AVProduct, error) {
	return nil, ErrNotSupported
}
