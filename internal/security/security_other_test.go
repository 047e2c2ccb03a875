//go:build !windows

package security

import (
	"errors"
	"testing"
)

func TestSecurityCenterUnsupported(t *testing.T) {
	if _, err := SecurityCenterProducts(); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("err = %v, want ErrNotSupported", err)
	}
}
