// Package configstore reads the hierarchical configuration store (the
// Windows registry) and checks install paths, returning optional values.
package configstore

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/breeze-rmm/trendprobe/internal/logging"
)

var log = logging.L("configstore")

// ErrNotSupported is returned when the system store is unavailable on this platform.
var ErrNotSupported = errors.New("configstore: registry not supported on this platform")

// Source is the read-only view of host configuration used by detection and
// extraction. A miss and a failed read look the same to callers.
type Source interface {
	// Exists reports whether a filesystem path is present.
	Exists(path string) bool
	// Read returns the value named key under the registry path.
	Read(path, key string) (Value, bool)
}

// Kind distinguishes string and integer registry data.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindInteger
)

// Value is a single registry datum.
type Value struct {
	kind Kind
	str  string
	num  uint64
}

// String wraps string data (REG_SZ, REG_EXPAND_SZ, joined REG_MULTI_SZ).
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Integer wraps integer data (REG_DWORD, REG_QWORD, 8-byte REG_BINARY).
func Integer(n uint64) Value {
	return Value{kind: KindInteger, num: n}
}

// Kind returns the data kind; KindNone for the zero Value.
func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns string data exactly as stored, without trimming. Integers
// render in decimal.
func (v Value) Raw() string {
	if v.kind == KindString {
		return v.str
	}
	return v.Text()
}

// Text returns the value as trimmed text. Integers render in decimal.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str)
	case KindInteger:
		return strconv.FormatUint(v.num, 10)
	default:
		return ""
	}
}

// Uint returns the value as an unsigned integer. Strings qualify when they
// hold only decimal digits.
func (v Value) Uint() (uint64, bool) {
	switch v.kind {
	case KindInteger:
		return v.num, true
	case KindString:
		n, err := strconv.ParseUint(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Join appends a relative subkey to a registry path.
func Join(path, sub string) string {
	sub = strings.Trim(sub, `\`)
	if sub == "" {
		return path
	}
	return strings.TrimRight(path, `\`) + `\` + sub
}

// PathExists reports whether a filesystem path is present. Stat failures
// other than absence are logged and treated as absent.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Debug("path check failed", logging.KeyPath, path, logging.KeyError, err)
	}
	return false
}
