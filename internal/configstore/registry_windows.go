//go:build windows

package configstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"

	"github.com/breeze-rmm/trendprobe/internal/logging"
)

// System reads the live registry and filesystem.
type System struct{}

// NewSystem returns the live host source.
func NewSystem() (*System, error) {
	return &System{}, nil
}

// Exists implements Source.
func (*System) Exists(path string) bool {
	return PathExists(path)
}

// Read implements Source. The key is opened without WOW64 redirection flags;
// callers name WOW6432Node explicitly.
func (*System) Read(path, key string) (Value, bool) {
	root, subPath, err := resolveHive(path)
	if err != nil {
		log.Debug("registry path rejected", logging.KeyPath, path, logging.KeyError, err)
		return Value{}, false
	}

	k, err := registry.OpenKey(root, subPath, registry.QUERY_VALUE)
	if err != nil {
		if !errors.Is(err, registry.ErrNotExist) {
			log.Debug("registry open failed", logging.KeyPath, path, logging.KeyError, err)
		}
		return Value{}, false
	}
	defer k.Close()

	return readValue(k, key)
}

func resolveHive(path string) (registry.Key, string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(path), "/", `\`)
	if normalized == "" {
		return 0, "", fmt.Errorf("empty registry path")
	}

	parts := strings.SplitN(normalized, `\`, 2)
	hive := strings.ToUpper(strings.TrimSpace(parts[0]))
	subPath := ""
	if len(parts) == 2 {
		subPath = strings.TrimSpace(parts[1])
	}

	switch hive {
	case "HKEY_LOCAL_MACHINE", "HKLM":
		return registry.LOCAL_MACHINE, subPath, nil
	case "HKEY_CURRENT_USER", "HKCU":
		return registry.CURRENT_USER, subPath, nil
	case "HKEY_USERS", "HKU":
		return registry.USERS, subPath, nil
	default:
		return 0, "", fmt.Errorf("unsupported registry hive: %s", hive)
	}
}

func readValue(k registry.Key, name string) (Value, bool) {
	if s, _, err := k.GetStringValue(name); err == nil {
		return String(s), true
	}
	if n, _, err := k.GetIntegerValue(name); err == nil {
		return Integer(n), true
	}
	if ss, _, err := k.GetStringsValue(name); err == nil {
		return String(strings.Join(ss, ";")), true
	}
	// Some agents store FILETIME stamps as raw little-endian bytes.
	if b, _, err := k.GetBinaryValue(name); err == nil && len(b) == 8 {
		return Integer(binary.LittleEndian.Uint64(b)), true
	}
	return Value{}, false
}
