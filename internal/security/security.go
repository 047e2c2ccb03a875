// Package security reads the antivirus registrations Windows Security
// Center keeps, for cross-checking what the probe read from the registry.
package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/breeze-rmm/trendprobe/internal/logging"
)

var log = logging.L("security")

// ErrNotSupported is returned when Security Center is unavailable, either
// on a non-Windows host or on a server SKU.
var ErrNotSupported = errors.New("security: operation not supported on this platform")

// AVProduct is one AntiVirusProduct registration.
type AVProduct struct {
	DisplayName         string
	Provider            string
	ProductState        int
	ProductStateHex     string
	RealTimeProtection  bool
	DefinitionsUpToDate bool
	PathToSignedProduct string
	Timestamp           string
}

func newAVProduct(displayName string, state int, exePath, timestamp string) AVProduct {
	realTime, defsCurrent := parseWSCProductState(state)
	return AVProduct{
		DisplayName:         strings.TrimSpace(displayName),
		Provider:            providerFromName(displayName),
		ProductState:        state,
		ProductStateHex:     fmt.Sprintf("0x%06X", state),
		RealTimeProtection:  realTime,
		DefinitionsUpToDate: defsCurrent,
		PathToSignedProduct: strings.TrimSpace(exePath),
		Timestamp:           strings.TrimSpace(timestamp),
	}
}

// TrendMicro filters products down to Trend Micro registrations.
func TrendMicro(products []AVProduct) []AVProduct {
	var out []AVProduct
	for _, p := range products {
		if p.Provider == "trend_micro" {
			out = append(out, p)
		}
	}
	return out
}

// Product state is a 3-byte value: provider, scanner state, signature state.
func parseWSCProductState(state int) (realTimeProtection bool, definitionsUpToDate bool) {
	hexState := fmt.Sprintf("%06x", state)
	if len(hexState) != 6 {
		return false, false
	}

	stateByte := hexState[2:4]
	signatureByte := hexState[4:6]

	realTimeProtection = stateByte == "10" || stateByte == "11"
	definitionsUpToDate = signatureByte == "00"
	return realTimeProtection, definitionsUpToDate
}

func providerFromName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(lower, "trend micro"), strings.Contains(lower, "officescan"),
		strings.Contains(lower, "worry-free"), strings.Contains(lower, "apex one"):
		return "trend_micro"
	case strings.Contains(lower, "bitdefender"):
		return "bitdefender"
	case strings.Contains(lower, "defender"):
		return "windows_defender"
	case strings.Contains(lower, "sophos"):
		return "sophos"
	case strings.Contains(lower, "sentinel"):
		return "sentinelone"
	case strings.Contains(lower, "crowdstrike"):
		return "crowdstrike"
	case strings.Contains(lower, "eset"):
		return "eset"
	default:
		return "other"
	}
}
