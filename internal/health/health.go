// Package health maps extracted facts to a single verdict.
package health

import (
	"github.com/hashicorp/go-version"

	"github.com/breeze-rmm/trendprobe/internal/facts"
	"github.com/breeze-rmm/trendprobe/internal/logging"
)

var log = logging.L("health")

// Verdict is the health_status value of a status record.
type Verdict string

const (
	OK                 Verdict = "OK"
	Warning            Verdict = "WARNING"
	RealtimeDisabled   Verdict = "REALTIME_DISABLED"
	OutdatedSignatures Verdict = "OUTDATED_SIGNATURES"
	ServiceStopped     Verdict = "SERVICE_STOPPED"
	NotInstalled       Verdict = "NOT_INSTALLED"
	Error              Verdict = "ERROR"
)

// DefaultThresholdDays is the signature age above which signatures count as
// outdated.
const DefaultThresholdDays = 7

// Classifier holds the tunables for Classify. The zero value uses the
// default threshold with the WARNING bucket off.
type Classifier struct {
	ThresholdDays float64
	// WarningBucket enables WARNING for an unknown version, a missing
	// signature date, or a version below MinimumVersion.
	WarningBucket  bool
	MinimumVersion string
}

// Classify returns the first matching verdict in severity order.
func (c Classifier) Classify(f facts.FactSet) Verdict {
	threshold := c.ThresholdDays
	if threshold <= 0 {
		threshold = DefaultThresholdDays
	}

	switch {
	case !f.Installed:
		return NotInstalled
	case !f.ServiceRunning:
		return ServiceStopped
	}
	if age, ok := f.SignatureAge(); ok && age > threshold {
		return OutdatedSignatures
	}
	if !f.RealtimeProtection {
		return RealtimeDisabled
	}
	if c.WarningBucket && c.degraded(f) {
		return Warning
	}
	return OK
}

func (c Classifier) degraded(f facts.FactSet) bool {
	if f.Version == facts.UnknownVersion || !f.HasSignature() {
		return true
	}
	if c.MinimumVersion == "" {
		return false
	}

	minimum, err := version.NewVersion(c.MinimumVersion)
	if err != nil {
		log.Warn("minimum version unparseable, skipping check", "minimum", c.MinimumVersion, logging.KeyError, err)
		return false
	}
	installed, err := version.NewVersion(f.Version)
	if err != nil {
		log.Debug("installed version unparseable", "version", f.Version, logging.KeyError, err)
		return true
	}
	return installed.LessThan(minimum)
}

// Worse returns true if a is more severe than b.
func Worse(a, b Verdict) bool {
	return rank(a) > rank(b)
}

func rank(v Verdict) int {
	switch v {
	case OK:
		return 0
	case Warning:
		return 1
	case RealtimeDisabled:
		return 2
	case OutdatedSignatures:
		return 3
	case ServiceStopped:
		return 4
	case NotInstalled:
		return 5
	case Error:
		return 6
	default:
		return 0
	}
}
