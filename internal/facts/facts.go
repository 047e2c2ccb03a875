// Package facts extracts a normalized observation record for an installed
// product variant from the host's configuration store and service manager.
package facts

//go:generate mockgen -destination=mock_source_test.go -package=facts github.com/breeze-rmm/trendprobe/internal/configstore Source
//go:generate mockgen -destination=mock_probe_test.go -package=facts github.com/breeze-rmm/trendprobe/internal/svcquery Probe

import (
	"time"

	"github.com/breeze-rmm/trendprobe/internal/product"
)

// UnknownVersion is the version reported when no chain entry yields one.
const UnknownVersion = "Unknown"

// FactSet is the normalized observation record for one run. It is built
// once by the extractor and only read afterwards.
type FactSet struct {
	Variant            product.Variant
	Installed          bool
	ServiceRunning     bool
	Version            string
	RealtimeProtection bool
	// SignatureDate is the zero time when no signature source parsed.
	SignatureDate    time.Time
	SignatureAgeDays float64
}

// Default returns the record for an uninstalled product.
func Default() FactSet {
	return FactSet{Variant: product.None, Version: UnknownVersion}
}

// HasSignature reports whether a signature date was found.
func (f FactSet) HasSignature() bool {
	return !f.SignatureDate.IsZero()
}

// SignatureAge returns the signature age in days when known.
func (f FactSet) SignatureAge() (float64, bool) {
	if !f.HasSignature() {
		return 0, false
	}
	return f.SignatureAgeDays, true
}

// builder accumulates facts; each field can be set once, later attempts
// are ignored.
type builder struct {
	fs           FactSet
	versionSet   bool
	realtimeSet  bool
	signatureSet bool
}

func newBuilder(v product.Variant) *builder {
	fs := Default()
	fs.Variant = v
	fs.Installed = true
	return &builder{fs: fs}
}

func (b *builder) version(v string) {
	if b.versionSet {
		return
	}
	b.fs.Version = v
	b.versionSet = true
}

func (b *builder) realtime(on bool) {
	if b.realtimeSet {
		return
	}
	b.fs.RealtimeProtection = on
	b.realtimeSet = true
}

func (b *builder) signature(date time.Time, ageDays float64) {
	if b.signatureSet {
		return
	}
	b.fs.SignatureDate = date
	b.fs.SignatureAgeDays = ageDays
	b.signatureSet = true
}

func (b *builder) serviceRunning(running bool) {
	b.fs.ServiceRunning = running
}

// build returns a copy, so later builder calls cannot reach the result.
func (b *builder) build() FactSet {
	return b.fs
}
