// Package report renders the one-line JSON status record.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/breeze-rmm/trendprobe/internal/facts"
	"github.com/breeze-rmm/trendprobe/internal/health"
	"github.com/breeze-rmm/trendprobe/internal/sigdate"
)

// Unknown fills last_update when there is no signature date.
const Unknown = "Unknown"

// SignatureAge encodes with one decimal place; negative means unknown and
// encodes as -1.
type SignatureAge float64

// NoSignature is the signature_age value when the age is unknown.
const NoSignature SignatureAge = -1

func (a SignatureAge) MarshalJSON() ([]byte, error) {
	if a < 0 {
		return []byte("-1"), nil
	}
	return []byte(strconv.FormatFloat(float64(a), 'f', 1, 64)), nil
}

// Flag encodes a bool as 0 or 1.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// Record is the status line. Field order is the output key order.
type Record struct {
	HealthStatus       health.Verdict `json:"health_status"`
	Version            string         `json:"version"`
	Installed          Flag           `json:"installed"`
	ServiceRunning     Flag           `json:"service_running"`
	RealtimeProtection Flag           `json:"realtime_protection"`
	SignatureAge       SignatureAge   `json:"signature_age"`
	LastUpdate         string         `json:"last_update"`
	// ProductType is set only by the multi-variant profile.
	ProductType string `json:"product_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FromFacts builds the record for a classified run.
func FromFacts(f facts.FactSet, verdict health.Verdict, multiVariant bool) Record {
	rec := Record{
		HealthStatus:       verdict,
		Version:            f.Version,
		Installed:          Flag(f.Installed),
		ServiceRunning:     Flag(f.ServiceRunning),
		RealtimeProtection: Flag(f.RealtimeProtection),
		SignatureAge:       NoSignature,
		LastUpdate:         Unknown,
	}
	if rec.Version == "" {
		rec.Version = facts.UnknownVersion
	}
	if age, ok := f.SignatureAge(); ok {
		rec.SignatureAge = SignatureAge(age)
		rec.LastUpdate = sigdate.FormatDate(f.SignatureDate)
	}
	if multiVariant {
		rec.ProductType = f.Variant.ProductType()
	}
	return rec
}

// ErrorRecord is the record written when the run failed outright. All
// facts are reset to their defaults.
func ErrorRecord(msg string, multiVariant bool) Record {
	rec := FromFacts(facts.Default(), health.Error, multiVariant)
	rec.Error = msg
	if rec.Error == "" {
		rec.Error = "unknown failure"
	}
	return rec
}

// Write encodes rec as one compact JSON line.
func Write(w io.Writer, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}
