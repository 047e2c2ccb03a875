package health

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/breeze-rmm/trendprobe/internal/facts"
	"github.com/breeze-rmm/trendprobe/internal/product"
)

var signed = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

func healthy() facts.FactSet {
	return facts.FactSet{
		Variant:            product.WFBS,
		Installed:          true,
		ServiceRunning:     true,
		Version:            "14.0.1234",
		RealtimeProtection: true,
		SignatureDate:      signed,
		SignatureAgeDays:   1,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*facts.FactSet)
		want   Verdict
	}{
		{"healthy", func(*facts.FactSet) {}, OK},
		{"not installed", func(f *facts.FactSet) { *f = facts.Default() }, NotInstalled},
		{"service stopped", func(f *facts.FactSet) { f.ServiceRunning = false }, ServiceStopped},
		{"stale signatures", func(f *facts.FactSet) { f.SignatureAgeDays = 10 }, OutdatedSignatures},
		{"at threshold is fresh", func(f *facts.FactSet) { f.SignatureAgeDays = 7 }, OK},
		{"just over threshold", func(f *facts.FactSet) { f.SignatureAgeDays = 7.1 }, OutdatedSignatures},
		{"realtime off", func(f *facts.FactSet) { f.RealtimeProtection = false }, RealtimeDisabled},
		{"stale beats realtime", func(f *facts.FactSet) {
			f.SignatureAgeDays = 30
			f.RealtimeProtection = false
		}, OutdatedSignatures},
		{"stopped beats everything", func(f *facts.FactSet) {
			f.ServiceRunning = false
			f.SignatureAgeDays = 30
			f.RealtimeProtection = false
		}, ServiceStopped},
		{"unknown age is not stale", func(f *facts.FactSet) {
			f.SignatureDate = time.Time{}
			f.SignatureAgeDays = 0
		}, OK},
		{"unknown version without bucket", func(f *facts.FactSet) { f.Version = facts.UnknownVersion }, OK},
	}

	c := Classifier{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthy()
			tt.mutate(&f)
			if got := c.Classify(f); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyThreshold(t *testing.T) {
	f := healthy()
	f.SignatureAgeDays = 2.5

	if got := (Classifier{ThresholdDays: 2}).Classify(f); got != OutdatedSignatures {
		t.Fatalf("threshold 2: got %s", got)
	}
	if got := (Classifier{ThresholdDays: 3}).Classify(f); got != OK {
		t.Fatalf("threshold 3: got %s", got)
	}
}

func TestClassifyWarningBucket(t *testing.T) {
	c := Classifier{WarningBucket: true, MinimumVersion: "14.0"}

	tests := []struct {
		name   string
		mutate func(*facts.FactSet)
		want   Verdict
	}{
		{"current version", func(*facts.FactSet) {}, OK},
		{"unknown version", func(f *facts.FactSet) { f.Version = facts.UnknownVersion }, Warning},
		{"no signature date", func(f *facts.FactSet) { f.SignatureDate = time.Time{} }, Warning},
		{"old version", func(f *facts.FactSet) { f.Version = "12.0.1" }, Warning},
		{"garbled version", func(f *facts.FactSet) { f.Version = "build-abc" }, Warning},
		{"realtime still ranks above warning", func(f *facts.FactSet) {
			f.Version = facts.UnknownVersion
			f.RealtimeProtection = false
		}, RealtimeDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthy()
			tt.mutate(&f)
			if got := c.Classify(f); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}

	// Without a minimum only unknown facts warn.
	f := healthy()
	f.Version = "1.0"
	if got := (Classifier{WarningBucket: true}).Classify(f); got != OK {
		t.Fatalf("no minimum: got %s", got)
	}
}

func TestWorse(t *testing.T) {
	order := []Verdict{OK, Warning, RealtimeDisabled, OutdatedSignatures, ServiceStopped, NotInstalled, Error}
	for i := 1; i < len(order); i++ {
		if !Worse(order[i], order[i-1]) {
			t.Errorf("%s should be worse than %s", order[i], order[i-1])
		}
		if Worse(order[i-1], order[i]) {
			t.Errorf("%s should not be worse than %s", order[i-1], order[i])
		}
	}
}

func genFacts() gopter.Gen {
	return gopter.CombineGens(
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Float64Range(0, 400),
		gen.Bool(),
	).Map(func(v []interface{}) facts.FactSet {
		f := healthy()
		f.Installed = v[0].(bool)
		f.ServiceRunning = v[1].(bool)
		f.RealtimeProtection = v[2].(bool)
		f.SignatureAgeDays = v[3].(float64)
		if !v[4].(bool) {
			f.SignatureDate = time.Time{}
		}
		return f
	})
}

func TestClassifyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	c := Classifier{ThresholdDays: 7, WarningBucket: true}

	properties.Property("uninstalled is always NOT_INSTALLED", prop.ForAll(
		func(f facts.FactSet) bool {
			f.Installed = false
			return c.Classify(f) == NotInstalled
		},
		genFacts(),
	))

	properties.Property("stopped service is always SERVICE_STOPPED", prop.ForAll(
		func(f facts.FactSet) bool {
			f.Installed = true
			f.ServiceRunning = false
			return c.Classify(f) == ServiceStopped
		},
		genFacts(),
	))

	properties.Property("stale signatures win over disabled realtime", prop.ForAll(
		func(f facts.FactSet, age float64) bool {
			f.Installed = true
			f.ServiceRunning = true
			f.RealtimeProtection = false
			f.SignatureDate = signed
			f.SignatureAgeDays = age
			return c.Classify(f) == OutdatedSignatures
		},
		genFacts(),
		gen.Float64Range(7.1, 400),
	))

	properties.Property("verdict is never ERROR", prop.ForAll(
		func(f facts.FactSet) bool {
			return c.Classify(f) != Error
		},
		genFacts(),
	))

	properties.TestingRun(t)
}
