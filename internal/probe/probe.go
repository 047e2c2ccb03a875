// Package probe runs one detect, extract, classify and report pass.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/breeze-rmm/trendprobe/internal/configstore"
	"github.com/breeze-rmm/trendprobe/internal/detect"
	"github.com/breeze-rmm/trendprobe/internal/facts"
	"github.com/breeze-rmm/trendprobe/internal/health"
	"github.com/breeze-rmm/trendprobe/internal/logging"
	"github.com/breeze-rmm/trendprobe/internal/product"
	"github.com/breeze-rmm/trendprobe/internal/report"
	"github.com/breeze-rmm/trendprobe/internal/svcquery"
)

var log = logging.L("probe")

// Runner holds the collaborators for a probe pass.
type Runner struct {
	Profile    product.Profile
	Classifier health.Classifier
	Source     configstore.Source
	Services   svcquery.Probe
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of Run.
type Result struct {
	Facts   facts.FactSet
	Verdict health.Verdict
	Record  report.Record
}

// Run produces a status record. It never fails: a panic anywhere in the
// pass yields the ERROR record.
func (r *Runner) Run() (res Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in probe run", logging.KeyError, rec)
			res = r.Fail(fmt.Errorf("probe: panic: %v", rec))
		}
	}()

	if r.Source == nil || r.Services == nil {
		return r.Fail(fmt.Errorf("probe: runner is missing a source or service probe"))
	}

	variant := detect.Detect(r.Profile.Definitions, r.Source.Exists)

	ex := &facts.Extractor{
		Source:   r.Source,
		Services: r.Services,
		Profile:  r.Profile,
		Now:      r.Now,
	}
	fs := ex.Extract(variant)
	verdict := r.Classifier.Classify(fs)

	level := slog.LevelInfo
	if health.Worse(verdict, health.Warning) {
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "probe run complete",
		logging.KeyVariant, variant.String(),
		"verdict", string(verdict),
		logging.KeyDurationMs, time.Since(start).Milliseconds())

	return Result{
		Facts:   fs,
		Verdict: verdict,
		Record:  report.FromFacts(fs, verdict, r.Profile.MultiVariant),
	}
}

// Fail returns the ERROR result for err.
func (r *Runner) Fail(err error) Result {
	return Failure(err, r.Profile.MultiVariant)
}

// Failure returns the ERROR result for err when no runner could be built.
func Failure(err error, multiVariant bool) Result {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	log.Warn("probe failed", logging.KeyError, msg)
	return Result{
		Facts:   facts.Default(),
		Verdict: health.Error,
		Record:  report.ErrorRecord(msg, multiVariant),
	}
}
