package facts

import (
	"strconv"
	"strings"
	"time"

	"github.com/breeze-rmm/trendprobe/internal/configstore"
	"github.com/breeze-rmm/trendprobe/internal/logging"
	"github.com/breeze-rmm/trendprobe/internal/product"
	"github.com/breeze-rmm/trendprobe/internal/sigdate"
	"github.com/breeze-rmm/trendprobe/internal/svcquery"
)

var log = logging.L("facts")

// Extractor walks a variant's field chains against a configuration source.
type Extractor struct {
	Source   configstore.Source
	Services svcquery.Probe
	Profile  product.Profile
	// Now defaults to time.Now.
	Now func() time.Time
}

type signature struct {
	date    time.Time
	ageDays float64
}

// Extract returns the facts for variant v. product.None, or a variant the
// profile does not define, yields Default().
func (e *Extractor) Extract(v product.Variant) FactSet {
	def, ok := e.Profile.Definition(v)
	if v == product.None || !ok {
		return Default()
	}

	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	b := newBuilder(v)

	if version, ok := FirstOf(e.versionChain(def)...); ok {
		b.version(version)
	}
	if on, ok := FirstOf(e.realtimeChain(def)...); ok {
		b.realtime(on)
	}
	if sig, ok := FirstOf(e.signatureChain(def, now)...); ok {
		b.signature(sig.date, sig.ageDays)
	}

	b.serviceRunning(svcquery.AnyRunning(e.Services, e.Profile.Services(v)))

	fs := b.build()
	log.Info("facts extracted",
		logging.KeyVariant, v.String(),
		"version", fs.Version,
		"realtime", fs.RealtimeProtection,
		"hasSignature", fs.HasSignature(),
		"serviceRunning", fs.ServiceRunning)
	return fs
}

// Every chain iterates roots outermost, so the first root with any hit
// wins over later roots.
func (e *Extractor) versionChain(def product.Definition) []Lookup[string] {
	var chain []Lookup[string]
	for _, root := range def.Roots {
		for _, f := range def.Version {
			path := configstore.Join(root, f.Sub)
			key := f.Key
			chain = append(chain, Guard[string]("version", func() (string, bool) {
				v, ok := e.read(path, key)
				if !ok {
					return "", false
				}
				text := v.Text()
				return text, text != ""
			}))
		}
	}
	return chain
}

func (e *Extractor) realtimeChain(def product.Definition) []Lookup[bool] {
	var chain []Lookup[bool]
	for _, root := range def.Roots {
		for _, f := range def.Realtime {
			path := configstore.Join(root, f.Sub)
			key := f.Key
			chain = append(chain, Guard[bool]("realtime", func() (bool, bool) {
				v, ok := e.read(path, key)
				if !ok {
					return false, false
				}
				on, ok := coerceBool(v)
				if !ok {
					log.Debug("realtime flag not boolean", logging.KeyPath, path, logging.KeyKey, key, "value", v.Text())
				}
				return on, ok
			}))
		}
	}
	return chain
}

func (e *Extractor) signatureChain(def product.Definition, now time.Time) []Lookup[signature] {
	var chain []Lookup[signature]
	for _, root := range def.Roots {
		for _, f := range def.Signature {
			path := configstore.Join(root, f.Sub)
			key := f.Key
			enc := f.Encoding
			chain = append(chain, Guard[signature]("signature", func() (signature, bool) {
				v, ok := e.read(path, key)
				if !ok {
					return signature{}, false
				}
				res, ok := sigdate.Parse(v, enc, now)
				if !ok {
					log.Debug("signature value did not parse",
						logging.KeyPath, path, logging.KeyKey, key,
						"encoding", enc.String(), "value", v.Text())
					return signature{}, false
				}
				return signature{date: res.Date, ageDays: res.AgeDays}, true
			}))
		}
	}
	return chain
}

func (e *Extractor) read(path, key string) (configstore.Value, bool) {
	v, ok := e.Source.Read(path, key)
	log.Debug("lookup", logging.KeyPath, path, logging.KeyKey, key, "found", ok, "value", v.Text())
	return v, ok
}

// coerceBool maps registry data to a flag: integers are true when non-zero,
// strings may hold an integer or a boolean word.
func coerceBool(v configstore.Value) (bool, bool) {
	if n, ok := v.Uint(); ok {
		return n != 0, true
	}
	s := strings.ToLower(v.Text())
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n != 0, true
	}
	switch s {
	case "yes", "on", "enabled":
		return true, true
	case "no", "off", "disabled":
		return false, true
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, true
	}
	return false, false
}
