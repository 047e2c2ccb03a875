package snapshot

import (
	"github.com/breeze-rmm/trendprobe/internal/configstore"
	"github.com/breeze-rmm/trendprobe/internal/product"
	"github.com/breeze-rmm/trendprobe/internal/svcquery"
)

// Capture records everything the profile would look at on src and probe:
// every install path that exists, every chain value that reads, and the
// state of every service name the profile can check.
func Capture(profile product.Profile, src configstore.Source, probe svcquery.Probe) *Host {
	h := New()
	seenServices := make(map[string]bool)

	for _, def := range profile.Definitions {
		for _, path := range def.InstallPaths {
			if src.Exists(path) {
				h.AddPath(path)
			}
		}

		fields := make([]product.Field, 0, len(def.Version)+len(def.Realtime)+len(def.Signature))
		fields = append(fields, def.Version...)
		fields = append(fields, def.Realtime...)
		for _, f := range def.Signature {
			fields = append(fields, f.Field)
		}
		for _, root := range def.Roots {
			for _, f := range fields {
				path := configstore.Join(root, f.Sub)
				if v, ok := src.Read(path, f.Key); ok {
					h.SetValue(path, f.Key, v)
				}
			}
		}

		for _, name := range profile.Services(def.Variant) {
			if seenServices[name] {
				continue
			}
			seenServices[name] = true
			h.SetService(name, probe.Status(name))
		}
	}
	return h
}
