// Package detect decides which supported product variant is installed.
package detect

import (
	"github.com/breeze-rmm/trendprobe/internal/logging"
	"github.com/breeze-rmm/trendprobe/internal/product"
)

var log = logging.L("detect")

// ExistsFunc reports whether a filesystem path is present. A failing check
// must report false.
type ExistsFunc func(path string) bool

// Detect returns the first variant in defs with an existing install path,
// or product.None. defs order is the detection priority.
func Detect(defs []product.Definition, exists ExistsFunc) product.Variant {
	for _, def := range defs {
		for _, path := range def.InstallPaths {
			found := exists(path)
			log.Debug("install path checked",
				logging.KeyVariant, def.Variant.String(),
				logging.KeyPath, path,
				"exists", found)
			if found {
				log.Info("product detected", logging.KeyVariant, def.Variant.String(), logging.KeyPath, path)
				return def.Variant
			}
		}
	}
	log.Info("no supported product detected", "checked", len(defs))
	return product.None
}
