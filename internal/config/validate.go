package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-version"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns everything it
// found. Out-of-range values are clamped or reset to defaults so the probe
// can still produce a status line.
func (c *Config) Validate() []error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.Profile)) {
	case ProfileUniversal, "":
		c.Profile = ProfileUniversal
	case ProfileWFBS:
		c.Profile = ProfileWFBS
	default:
		errs = append(errs, fmt.Errorf("profile %q is not valid (use universal or wfbs), using universal", c.Profile))
		c.Profile = ProfileUniversal
	}

	if c.SignatureMaxAgeDays < 1 {
		errs = append(errs, fmt.Errorf("signature_max_age_days %g is below minimum 1, clamping", c.SignatureMaxAgeDays))
		c.SignatureMaxAgeDays = 1
	} else if c.SignatureMaxAgeDays > 365 {
		errs = append(errs, fmt.Errorf("signature_max_age_days %g exceeds maximum 365, clamping", c.SignatureMaxAgeDays))
		c.SignatureMaxAgeDays = 365
	}

	names := c.ServiceNames[:0]
	for _, name := range c.ServiceNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	c.ServiceNames = names

	if c.MinimumVersion != "" {
		if _, err := version.NewVersion(c.MinimumVersion); err != nil {
			errs = append(errs, fmt.Errorf("minimum_version %q is not a valid version, ignoring: %w", c.MinimumVersion, err))
			c.MinimumVersion = ""
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}

// MultiVariant reports whether the profile detects every variant and emits
// product_type.
func (c *Config) MultiVariant() bool {
	return c.Profile != ProfileWFBS
}
