package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Deployment profiles.
const (
	ProfileUniversal = "universal"
	ProfileWFBS      = "wfbs"
)

type Config struct {
	Profile             string   `mapstructure:"profile"`
	SignatureMaxAgeDays float64  `mapstructure:"signature_max_age_days"`
	ServiceNames        []string `mapstructure:"service_names"`
	WarningBucket       bool     `mapstructure:"warning_bucket"`
	MinimumVersion      string   `mapstructure:"minimum_version"`
	SnapshotFile        string   `mapstructure:"snapshot_file"`
	LogLevel            string   `mapstructure:"log_level"`
	LogFormat           string   `mapstructure:"log_format"`
	LogFile             string   `mapstructure:"log_file"`
	LogMaxSizeMB        int      `mapstructure:"log_max_size_mb"`
	LogMaxBackups       int      `mapstructure:"log_max_backups"`
}

func Default() *Config {
	return &Config{
		Profile:             ProfileUniversal,
		SignatureMaxAgeDays: 7,
		LogLevel:            "warn",
		LogFormat:           "text",
		LogMaxSizeMB:        10,
		LogMaxBackups:       3,
	}
}

// Load reads trendprobe.yaml (or cfgFile) plus TRENDPROBE_* environment
// overrides on top of Default. A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("trendprobe")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TRENDPROBE")
	v.AutomaticEnv()
	for _, key := range []string{
		"profile", "signature_max_age_days", "service_names", "warning_bucket",
		"minimum_version", "snapshot_file", "log_level", "log_format", "log_file",
		"log_max_size_mb", "log_max_backups",
	} {
		// AutomaticEnv only covers keys viper already knows about.
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "TrendProbe")
	default:
		return "/etc/trendprobe"
	}
}
