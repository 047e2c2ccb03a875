package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/trendprobe/internal/config"
	"github.com/breeze-rmm/trendprobe/internal/configstore"
	"github.com/breeze-rmm/trendprobe/internal/diag"
	"github.com/breeze-rmm/trendprobe/internal/health"
	"github.com/breeze-rmm/trendprobe/internal/logging"
	"github.com/breeze-rmm/trendprobe/internal/probe"
	"github.com/breeze-rmm/trendprobe/internal/product"
	"github.com/breeze-rmm/trendprobe/internal/report"
	"github.com/breeze-rmm/trendprobe/internal/snapshot"
	"github.com/breeze-rmm/trendprobe/internal/svcquery"
)

var version = "0.1.0"

var log = logging.L("main")

// newCollector is swapped out in tests.
var newCollector = diag.NewCollector

type options struct {
	cfgFile string
	debug   bool
	output  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "trendprobe",
		Short: "Trend Micro antivirus health probe",
		Long: `trendprobe inspects the local Trend Micro Worry-Free or Client/Server agent and
prints one JSON status line for the monitoring platform.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is trendprobe.yaml in the config directory)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write a diagnostic trace to stderr")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "trendprobe v%s\n", version)
		},
	}

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Record the values the probe reads into a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(opts, stdout, stderr)
		},
	}
	captureCmd.Flags().StringVarP(&opts.output, "output", "o", "", "snapshot file to write (default stdout)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(captureCmd)
	return rootCmd
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// setup loads config and installs the log handler. A config load failure
// is returned alongside a validated default config so the caller can still
// emit a record.
func setup(opts *options, command string, stderr io.Writer) (*config.Config, func(), error) {
	cfg, loadErr := config.Load(opts.cfgFile)
	if loadErr != nil {
		cfg = config.Default()
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}

	var out io.Writer = stderr
	cleanup := func() {}
	if cfg.LogFile != "" {
		tf, err := logging.OpenTraceFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogFormat,
			logging.RunInfo{Version: version, Command: command})
		if err != nil {
			fmt.Fprintf(stderr, "trendprobe: log file: %v\n", err)
		} else {
			out = io.MultiWriter(stderr, tf)
			cleanup = func() { tf.Close() }
		}
	}
	logging.Init(cfg.LogFormat, level, out)

	// Validation warnings need the handler in place first.
	cfg.Validate()

	if loadErr != nil {
		return cfg, cleanup, fmt.Errorf("config: %w", loadErr)
	}
	return cfg, cleanup, nil
}

func profileFor(cfg *config.Config) product.Profile {
	p := product.UniversalProfile()
	if cfg.Profile == config.ProfileWFBS {
		p = product.WFBSProfile()
	}
	return p.WithServices(cfg.ServiceNames)
}

func openSources(cfg *config.Config) (configstore.Source, svcquery.Probe, error) {
	if cfg.SnapshotFile != "" {
		h, err := snapshot.Load(cfg.SnapshotFile)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using snapshot", logging.KeyPath, cfg.SnapshotFile)
		return h, h, nil
	}
	src, err := configstore.NewSystem()
	if err != nil {
		return nil, nil, err
	}
	return src, svcquery.SCM{}, nil
}

func runProbe(opts *options, stdout, stderr io.Writer) error {
	cfg, cleanup, err := setup(opts, "probe", stderr)
	defer cleanup()

	var res probe.Result
	if err != nil {
		res = probe.Failure(err, cfg.MultiVariant())
	} else if src, svc, err := openSources(cfg); err != nil {
		res = probe.Failure(err, cfg.MultiVariant())
	} else {
		r := &probe.Runner{
			Profile: profileFor(cfg),
			Classifier: health.Classifier{
				ThresholdDays:  cfg.SignatureMaxAgeDays,
				WarningBucket:  cfg.WarningBucket,
				MinimumVersion: cfg.MinimumVersion,
			},
			Source:   src,
			Services: svc,
			Now:      time.Now,
		}
		res = r.Run()
	}

	if opts.debug {
		traceDiagnostics(res)
	}

	return report.Write(stdout, res.Record)
}

func traceDiagnostics(res probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in diagnostics", logging.KeyError, r)
		}
	}()

	rep, err := newCollector().Collect(res.Facts)
	if err != nil {
		log.Debug("diagnostics incomplete", logging.KeyError, err)
	}
	rep.Log()
	log.Debug("classification", "verdict", string(res.Verdict), "record", fmt.Sprintf("%+v", res.Record))
}

func runCapture(opts *options, stdout, stderr io.Writer) error {
	cfg, cleanup, err := setup(opts, "capture", stderr)
	defer cleanup()
	if err != nil {
		return err
	}

	src, err := configstore.NewSystem()
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	data, err := snapshot.Capture(profileFor(cfg), src, svcquery.SCM{}).Marshal()
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	if opts.output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return nil
}
