package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/breeze-rmm/trendprobe/internal/diag"
	"github.com/breeze-rmm/trendprobe/internal/logging"
	"github.com/breeze-rmm/trendprobe/internal/security"
)

const snapshotTemplate = `
paths:
  - 'C:\Program Files (x86)\Trend Micro\Security Agent'
registry:
  'HKLM\SOFTWARE\WOW6432Node\TrendMicro\PC-cillinNTCorp\CurrentVersion':
    Application Version: "6.7.3000"
  'HKLM\SOFTWARE\WOW6432Node\TrendMicro\PC-cillinNTCorp\CurrentVersion\Real Time Scan Configuration':
    Enable: 1
  'HKLM\SOFTWARE\WOW6432Node\TrendMicro\PC-cillinNTCorp\CurrentVersion\Misc.':
    PatternDate: "PATTERN"
services:
  ntrtscan: running
`

func writeFixture(t *testing.T, pattern, extraConfig string) string {
	t.Helper()
	dir := t.TempDir()

	snap := filepath.Join(dir, "host.yaml")
	if err := os.WriteFile(snap, []byte(strings.Replace(snapshotTemplate, "PATTERN", pattern, 1)), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := filepath.Join(dir, "trendprobe.yaml")
	content := "snapshot_file: '" + snap + "'\n" + extraConfig
	if err := os.WriteFile(cfg, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func run(t *testing.T, args ...string) (map[string]any, string, string, int) {
	t.Helper()
	t.Cleanup(func() { logging.Init("text", "warn", nil) })

	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)

	out := stdout.String()
	var rec map[string]any
	if out != "" {
		if strings.Count(out, "\n") != 1 {
			t.Fatalf("expected one stdout line, got %q", out)
		}
		if err := json.Unmarshal([]byte(out), &rec); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, out)
		}
	}
	return rec, out, stderr.String(), code
}

func TestProbeFromSnapshot(t *testing.T) {
	today := time.Now().Format("20060102")
	cfg := writeFixture(t, today, "")

	rec, _, _, code := run(t, "--config", cfg)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if rec["health_status"] != "OK" || rec["product_type"] != "WFBS" || rec["version"] != "6.7.3000" {
		t.Fatalf("record = %v", rec)
	}
	if rec["installed"] != float64(1) || rec["realtime_protection"] != float64(1) {
		t.Fatalf("flags = %v", rec)
	}
}

func TestProbeWFBSProfileOmitsProductType(t *testing.T) {
	cfg := writeFixture(t, "20200101", "profile: wfbs\n")

	rec, _, _, code := run(t, "--config", cfg)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if rec["health_status"] != "OUTDATED_SIGNATURES" {
		t.Fatalf("health_status = %v", rec["health_status"])
	}
	if _, ok := rec["product_type"]; ok {
		t.Fatalf("wfbs profile should not emit product_type: %v", rec)
	}
}

func TestProbeServiceOverride(t *testing.T) {
	cfg := writeFixture(t, time.Now().Format("20060102"), "service_names: [TmListen]\n")

	rec, _, _, _ := run(t, "--config", cfg)
	if rec["health_status"] != "SERVICE_STOPPED" {
		t.Fatalf("health_status = %v, want SERVICE_STOPPED", rec["health_status"])
	}
}

func TestProbeMissingSnapshotIsErrorRecord(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "trendprobe.yaml")
	if err := os.WriteFile(cfg, []byte("snapshot_file: /nonexistent/host.yaml\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rec, _, _, code := run(t, "--config", cfg)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 once a line is written", code)
	}
	if rec["health_status"] != "ERROR" || rec["error"] == nil {
		t.Fatalf("record = %v", rec)
	}
	if rec["signature_age"] != float64(-1) || rec["last_update"] != "Unknown" {
		t.Fatalf("error record should carry defaults: %v", rec)
	}
}

func TestProbeMalformedConfigIsErrorRecord(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "trendprobe.yaml")
	if err := os.WriteFile(cfg, []byte("profile: [oops\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rec, _, _, code := run(t, "--config", cfg)
	if code != 0 || rec["health_status"] != "ERROR" {
		t.Fatalf("code=%d record=%v", code, rec)
	}
	if msg, _ := rec["error"].(string); !strings.HasPrefix(msg, "config:") {
		t.Fatalf("error = %q", msg)
	}
}

func TestDebugTraceStaysOffStdout(t *testing.T) {
	orig := newCollector
	newCollector = func() *diag.Collector {
		return &diag.Collector{
			HostInfo:       func() (*host.InfoStat, error) { return &host.InfoStat{Hostname: "ws-042"}, nil },
			ProcessNames:   func() ([]string, error) { return []string{"NTRtScan.exe"}, nil },
			SecurityCenter: func() ([]security.AVProduct, error) { return nil, security.ErrNotSupported },
		}
	}
	t.Cleanup(func() { newCollector = orig })

	cfg := writeFixture(t, time.Now().Format("20060102"), "")
	rec, out, trace, code := run(t, "--debug", "--config", cfg)
	if code != 0 || rec["health_status"] != "OK" {
		t.Fatalf("code=%d out=%s", code, out)
	}
	for _, want := range []string{"install path checked", "component=facts", "hostname=ws-042", "classification"} {
		if !strings.Contains(trace, want) {
			t.Errorf("trace missing %q", want)
		}
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("trace leaked into stdout: %s", out)
	}
}

func TestLogFileReceivesTrace(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "trendprobe.log")
	cfg := writeFixture(t, time.Now().Format("20060102"), "log_level: info\nlog_file: '"+logPath+"'\n")

	if _, _, _, code := run(t, "--config", cfg); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	trace := string(data)
	header := strings.Index(trace, `msg="run started"`)
	summary := strings.Index(trace, "probe run complete")
	if header < 0 || summary < header {
		t.Fatalf("log file should open with the run header and hold the summary:\n%s", trace)
	}
	if !strings.Contains(trace, "command=probe") || !strings.Contains(trace, "version="+version) {
		t.Fatalf("run header missing fields:\n%s", trace)
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got := stdout.String(); got != "trendprobe v"+version+"\n" {
		t.Fatalf("version output = %q", got)
	}
}

func TestUnknownFlagExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"--bogus"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("no status line expected for usage errors: %q", stdout.String())
	}
}
