// Package diag gathers host context for the --debug trace. Nothing here
// influences the verdict.
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/breeze-rmm/trendprobe/internal/facts"
	"github.com/breeze-rmm/trendprobe/internal/logging"
	"github.com/breeze-rmm/trendprobe/internal/security"
)

var log = logging.L("diag")

// AgentProcesses are the Trend Micro agent binaries worth reporting.
var AgentProcesses = []string{"PccNTMon.exe", "NTRtScan.exe", "TmListen.exe", "TmCCSF.exe", "TMBMSRV.exe"}

// Report is the diagnostic context for one run.
type Report struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	// Processes maps each agent binary to whether it is running.
	Processes      map[string]bool
	SecurityCenter []security.AVProduct
	Discrepancies  []string
}

// Collector holds the data sources. NewCollector wires the real ones.
type Collector struct {
	HostInfo       func() (*host.InfoStat, error)
	ProcessNames   func() ([]string, error)
	SecurityCenter func() ([]security.AVProduct, error)
}

func NewCollector() *Collector {
	return &Collector{
		HostInfo:       host.Info,
		ProcessNames:   processNames,
		SecurityCenter: security.SecurityCenterProducts,
	}
}

// Collect gathers what it can and cross-checks it against fs. Failed
// sources are joined into the returned error; the Report is always usable.
func (c *Collector) Collect(fs facts.FactSet) (Report, error) {
	var rep Report
	var errs []error

	if info, err := c.HostInfo(); err != nil {
		errs = append(errs, fmt.Errorf("diag: host info: %w", err))
	} else {
		rep.Hostname = info.Hostname
		rep.OS = info.OS
		rep.Platform = info.Platform
		rep.PlatformVersion = info.PlatformVersion
		rep.KernelVersion = info.KernelVersion
	}

	if names, err := c.ProcessNames(); err != nil {
		errs = append(errs, fmt.Errorf("diag: process snapshot: %w", err))
	} else {
		rep.Processes = matchAgentProcesses(names)
	}

	if products, err := c.SecurityCenter(); err != nil {
		if !errors.Is(err, security.ErrNotSupported) {
			errs = append(errs, fmt.Errorf("diag: security center: %w", err))
		}
	} else {
		rep.SecurityCenter = security.TrendMicro(products)
	}

	rep.Discrepancies = crossCheck(rep, fs)
	return rep, errors.Join(errs...)
}

func matchAgentProcesses(names []string) map[string]bool {
	running := make(map[string]bool, len(names))
	for _, n := range names {
		running[strings.ToLower(n)] = true
	}
	out := make(map[string]bool, len(AgentProcesses))
	for _, p := range AgentProcesses {
		out[p] = running[strings.ToLower(p)]
	}
	return out
}

func crossCheck(rep Report, fs facts.FactSet) []string {
	var notes []string

	if rep.Processes != nil {
		anyRunning := false
		for _, running := range rep.Processes {
			anyRunning = anyRunning || running
		}
		if fs.Installed && !anyRunning {
			notes = append(notes, "product installed but no agent process is running")
		}
		if !fs.Installed && anyRunning {
			notes = append(notes, "agent process running but no install path found")
		}
	}

	for _, p := range rep.SecurityCenter {
		if !fs.Installed {
			notes = append(notes, fmt.Sprintf("security center lists %q but no install path found", p.DisplayName))
			continue
		}
		if p.RealTimeProtection != fs.RealtimeProtection {
			notes = append(notes, fmt.Sprintf("security center reports realtime=%v for %q, registry says %v",
				p.RealTimeProtection, p.DisplayName, fs.RealtimeProtection))
		}
	}
	return notes
}

// Log writes the report to the diagnostic trace.
func (r Report) Log() {
	log.Debug("host",
		"hostname", r.Hostname,
		"os", r.OS,
		"platform", r.Platform+" "+r.PlatformVersion,
		"kernel", r.KernelVersion)

	names := make([]string, 0, len(r.Processes))
	for name := range r.Processes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Debug("agent process", "name", name, "running", r.Processes[name])
	}

	for _, p := range r.SecurityCenter {
		log.Debug("security center product",
			"name", p.DisplayName,
			"state", p.ProductStateHex,
			"realtime", p.RealTimeProtection,
			"definitionsCurrent", p.DefinitionsUpToDate)
	}
	for _, note := range r.Discrepancies {
		log.Debug("discrepancy", "note", note)
	}
}
