package product

import "github.com/breeze-rmm/trendprobe/internal/sigdate"

const (
	wowRoot    = `HKLM\SOFTWARE\WOW6432Node\TrendMicro\PC-cillinNTCorp\CurrentVersion`
	nativeRoot = `HKLM\SOFTWARE\TrendMicro\PC-cillinNTCorp\CurrentVersion`

	miscKey     = `Misc.`
	realtimeKey = `Real Time Scan Configuration`
)

// AgentServices are the four services a full Security Agent install runs.
var AgentServices = []string{"ntrtscan", "TmListen", "TmCCSF", "TMBMServer"}

// Both variants share the PC-cillinNTCorp layout for realtime and pattern
// data; they differ in install location and their product version key.
var (
	realtimeChain = []Field{
		{Sub: realtimeKey, Key: "Enable"},
		{Sub: realtimeKey, Key: "RealTimeScanOn"},
	}

	signatureChain = []DateField{
		{Field: Field{Sub: miscKey, Key: "PatternDate"}, Encoding: sigdate.Compact},
		{Field: Field{Key: "PatternDate"}, Encoding: sigdate.Compact},
		{Field: Field{Sub: miscKey, Key: "PatternFileTime"}, Encoding: sigdate.FileTime},
		{Field: Field{Sub: miscKey, Key: "LastUpdateTime"}, Encoding: sigdate.UnixEpoch},
	}
)

// Catalog returns every supported variant in detection priority order.
func Catalog() []Definition {
	return []Definition{
		{
			Variant: WFBS,
			InstallPaths: []string{
				`C:\Program Files (x86)\Trend Micro\Security Agent`,
				`C:\Program Files\Trend Micro\Security Agent`,
			},
			Roots: []string{wowRoot, nativeRoot},
			Version: []Field{
				{Sub: miscKey, Key: "WFBSVersion"},
				{Key: "Application Version"},
				{Key: "Version"},
			},
			Realtime:  realtimeChain,
			Signature: signatureChain,
			Services:  []string{"ntrtscan"},
		},
		{
			Variant: ClientServer,
			InstallPaths: []string{
				`C:\Program Files (x86)\Trend Micro\OfficeScan Client`,
				`C:\Program Files\Trend Micro\OfficeScan Client`,
			},
			Roots: []string{wowRoot, nativeRoot},
			Version: []Field{
				{Sub: miscKey, Key: "ProgramVer"},
				{Key: "Application Version"},
				{Key: "Version"},
			},
			Realtime:  realtimeChain,
			Signature: signatureChain,
			Services:  []string{"TmListen"},
		},
	}
}

// Lookup returns the catalog definition for v.
func Lookup(v Variant) (Definition, bool) {
	for _, def := range Catalog() {
		if def.Variant == v {
			return def, true
		}
	}
	return Definition{}, false
}
