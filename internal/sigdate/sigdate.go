// Package sigdate turns the date encodings found in agent configuration into
// a local calendar date and an age in days.
package sigdate

import (
	"math"
	"time"

	"github.com/breeze-rmm/trendprobe/internal/configstore"
)

// Encoding names how a raw value encodes a point in time.
type Encoding int

const (
	// Compact is an 8-digit YYYYMMDD string.
	Compact Encoding = iota + 1
	// FileTime is a count of 100ns intervals since 1601-01-01 UTC.
	FileTime
	// UnixEpoch is a count of seconds since 1970-01-01 UTC.
	UnixEpoch
)

func (e Encoding) String() string {
	switch e {
	case Compact:
		return "compact"
	case FileTime:
		return "filetime"
	case UnixEpoch:
		return "unix"
	default:
		return "unknown"
	}
}

// DateLayout is the rendering used in the status record.
const DateLayout = "2006-01-02"

const (
	// 100ns ticks between 1601-01-01 and 1970-01-01.
	fileTimeEpochOffset = 116444736000000000
	ticksPerSecond      = 10000000
	// Upper bound keeps time.Unix far from overflow and rejects garbage.
	maxUnixSeconds = 253402300799 // 9999-12-31T23:59:59Z
)

// Result is a successfully parsed signature timestamp.
type Result struct {
	Date    time.Time
	AgeDays float64
}

// Parse decodes raw per enc relative to now. It never panics; any shape or
// range problem yields ok=false so the caller can try the next source.
func Parse(raw configstore.Value, enc Encoding, now time.Time) (Result, bool) {
	var (
		t  time.Time
		ok bool
	)
	switch enc {
	case Compact:
		// Padding is a shape error, so string data is not trimmed.
		t, ok = parseCompact(raw.Raw(), now.Location())
	case FileTime:
		t, ok = parseFileTime(raw, now.Location())
	case UnixEpoch:
		t, ok = parseUnix(raw, now.Location())
	}
	if !ok {
		return Result{}, false
	}
	return Result{Date: t, AgeDays: AgeDays(t, now)}, true
}

// AgeDays is the elapsed time from t to now in days, rounded half-up to one
// decimal place. Future timestamps age 0.
func AgeDays(t, now time.Time) float64 {
	days := now.Sub(t).Hours() / 24
	if days <= 0 {
		return 0
	}
	return math.Round(days*10) / 10
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func parseCompact(s string, loc *time.Location) (time.Time, bool) {
	if len(s) != 8 {
		return time.Time{}, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}
	year := atoi(s[0:4])
	month := atoi(s[4:6])
	day := atoi(s[6:8])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes 20250231 to March; reject instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func parseFileTime(raw configstore.Value, loc *time.Location) (time.Time, bool) {
	ticks, ok := raw.Uint()
	if !ok || ticks <= fileTimeEpochOffset {
		return time.Time{}, false
	}
	secs := (ticks - fileTimeEpochOffset) / ticksPerSecond
	nanos := (ticks - fileTimeEpochOffset) % ticksPerSecond * 100
	if secs > maxUnixSeconds {
		return time.Time{}, false
	}
	return time.Unix(int64(secs), int64(nanos)).In(loc), true
}

func parseUnix(raw configstore.Value, loc *time.Location) (time.Time, bool) {
	secs, ok := raw.Uint()
	if !ok || secs == 0 || secs > maxUnixSeconds {
		return time.Time{}, false
	}
	return time.Unix(int64(secs), 0).In(loc), true
}

// atoi assumes s is all ASCII digits.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
