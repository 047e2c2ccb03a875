package configstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{String("  14.0.1234 "), "14.0.1234"},
		{Integer(20250801), "20250801"},
		{Value{}, ""},
	}
	for _, tt := range tests {
		if got := tt.v.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueUint(t *testing.T) {
	tests := []struct {
		v      Value
		want   uint64
		wantOK bool
	}{
		{Integer(1), 1, true},
		{String("133678080000000000"), 133678080000000000, true},
		{String(" 42 "), 42, true},
		{String("-1"), 0, false},
		{String("0x10"), 0, false},
		{String(""), 0, false},
		{Value{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.v.Uint()
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Uint(%+v) = (%d, %v), want (%d, %v)", tt.v, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValueKind(t *testing.T) {
	if String("x").Kind() != KindString {
		t.Error("String kind")
	}
	if Integer(0).Kind() != KindInteger {
		t.Error("Integer kind")
	}
	if (Value{}).Kind() != KindNone {
		t.Error("zero kind")
	}
}

func TestJoin(t *testing.T) {
	root := `HKLM\SOFTWARE\TrendMicro\PC-cillinNTCorp\CurrentVersion`
	tests := []struct {
		sub, want string
	}{
		{"", root},
		{`Misc.`, root + `\Misc.`},
		{`\Real Time Scan Configuration\`, root + `\Real Time Scan Configuration`},
	}
	for _, tt := range tests {
		if got := Join(root, tt.sub); got != tt.want {
			t.Errorf("Join(%q) = %q, want %q", tt.sub, got, tt.want)
		}
	}
	if got := Join(root+`\`, "Misc."); got != root+`\Misc.` {
		t.Errorf("Join with trailing separator = %q", got)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "PccNTMon.exe")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !PathExists(dir) {
		t.Error("directory should exist")
	}
	if !PathExists(file) {
		t.Error("file should exist")
	}
	if PathExists(filepath.Join(dir, "missing")) {
		t.Error("missing path should not exist")
	}
}

func TestValueRaw(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{String(" 20250801\n"), " 20250801\n"},
		{String("6.7"), "6.7"},
		{Integer(20250801), "20250801"},
		{Value{}, ""},
	}
	for _, tt := range tests {
		if got := tt.in.Raw(); got != tt.want {
			t.Errorf("Raw() = %q, want %q", got, tt.want)
		}
	}
}
