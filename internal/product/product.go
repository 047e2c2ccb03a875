package product

import "github.com/breeze-rmm/trendprobe/internal/sigdate"

// Variant is a supported Trend Micro agent flavor.
type Variant int

const (
	None Variant = iota
	WFBS
	ClientServer
)

func (v Variant) String() string {
	switch v {
	case WFBS:
		return "WFBS"
	case ClientServer:
		return "ClientServer"
	default:
		return "None"
	}
}

// ProductType is the name the status record uses for the variant.
func (v Variant) ProductType() string {
	switch v {
	case WFBS:
		return "WFBS"
	case ClientServer:
		return "Client_Server"
	default:
		return "Unknown"
	}
}

// Field locates one registry value relative to a variant root.
type Field struct {
	Sub string
	Key string
}

// DateField is a Field whose value carries a signature timestamp.
type DateField struct {
	Field
	Encoding sigdate.Encoding
}

// Definition is everything the probe knows about one variant: where it
// installs, which registry roots it populates, and the ordered fallback
// chains for each fact.
type Definition struct {
	Variant      Variant
	InstallPaths []string
	Roots        []string
	Version      []Field
	Realtime     []Field
	Signature    []DateField
	// Services is the canonical service set for this variant.
	Services []string
}
