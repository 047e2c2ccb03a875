// Package snapshot holds a captured host state (install paths, registry
// values, service states) that can stand in for the live system.
package snapshot

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/breeze-rmm/trendprobe/internal/configstore"
	"github.com/breeze-rmm/trendprobe/internal/svcquery"
)

// Host is an in-memory host state. It satisfies configstore.Source and
// svcquery.Probe. Registry paths, value names and service names compare
// case-insensitively, as they do on Windows.
type Host struct {
	paths    map[string]string
	keyNames map[string]string
	registry map[string]map[string]entry
	services map[string]service
}

type entry struct {
	name  string
	value configstore.Value
}

type service struct {
	name  string
	state svcquery.State
}

// document is the on-disk YAML shape.
type document struct {
	Paths    []string                  `yaml:"paths,omitempty"`
	Registry map[string]map[string]any `yaml:"registry,omitempty"`
	Services map[string]string         `yaml:"services,omitempty"`
}

// New returns an empty host: nothing installed, no values, no services.
func New() *Host {
	return &Host{
		paths:    make(map[string]string),
		keyNames: make(map[string]string),
		registry: make(map[string]map[string]entry),
		services: make(map[string]service),
	}
}

// Load reads a YAML snapshot file.
func Load(path string) (*Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	h, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", path, err)
	}
	return h, nil
}

// Parse decodes a YAML snapshot document.
func Parse(data []byte) (*Host, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	h := New()
	for _, p := range doc.Paths {
		h.AddPath(p)
	}
	for path, values := range doc.Registry {
		for key, raw := range values {
			v, err := toValue(raw)
			if err != nil {
				return nil, fmt.Errorf("registry %s\\%s: %w", path, key, err)
			}
			h.SetValue(path, key, v)
		}
	}
	for name, raw := range doc.Services {
		state, err := parseState(raw)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", name, err)
		}
		h.SetService(name, state)
	}
	return h, nil
}

// AddPath marks a filesystem path as present.
func (h *Host) AddPath(path string) *Host {
	h.paths[fold(path)] = path
	return h
}

// SetValue stores a registry value.
func (h *Host) SetValue(path, key string, v configstore.Value) *Host {
	p := fold(path)
	if h.registry[p] == nil {
		h.registry[p] = make(map[string]entry)
		h.keyNames[p] = path
	}
	h.registry[p][strings.ToLower(key)] = entry{name: key, value: v}
	return h
}

// SetService records a service state.
func (h *Host) SetService(name string, state svcquery.State) *Host {
	h.services[strings.ToLower(name)] = service{name: name, state: state}
	return h
}

// Exists implements configstore.Source.
func (h *Host) Exists(path string) bool {
	_, ok := h.paths[fold(path)]
	return ok
}

// Read implements configstore.Source.
func (h *Host) Read(path, key string) (configstore.Value, bool) {
	e, ok := h.registry[fold(path)][strings.ToLower(key)]
	return e.value, ok
}

// Status implements svcquery.Probe. Unlisted services are not installed.
func (h *Host) Status(name string) svcquery.State {
	if s, ok := h.services[strings.ToLower(name)]; ok {
		return s.state
	}
	return svcquery.StateNotFound
}

// Marshal encodes the host as a YAML snapshot document.
func (h *Host) Marshal() ([]byte, error) {
	doc := document{
		Registry: make(map[string]map[string]any, len(h.registry)),
		Services: make(map[string]string, len(h.services)),
	}
	for _, p := range h.paths {
		doc.Paths = append(doc.Paths, p)
	}
	sort.Strings(doc.Paths)

	for path, values := range h.registry {
		out := make(map[string]any, len(values))
		for _, e := range values {
			switch e.value.Kind() {
			case configstore.KindInteger:
				n, _ := e.value.Uint()
				out[e.name] = n
			default:
				out[e.name] = e.value.Text()
			}
		}
		doc.Registry[h.keyNames[path]] = out
	}
	for _, s := range h.services {
		doc.Services[s.name] = string(s.state)
	}
	return yaml.Marshal(doc)
}

func fold(path string) string {
	return strings.ToLower(strings.TrimRight(strings.ReplaceAll(strings.TrimSpace(path), "/", `\`), `\`))
}

func toValue(raw any) (configstore.Value, error) {
	switch v := raw.(type) {
	case string:
		return configstore.String(v), nil
	case int:
		if v < 0 {
			return configstore.Value{}, fmt.Errorf("negative integer %d", v)
		}
		return configstore.Integer(uint64(v)), nil
	case int64:
		if v < 0 {
			return configstore.Value{}, fmt.Errorf("negative integer %d", v)
		}
		return configstore.Integer(uint64(v)), nil
	case uint64:
		return configstore.Integer(v), nil
	case bool:
		if v {
			return configstore.Integer(1), nil
		}
		return configstore.Integer(0), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return configstore.String(strings.Join(parts, ";")), nil
	default:
		return configstore.Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

var knownStates = []svcquery.State{
	svcquery.StateRunning,
	svcquery.StateStopped,
	svcquery.StateNotFound,
	svcquery.StateError,
}

func parseState(raw string) (svcquery.State, error) {
	s := svcquery.State(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(knownStates, s) {
		return "", fmt.Errorf("unknown state %q", raw)
	}
	return s, nil
}
