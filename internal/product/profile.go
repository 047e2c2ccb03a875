package product

import "slices"

// Profile is a deployment preset: which variants to look for, which
// services count as "the agent is running", and whether the record names
// the product type.
type Profile struct {
	Name         string
	Definitions  []Definition
	ServiceNames []string
	MultiVariant bool
}

// UniversalProfile detects every variant and checks one canonical service
// per variant.
func UniversalProfile() Profile {
	return Profile{
		Name:         "universal",
		Definitions:  Catalog(),
		MultiVariant: true,
	}
}

// WFBSProfile is the standalone Worry-Free checker: WFBS only, healthy when
// any of the agent services runs.
func WFBSProfile() Profile {
	def, _ := Lookup(WFBS)
	return Profile{
		Name:         "wfbs",
		Definitions:  []Definition{def},
		ServiceNames: slices.Clone(AgentServices),
	}
}

// WithServices returns a copy of p that checks names for every variant.
// An empty list keeps p's own service selection.
func (p Profile) WithServices(names []string) Profile {
	if len(names) > 0 {
		p.ServiceNames = slices.Clone(names)
	}
	return p
}

// Services returns the service names to check for variant v.
func (p Profile) Services(v Variant) []string {
	if len(p.ServiceNames) > 0 {
		return p.ServiceNames
	}
	for _, def := range p.Definitions {
		if def.Variant == v {
			return def.Services
		}
	}
	return nil
}

// Definition returns the profile's definition for v.
func (p Profile) Definition(v Variant) (Definition, bool) {
	for _, def := range p.Definitions {
		if def.Variant == v {
			return def, true
		}
	}
	return Definition{}, false
}
