package config

import (
	"fmt"
	"sort"
)

// Patch is a partial Simulation update; nil fields are left untouched.
type Patch struct {
	RepulsionStrength    *float64
	LinkDistance         *float64
	CollisionRadius      *float64
	CenterStrength       *float64
	AxisStrength         *float64
	DensityGenericFactor *float64
	DensityChargeFactor  *float64
	DensityMaxSize       *float64
}

// Float returns a pointer to v, for building patches inline.
func Float(v float64) *float64 { return &v }

func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply returns s with every non-nil field of p merged in.
func (s Simulation) Apply(p Patch) Simulation {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.RepulsionStrength, p.RepulsionStrength)
	set(&s.LinkDistance, p.LinkDistance)
	set(&s.CollisionRadius, p.CollisionRadius)
	set(&s.CenterStrength, p.CenterStrength)
	set(&s.AxisStrength, p.AxisStrength)
	set(&s.DensityGenericFactor, p.DensityGenericFactor)
	set(&s.DensityChargeFactor, p.DensityChargeFactor)
	set(&s.DensityMaxSize, p.DensityMaxSize)
	return s
}

var patchFields = map[string]func(*Patch, float64){
	"repulsion_strength":     func(p *Patch, v float64) { p.RepulsionStrength = Float(v) },
	"link_distance":          func(p *Patch, v float64) { p.LinkDistance = Float(v) },
	"collision_radius":       func(p *Patch, v float64) { p.CollisionRadius = Float(v) },
	"center_strength":        func(p *Patch, v float64) { p.CenterStrength = Float(v) },
	"axis_strength":          func(p *Patch, v float64) { p.AxisStrength = Float(v) },
	"density_generic_factor": func(p *Patch, v float64) { p.DensityGenericFactor = Float(v) },
	"density_charge_factor":  func(p *Patch, v float64) { p.DensityChargeFactor = Float(v) },
	"density_max_size":       func(p *Patch, v float64) { p.DensityMaxSize = Float(v) },
}

// PatchFrom builds a patch from config-file parameter names, e.g.
// {"link_distance": 120}.
func PatchFrom(params map[string]float64) (Patch, error) {
	var p Patch
	for name, v := range params {
		set, ok := patchFields[name]
		if !ok {
			return Patch{}, fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
		set(&p, v)
	}
	return p, nil
}

func ParamNames() []string {
	names := make([]string, 0, len(patchFields))
	for name := range patchFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
