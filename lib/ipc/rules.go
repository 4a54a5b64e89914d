package ipc

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Density selects which column of the IPC land-pattern tables is used.
type Density string

const (
	// DensityMost is low density, largest pads ("M" protrusion column).
	DensityMost Density = "most"
	// DensityNominal is the medium column.
	DensityNominal Density = "nominal"
	// DensityLeast is high density, smallest pads.
	DensityLeast Density = "least"
)

// ParseDensity accepts both the table keys (most/nominal/least) and the
// IPC level letters (L/N/M, where L is the "most material" level).
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(s) {
	case "most", "l":
		return DensityMost, nil
	case "nominal", "n":
		return DensityNominal, nil
	case "least", "m":
		return DensityLeast, nil
	}
	return "", fmt.Errorf("unknown IPC density specifier: %q", s)
}

// Offsets are the solder fillet goals and courtyard excess for one
// density level of a device class, in mm.
type Offsets struct {
	Toe       float64 `yaml:"toe"`
	Heel      float64 `yaml:"heel"`
	Side      float64 `yaml:"side"`
	Courtyard float64 `yaml:"courtyard"`
}

// Roundoff holds the bases the computed land dimensions are rounded to.
type Roundoff struct {
	Toe  float64 `yaml:"toe"`
	Heel float64 `yaml:"heel"`
	Side float64 `yaml:"side"`
}

// DeviceClass is one row group of the IPC tables, e.g.
// ipc_spec_gw_large_pitch.
type DeviceClass struct {
	offsets  map[Density]Offsets
	Roundoff Roundoff
}

func (c *DeviceClass) Offsets(d Density) (Offsets, error) {
	o, ok := c.offsets[d]
	if !ok {
		return Offsets{}, fmt.Errorf("device class has no offsets for density %q", d)
	}
	return o, nil
}

// Rules is a loaded IPC rule table.
type Rules struct {
	MinEPToPadClearance float64
	classes             map[string]*DeviceClass
}

// Class returns the named device class.
func (r *Rules) Class(name string) (*DeviceClass, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown IPC device class %q", name)
	}
	return c, nil
}

type rawClass struct {
	Most      *Offsets  `yaml:"most"`
	Nominal   *Offsets  `yaml:"nominal"`
	Least     *Offsets  `yaml:"least"`
	RoundBase *Roundoff `yaml:"round_base"`
}

type rawRules struct {
	Generic struct {
		MinEPToPadClearance float64 `yaml:"min_ep_to_pad_clearance"`
	} `yaml:"ipc_generic_rules"`
	Classes map[string]rawClass `yaml:",inline"`
}

// LoadRules reads a rule table. Names ending in .yaml are treated as
// paths; anything else loads the packaged table of that name (e.g.
// "ipc_7351b").
func LoadRules(name string) (*Rules, error) {
	var raw []byte
	var err error
	if strings.HasSuffix(name, ".yaml") {
		raw, err = os.ReadFile(name)
	} else {
		raw, err = dataFS.ReadFile("data/" + name + ".yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("load IPC rules %q: %w", name, err)
	}
	return parseRules(raw)
}

func parseRules(raw []byte) (*Rules, error) {
	var doc rawRules
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse IPC rules: %w", err)
	}

	rules := &Rules{
		MinEPToPadClearance: doc.Generic.MinEPToPadClearance,
		classes:             map[string]*DeviceClass{},
	}

	for name, rc := range doc.Classes {
		if rc.Most == nil || rc.Nominal == nil || rc.Least == nil {
			return nil, fmt.Errorf("device class %q: all of most/nominal/least must be given", name)
		}
		if rc.RoundBase == nil {
			return nil, fmt.Errorf("device class %q: round_base must be given", name)
		}
		rules.classes[name] = &DeviceClass{
			offsets: map[Density]Offsets{
				DensityMost:    *rc.Most,
				DensityNominal: *rc.Nominal,
				DensityLeast:   *rc.Least,
			},
			Roundoff: *rc.RoundBase,
		}
	}

	return rules, nil
}
