// Package config holds the library-wide drawing conventions: line
// widths, clearances, text sizing and footprint naming patterns. These
// are the knobs that are shared across all generator families, as
// opposed to the per-part size definitions.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed data/global_config.yaml
var defaultConfig []byte

// TextLayer is the text sizing for one layer class.
type TextLayer struct {
	SizeNom        float64 `yaml:"size_nom" validate:"gt=0"`
	SizeMin        float64 `yaml:"size_min" validate:"gt=0"`
	SizeMax        float64 `yaml:"size_max" validate:"gt=0"`
	ThicknessRatio float64 `yaml:"thickness_ratio" validate:"gt=0,lte=1"`
}

// GlobalConfig is the drawing rule set applied to every generated
// footprint.
type GlobalConfig struct {
	CourtyardLineWidth float64 `yaml:"courtyard_line_width" validate:"gt=0"`
	CourtyardGrid      float64 `yaml:"courtyard_grid" validate:"gt=0"`

	SilkLineWidth     float64 `yaml:"silk_line_width" validate:"gt=0"`
	SilkPadClearance  float64 `yaml:"silk_pad_clearance" validate:"gte=0"`
	SilkFabOffset     float64 `yaml:"silk_fab_offset" validate:"gte=0"`
	SilkLineLengthMin float64 `yaml:"silk_line_length_min" validate:"gte=0"`

	FabLineWidth         float64 `yaml:"fab_line_width" validate:"gt=0"`
	FabBevelSizeAbsolute float64 `yaml:"fab_bevel_size_absolute" validate:"gte=0"`
	FabBevelSizeRelative float64 `yaml:"fab_bevel_size_relative" validate:"gte=0,lte=1"`

	RoundRectRadiusRatio float64 `yaml:"round_rect_radius_ratio" validate:"gte=0,lte=0.5"`
	RoundRectMaxRadius   float64 `yaml:"round_rect_max_radius" validate:"gte=0"`

	ManufacturingTolerance float64 `yaml:"manufacturing_tolerance" validate:"gt=0"`
	PlacementTolerance     float64 `yaml:"placement_tolerance" validate:"gt=0"`

	Model3DPrefix    string `yaml:"model_3d_prefix" validate:"required"`
	LibNameFormat    string `yaml:"lib_name_format_string" validate:"required"`
	KeywordFPString  string `yaml:"keyword_fp_string"`
	ThermalViaSuffix string `yaml:"thermal_via_suffix"`

	TextSilk TextLayer `yaml:"text_silk"`
	TextFab  TextLayer `yaml:"text_fab"`
}

// Default returns the built-in global configuration.
func Default() *GlobalConfig {
	cfg, err := parse(defaultConfig)
	if err != nil {
		// the embedded default is validated by tests
		panic(fmt.Sprintf("embedded global config invalid: %v", err))
	}
	return cfg
}

// Load reads and validates a global config file.
func Load(path string) (*GlobalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func parse(raw []byte) (*GlobalConfig, error) {
	cfg := &GlobalConfig{}
	if err := yaml.Unmarshal(defaultConfig, cfg); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// FabBevelSize returns the pin-1 bevel for a body of the given overall
// size.
func (c *GlobalConfig) FabBevelSize(overallSize float64) float64 {
	rel := overallSize * c.FabBevelSizeRelative
	if c.FabBevelSizeAbsolute < rel {
		return c.FabBevelSizeAbsolute
	}
	return rel
}

// SilkPadOffset is the distance from a pad edge to the centerline of a
// silk line that respects the pad clearance.
func (c *GlobalConfig) SilkPadOffset() float64 {
	return c.SilkPadClearance + c.SilkLineWidth/2
}
