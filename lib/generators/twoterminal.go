package generators

import (
	"fmt"

	"github.com/xoviat/kfgen/lib/geom"
	"github.com/xoviat/kfgen/lib/ipc"
	"github.com/xoviat/kfgen/lib/kicadmod"
	"github.com/xoviat/kfgen/lib/spec"
)

func init() {
	register(&twoTerminal{})
}

// twoTerminal covers chip devices (resistors, capacitors, inductors,
// chip LEDs and diodes), MELF and molded two-terminal packages.
type twoTerminal struct{}

func (t *twoTerminal) Name() string { return "twoterminal" }

type twoTerminalPart struct {
	deviceType string

	// bodyLen runs along the terminal-to-terminal axis, bodyWidth
	// across it.
	bodyLen   spec.TolerancedSize
	bodyWidth spec.TolerancedSize

	// Exactly one of leadInside (inside-to-inside terminator spacing)
	// or leadLen describes the terminals; leadWidth defaults to the
	// body width.
	leadInside *spec.TolerancedSize
	leadLen    *spec.TolerancedSize
	leadWidth  *spec.TolerancedSize

	codeMetric   string
	codeImperial string

	ipcClass  string
	polarized bool
	molded    bool

	padLengthAddition float64
	pasteReduction    float64
	suffix            string
}

func (t *twoTerminal) parse(rec map[string]interface{}, env *Env) (*twoTerminalPart, error) {
	p := &twoTerminalPart{
		deviceType:        spec.String(rec, "device_type", env.Header.DeviceType),
		codeMetric:        spec.String(rec, "size_code_metric", ""),
		codeImperial:      spec.String(rec, "size_code_imperial", ""),
		ipcClass:          spec.String(rec, "ipc_reference", ""),
		polarized:         spec.Bool(rec, "polarized", false),
		molded:            spec.Bool(rec, "molded", false),
		padLengthAddition: spec.Float(rec, "pad_length_addition", 0),
		pasteReduction:    spec.Float(rec, "paste_reduction", 0),
		suffix:            spec.String(rec, "suffix", ""),
	}
	var err error
	unit := spec.UnitOf(rec)
	if p.bodyLen, err = spec.TolerancedFromRecord(rec, "body_length", unit); err != nil {
		return nil, err
	}
	if p.bodyWidth, err = spec.TolerancedFromRecord(rec, "body_width", unit); err != nil {
		return nil, err
	}
	if spec.HasDimension(rec, "terminal_width") {
		tw, err := spec.TolerancedFromRecord(rec, "terminal_width", unit)
		if err != nil {
			return nil, err
		}
		p.leadWidth = &tw
	}
	switch {
	case spec.HasDimension(rec, "terminator_spacing"):
		ts, err := spec.TolerancedFromRecord(rec, "terminator_spacing", unit)
		if err != nil {
			return nil, err
		}
		p.leadInside = &ts
	case spec.HasDimension(rec, "terminal_length"):
		tl, err := spec.TolerancedFromRecord(rec, "terminal_length", unit)
		if err != nil {
			return nil, err
		}
		p.leadLen = &tl
	default:
		return nil, fmt.Errorf("terminator_spacing or terminal_length is required")
	}
	return p, nil
}

/*
class resolves the chip land-pattern class: explicit reference, molded
bodies, then by size with the 1608-metric boundary.
*/
func (t *twoTerminal) class(p *twoTerminalPart, env *Env) (*ipc.DeviceClass, error) {
	name := p.ipcClass
	if name == "" {
		switch {
		case p.molded:
			name = "ipc_spec_molded"
		case p.bodyLen.Nominal >= 1.6:
			name = "ipc_spec_larger_or_1608"
		default:
			name = "ipc_spec_smaller_0603"
		}
	}
	return env.Rules.Class(name)
}

func (t *twoTerminal) Generate(part string, rec map[string]interface{}, env *Env) ([]*Result, error) {
	p, err := t.parse(rec, env)
	if err != nil {
		return nil, err
	}
	cls, err := t.class(p, env)
	if err != nil {
		return nil, err
	}
	off, err := cls.Offsets(env.Density)
	if err != nil {
		return nil, err
	}
	tol := ipc.ManufacturingTolerances{
		Fab:       env.Config.ManufacturingTolerance,
		Placement: env.Config.PlacementTolerance,
	}
	leadWidth := p.bodyWidth
	if p.leadWidth != nil {
		leadWidth = *p.leadWidth
	}
	lands, err := ipc.BodyEdge(off, cls.Roundoff, tol, ipc.BodyEdgeArgs{
		BodySize:   p.bodyLen,
		LeadWidth:  leadWidth,
		LeadInside: p.leadInside,
		LeadLen:    p.leadLen,
	})
	if err != nil {
		return nil, err
	}

	center := (lands.Zmax + lands.Gmin) / 4
	size := geom.Vector2D{
		X: (lands.Zmax-lands.Gmin)/2 + p.padLengthAddition,
		Y: lands.Xmax,
	}

	f := kicadmod.NewFootprint("")
	tpl := kicadmod.Pad{
		Type:        kicadmod.PadTypeSMT,
		Shape:       kicadmod.PadShapeRoundRect,
		Size:        size,
		Layers:      kicadmod.LayersSMD,
		RadiusRatio: env.Config.RoundRectRadiusRatio,
		MaxRadius:   env.Config.RoundRectMaxRadius,
	}
	if p.pasteReduction > 0 {
		tpl.SolderPasteMarginRatio = -p.pasteReduction / 2
	}
	left := tpl
	left.Number = "1"
	left.At = geom.Vector2D{X: -center - p.padLengthAddition/2}
	right := tpl
	right.Number = "2"
	right.At = geom.Vector2D{X: center + p.padLengthAddition/2}
	f.Append(&left, &right)

	body := geom.Rect{Size: geom.Vector2D{X: p.bodyLen.Nominal, Y: p.bodyWidth.Nominal}}
	kicadmod.AddFabOutline(f, env.Config, body)
	kicadmod.AddSilkOutline(f, env.Config, body, true)
	if p.polarized {
		t.addPolarityBar(f, env, &left)
	}
	courtyard := kicadmod.Courtyard(f, env.Config, offsetFor(cls, env))
	kicadmod.AddTextFields(f, env.Config, courtyard, body)

	f.Name = t.footprintName(p)
	f.Attr = "smd"
	f.Descr = describe(rec, p.deviceType, fmt.Sprintf("%sx%smm", fm(p.bodyLen.Nominal), fm(p.bodyWidth.Nominal)))
	f.Tags = tags(rec, p.deviceType)

	library := libraryName(env, rec)
	attach3DModel(f, env, library)
	return []*Result{{Name: f.Name, Library: library, Footprint: f}}, nil
}

// addPolarityBar draws a silk bar outside the cathode/plus pad.
func (t *twoTerminal) addPolarityBar(f *kicadmod.Footprint, env *Env, pad *kicadmod.Pad) {
	cfg := env.Config
	x := pad.At.X - pad.Size.X/2 - cfg.SilkPadOffset()
	half := pad.Size.Y/2 + cfg.SilkPadOffset()
	f.Append(&kicadmod.Line{
		Start: geom.Vector2D{X: x, Y: -half},
		End:   geom.Vector2D{X: x, Y: half},
		Layer: kicadmod.LayerFSilk,
		Width: cfg.SilkLineWidth,
	})
}

func (t *twoTerminal) footprintName(p *twoTerminalPart) string {
	if p.codeImperial != "" && p.codeMetric != "" {
		return fmt.Sprintf("%s_%s_%sMetric%s", p.deviceType, p.codeImperial, p.codeMetric, p.suffix)
	}
	return fmt.Sprintf("%s_%sx%smm%s", p.deviceType, fm(p.bodyLen.Nominal), fm(p.bodyWidth.Nominal), p.suffix)
}
