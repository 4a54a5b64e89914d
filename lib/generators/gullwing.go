package generators

import (
	"fmt"

	"github.com/xoviat/kfgen/lib/geom"
	"github.com/xoviat/kfgen/lib/ipc"
	"github.com/xoviat/kfgen/lib/kicadmod"
	"github.com/xoviat/kfgen/lib/spec"
)

func init() {
	register(&gullwing{})
}

// gullwing covers QFP, SOIC, SO, SOT and similar packages with leads
// formed outward from two or four sides.
type gullwing struct{}

func (g *gullwing) Name() string { return "gullwing" }

type gullwingPart struct {
	deviceType string
	pinsX      int // pads on top/bottom rows, zero for dual packages
	pinsY      int
	pitch      float64

	bodyX, bodyY       spec.TolerancedSize
	overallX, overallY spec.TolerancedSize
	leadWidth          spec.TolerancedSize
	leadLen            *spec.TolerancedSize

	ep         *epParams
	deleted    []int
	hidden     []int
	smallPitch bool
	ipcClass   string // explicit class override, e.g. flat leads

	chamferEdgePins   bool
	edgeHeelReduction float64
	padSizeYOverride  float64
	padGapXOverride   float64
	padGapYOverride   float64

	suffix string
}

type epParams struct {
	size     geom.Vector2D
	maskSize geom.Vector2D
	pasteX   int
	pasteY   int
	coverage float64

	thermalVias bool
	viaX, viaY  int
	viaDrill    float64
	viaAnnular  float64
	bottomPad   bool
}

func (g *gullwing) parse(rec map[string]interface{}, env *Env) (*gullwingPart, error) {
	p := &gullwingPart{
		deviceType: spec.String(rec, "device_type", env.Header.DeviceType),
		pinsX:      spec.Int(rec, "num_pins_x", 0),
		pinsY:      spec.Int(rec, "num_pins_y", 0),
		pitch:      spec.Float(rec, "pitch", 0),
		suffix:     spec.String(rec, "suffix", ""),
	}
	if p.pitch <= 0 {
		return nil, fmt.Errorf("pitch is required")
	}
	if p.pinsY <= 0 {
		return nil, fmt.Errorf("num_pins_y is required")
	}
	var err error
	unit := spec.UnitOf(rec)
	if p.bodyX, err = spec.TolerancedFromRecord(rec, "body_size_x", unit); err != nil {
		return nil, err
	}
	if p.bodyY, err = spec.TolerancedFromRecord(rec, "body_size_y", unit); err != nil {
		return nil, err
	}
	if p.overallX, err = spec.TolerancedFromRecord(rec, "overall_size_x", unit); err != nil {
		return nil, err
	}
	if p.pinsX > 0 {
		if p.overallY, err = spec.TolerancedFromRecord(rec, "overall_size_y", unit); err != nil {
			return nil, err
		}
	}
	if p.leadWidth, err = spec.TolerancedFromRecord(rec, "lead_width", unit); err != nil {
		return nil, err
	}
	if spec.HasDimension(rec, "lead_len") {
		ll, err := spec.TolerancedFromRecord(rec, "lead_len", unit)
		if err != nil {
			return nil, err
		}
		p.leadLen = &ll
	}

	p.deleted = spec.IntList(rec, "deleted_pins")
	p.hidden = spec.IntList(rec, "hidden_pins")
	p.smallPitch = spec.Bool(rec, "force_small_pitch_ipc_definition", false)
	p.ipcClass = spec.String(rec, "ipc_reference", "")
	p.chamferEdgePins = spec.Bool(rec, "chamfer_edge_pins", false)
	p.edgeHeelReduction = spec.Float(rec, "edge_heel_reduction", 0)
	p.padSizeYOverride = spec.Float(rec, "pad_size_y_overwrite", 0)
	p.padGapXOverride = spec.Float(rec, "pad_to_pad_min_x_overwrite", 0)
	p.padGapYOverride = spec.Float(rec, "pad_to_pad_min_y_overwrite", 0)

	p.ep, err = parseEP(rec, unit)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func parseEP(rec map[string]interface{}, unit spec.Unit) (*epParams, error) {
	if !spec.HasDimension(rec, "EP_size_x") {
		return nil, nil
	}
	ex, err := spec.TolerancedFromRecord(rec, "EP_size_x", unit)
	if err != nil {
		return nil, err
	}
	ey, err := spec.TolerancedFromRecord(rec, "EP_size_y", unit)
	if err != nil {
		return nil, err
	}
	ep := &epParams{
		size: geom.Vector2D{X: ex.Nominal, Y: ey.Nominal},
	}
	if v := spec.Float(rec, "EP_size_x_overwrite", 0); v > 0 {
		ep.size.X = v
	}
	if v := spec.Float(rec, "EP_size_y_overwrite", 0); v > 0 {
		ep.size.Y = v
	}
	ep.maskSize = geom.Vector2D{
		X: spec.Float(rec, "EP_mask_x", 0),
		Y: spec.Float(rec, "EP_mask_y", 0),
	}
	paste := spec.IntList(rec, "EP_num_paste_pads")
	switch len(paste) {
	case 0:
		ep.pasteX, ep.pasteY = autoPasteGrid(ep.size)
	case 1:
		ep.pasteX, ep.pasteY = paste[0], paste[0]
	default:
		ep.pasteX, ep.pasteY = paste[0], paste[1]
	}
	ep.coverage = spec.Float(rec, "EP_paste_coverage", 0)

	if vias, ok := rec["thermal_vias"].([]interface{}); ok && len(vias) >= 2 {
		ep.thermalVias = true
		grid := spec.IntList(rec, "thermal_vias")
		ep.viaX, ep.viaY = grid[0], grid[1]
	} else if spec.Bool(rec, "thermal_vias", false) {
		ep.thermalVias = true
		ep.viaX, ep.viaY = autoPasteGrid(ep.size)
	}
	ep.viaDrill = spec.Float(rec, "thermal_via_drill", 0.3)
	ep.viaAnnular = spec.Float(rec, "thermal_via_annular", 0.15)
	ep.bottomPad = spec.Bool(rec, "thermal_vias_bottom_pad", true)
	return ep, nil
}

// autoPasteGrid picks a subdivision so each aperture stays near 2 mm.
func autoPasteGrid(size geom.Vector2D) (int, int) {
	pick := func(d float64) int {
		n := int(d/2) + 1
		if n < 1 {
			n = 1
		}
		return n
	}
	return pick(size.X), pick(size.Y)
}

func (g *gullwing) class(p *gullwingPart, env *Env) (*ipc.DeviceClass, error) {
	if p.ipcClass != "" {
		return env.Rules.Class(p.ipcClass)
	}
	name := "ipc_spec_gw_large_pitch"
	if p.smallPitch || p.pitch < 0.625 {
		name = "ipc_spec_gw_small_pitch"
	}
	return env.Rules.Class(name)
}

// rowPads derives pad center and size for one pad row from an overall
// lead span.
func rowPads(cls *ipc.DeviceClass, env *Env, p *gullwingPart, span spec.TolerancedSize, heelReduction, gapOverride float64) (center, size geom.Vector2D, gmin float64, err error) {
	off, err := cls.Offsets(env.Density)
	if err != nil {
		return center, size, 0, err
	}
	tol := ipc.ManufacturingTolerances{
		Fab:       env.Config.ManufacturingTolerance,
		Placement: env.Config.PlacementTolerance,
	}
	lands, err := ipc.GullWing(off, cls.Roundoff, tol, ipc.GullWingArgs{
		LeadWidth:     p.leadWidth,
		LeadOutside:   span,
		LeadLen:       p.leadLen,
		HeelReduction: heelReduction,
	})
	if err != nil {
		return center, size, 0, err
	}
	if gapOverride > 0 {
		lands.Gmin = gapOverride
	}
	if p.padSizeYOverride > 0 {
		lands.Xmax = p.padSizeYOverride
	}
	center = geom.Vector2D{X: -(lands.Zmax + lands.Gmin) / 4}
	size = geom.Vector2D{X: (lands.Zmax - lands.Gmin) / 2, Y: lands.Xmax}
	return center, size, lands.Gmin, nil
}

func (g *gullwing) Generate(part string, rec map[string]interface{}, env *Env) ([]*Result, error) {
	p, err := g.parse(rec, env)
	if err != nil {
		return nil, err
	}
	cls, err := g.class(p, env)
	if err != nil {
		return nil, err
	}

	heel := 0.0
	if p.ep != nil {
		// grow the pad gap if the exposed pad would violate the
		// clearance, trading heel for it
		off, err := cls.Offsets(env.Density)
		if err != nil {
			return nil, err
		}
		tol := ipc.ManufacturingTolerances{
			Fab:       env.Config.ManufacturingTolerance,
			Placement: env.Config.PlacementTolerance,
		}
		landsX, err := ipc.GullWing(off, cls.Roundoff, tol, ipc.GullWingArgs{
			LeadWidth:   p.leadWidth,
			LeadOutside: p.overallX,
			LeadLen:     p.leadLen,
		})
		if err != nil {
			return nil, err
		}
		landsY := landsX
		epY := 0.0 // dual packages have no rows to clamp on y
		if p.pinsX > 0 {
			epY = p.ep.size.Y
			landsY, err = ipc.GullWing(off, cls.Roundoff, tol, ipc.GullWingArgs{
				LeadWidth:   p.leadWidth,
				LeadOutside: p.overallY,
				LeadLen:     p.leadLen,
			})
			if err != nil {
				return nil, err
			}
		}
		_, _, heel = ipc.ClampToExposedPad(landsX, landsY, p.ep.size.X, epY, env.Rules.MinEPToPadClearance)
	}

	centerX, sizeV, _, err := rowPads(cls, env, p, p.overallX, heel, p.padGapXOverride)
	if err != nil {
		return nil, err
	}

	f := kicadmod.NewFootprint("")
	tpl := kicadmod.Pad{
		Type:        kicadmod.PadTypeSMT,
		Shape:       kicadmod.PadShapeRoundRect,
		Layers:      kicadmod.LayersSMD,
		RadiusRatio: env.Config.RoundRectRadiusRatio,
		MaxRadius:   env.Config.RoundRectMaxRadius,
	}

	nominalPins := 2 * p.pinsY
	if p.pinsX > 0 {
		nominalPins = 2*p.pinsX + 2*p.pinsY
		centerY, _, _, err := rowPads(cls, env, p, p.overallY, heel, p.padGapYOverride)
		if err != nil {
			return nil, err
		}
		tplQ := tpl
		tplQ.Size = sizeV
		border := &kicadmod.QuadBorder{Params: kicadmod.QuadParams{
			Template:       tplQ,
			PinsX:          p.pinsX,
			PinsY:          p.pinsY,
			Pitch:          p.pitch,
			CenterX:        centerX.X,
			CenterY:        centerY.X, // the y rows reuse the land formula rotated onto y
			DeletedPins:    kicadmod.PinSet(p.deleted),
			HiddenPins:     kicadmod.PinSet(p.hidden),
			ChamferFirst:   p.chamferEdgePins,
			ChamferRatio:   env.Config.RoundRectRadiusRatio,
			EdgeSizeReduce: p.edgeHeelReduction,
		}}
		if err := border.Validate(); err != nil {
			return nil, err
		}
		f.Append(border)
	} else {
		appendDualRows(f, tpl, p.pinsY, p.pitch, centerX.X, sizeV,
			kicadmod.PinSet(p.deleted), kicadmod.PinSet(p.hidden))
	}

	if p.ep != nil {
		epNode := &kicadmod.ExposedPad{Params: kicadmod.ExposedPadParams{
			Number:           fmt.Sprintf("%d", nominalPins+1),
			Size:             p.ep.size,
			MaskSize:         p.ep.maskSize,
			PasteCountX:      p.ep.pasteX,
			PasteCountY:      p.ep.pasteY,
			PasteCoverage:    p.ep.coverage,
			RoundRadiusRatio: env.Config.RoundRectRadiusRatio,
			MaxRoundRadius:   env.Config.RoundRectMaxRadius,
		}}
		if _, err := epNode.Build(); err != nil {
			return nil, err
		}
		f.Append(epNode)
	}

	body := geom.Rect{Size: geom.Vector2D{X: p.bodyX.Nominal, Y: p.bodyY.Nominal}}
	kicadmod.AddFabOutline(f, env.Config, body)
	if p.pinsX > 0 {
		kicadmod.AddSilkCornerOutline(f, env.Config, body)
	} else {
		kicadmod.AddSilkOutline(f, env.Config, body, true)
	}
	courtyard := kicadmod.Courtyard(f, env.Config, offsetFor(cls, env))
	kicadmod.AddTextFields(f, env.Config, courtyard, body)

	f.Name = g.footprintName(part, p, rec, nominalPins)
	f.Attr = "smd"
	f.Descr = describe(rec, p.deviceType, fmt.Sprintf("%sx%smm pitch %smm", fm(p.bodyX.Nominal), fm(p.bodyY.Nominal), fm(p.pitch)))
	f.Tags = tags(rec, p.deviceType)

	library := libraryName(env, rec)
	attach3DModel(f, env, library)
	results := []*Result{{Name: f.Name, Library: library, Footprint: f}}

	if p.ep != nil && p.ep.thermalVias {
		fv, err := thermalViaVariant(f, p.ep, env, library)
		if err != nil {
			return nil, err
		}
		results = append(results, &Result{Name: fv.Name, Library: library, Footprint: fv})
	}
	return results, nil
}

/*
thermalViaVariant rebuilds the footprint with the via field added to
the exposed pad. The base tree is rebuilt rather than mutated so the
two variants stay independent.
*/
func thermalViaVariant(base *kicadmod.Footprint, ep *epParams, env *Env, library string) (*kicadmod.Footprint, error) {
	f := kicadmod.NewFootprint(base.Name + env.Config.ThermalViaSuffix)
	f.Attr = base.Attr
	f.Descr = base.Descr + " with thermal vias"
	f.Tags = base.Tags
	for _, n := range base.Nodes() {
		if epNode, ok := n.(*kicadmod.ExposedPad); ok {
			params := epNode.Params
			params.ViaCountX = ep.viaX
			params.ViaCountY = ep.viaY
			params.ViaDrill = ep.viaDrill
			params.ViaAnnular = ep.viaAnnular
			params.BottomPad = ep.bottomPad
			withVias := &kicadmod.ExposedPad{Params: params}
			if _, err := withVias.Build(); err != nil {
				return nil, err
			}
			f.Append(withVias)
			continue
		}
		if _, ok := n.(*kicadmod.Model); ok {
			continue
		}
		f.Append(n)
	}
	attach3DModel(f, env, library)
	return f, nil
}

func (g *gullwing) footprintName(part string, p *gullwingPart, rec map[string]interface{}, nominalPins int) string {
	if name := spec.String(rec, "custom_name", ""); name != "" {
		return name
	}
	ep := ""
	epSize := ""
	if p.ep != nil {
		ep = "-1EP"
		epSize = fmt.Sprintf("_EP%sx%smm", fm(p.ep.size.X), fm(p.ep.size.Y))
	}
	return fmt.Sprintf("%s-%s%s_%sx%smm_P%smm%s%s",
		p.deviceType,
		pinCountText(nominalPins, len(p.hidden), len(p.deleted)),
		ep,
		fm(p.bodyX.Nominal), fm(p.bodyY.Nominal),
		fm(p.pitch),
		epSize,
		p.suffix)
}

// appendDualRows places the two pad rows of a dual package, numbered
// CCW: left top to bottom, then right bottom to top.
func appendDualRows(f *kicadmod.Footprint, tpl kicadmod.Pad, pins int, pitch, centerX float64, size geom.Vector2D, deleted, hidden map[string]bool) {
	span := float64(pins-1) * pitch
	tpl.Size = size
	f.Append(&kicadmod.PadArray{
		Template:    tpl,
		Count:       pins,
		Start:       geom.Vector2D{X: centerX, Y: -span / 2},
		Spacing:     geom.Vector2D{Y: pitch},
		Numbers:     kicadmod.OffsetNumbers(1),
		DeletedPins: deleted,
		HiddenPins:  hidden,
	})
	right := tpl
	f.Append(&kicadmod.PadArray{
		Template:    right,
		Count:       pins,
		Start:       geom.Vector2D{X: -centerX, Y: span / 2},
		Spacing:     geom.Vector2D{Y: -pitch},
		Numbers:     kicadmod.OffsetNumbers(pins + 1),
		DeletedPins: deleted,
		HiddenPins:  hidden,
	})
}

func offsetFor(cls *ipc.DeviceClass, env *Env) float64 {
	off, err := cls.Offsets(env.Density)
	if err != nil {
		return 0.25
	}
	return off.Courtyard
}

func describe(rec map[string]interface{}, deviceType, dims string) string {
	d := fmt.Sprintf("%s, %s", deviceType, dims)
	if src := spec.String(rec, "size_source", ""); src != "" {
		d += ", " + src
	}
	d += ", generated with kfgen"
	return d
}

func tags(rec map[string]interface{}, deviceType string) string {
	t := deviceType
	if kw := spec.String(rec, "keywords", ""); kw != "" {
		t += " " + kw
	}
	return t
}
