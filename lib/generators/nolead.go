package generators

import (
	"fmt"

	"github.com/xoviat/kfgen/lib/geom"
	"github.com/xoviat/kfgen/lib/ipc"
	"github.com/xoviat/kfgen/lib/kicadmod"
	"github.com/xoviat/kfgen/lib/spec"
)

func init() {
	register(&noLead{})
}

// noLead covers QFN, DFN and LGA packages, where the pads are terminal
// faces on or pulled back from the body edge.
type noLead struct{}

func (n *noLead) Name() string { return "nolead" }

type noLeadPart struct {
	deviceType string
	pinsX      int
	pinsY      int
	pitch      float64

	bodyX, bodyY spec.TolerancedSize
	leadWidth    spec.TolerancedSize
	leadLen      *spec.TolerancedSize
	leadToEdge   *spec.TolerancedSize // pull-back distance
	leadCenter   *spec.TolerancedSize // distance of the pad center from origin
	bodyToInside *spec.TolerancedSize // body edge to inner lead edge

	ep      *epParams
	deleted []int
	hidden  []int
	suffix  string
}

func (n *noLead) parse(rec map[string]interface{}, env *Env) (*noLeadPart, error) {
	p := &noLeadPart{
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
	if p.leadWidth, err = spec.TolerancedFromRecord(rec, "lead_width", unit); err != nil {
		return nil, err
	}
	for key, dst := range map[string]**spec.TolerancedSize{
		"lead_len":                 &p.leadLen,
		"lead_to_edge":             &p.leadToEdge,
		"lead_center_pos":          &p.leadCenter,
		"body_to_inside_lead_edge": &p.bodyToInside,
	} {
		if spec.HasDimension(rec, key) {
			ts, err := spec.TolerancedFromRecord(rec, key, unit)
			if err != nil {
				return nil, err
			}
			*dst = &ts
		}
	}
	if p.leadCenter != nil && p.leadLen == nil {
		return nil, fmt.Errorf("lead_center_pos requires lead_len")
	}
	if p.leadLen == nil && p.bodyToInside == nil {
		return nil, fmt.Errorf("one of lead_len or body_to_inside_lead_edge is required")
	}
	p.deleted = spec.IntList(rec, "deleted_pins")
	p.hidden = spec.IntList(rec, "hidden_pins")
	p.ep, err = parseEP(rec, unit)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (n *noLead) class(p *noLeadPart, env *Env) (*ipc.DeviceClass, error) {
	name := "ipc_spec_flat_no_lead"
	if p.leadToEdge != nil {
		name = "ipc_spec_flat_no_lead_pull_back"
	}
	return env.Rules.Class(name)
}

func (n *noLead) rowPads(cls *ipc.DeviceClass, env *Env, p *noLeadPart, body spec.TolerancedSize, heelReduction float64) (center, size geom.Vector2D, err error) {
	off, err := cls.Offsets(env.Density)
	if err != nil {
		return center, size, err
	}
	tol := ipc.ManufacturingTolerances{
		Fab:       env.Config.ManufacturingTolerance,
		Placement: env.Config.PlacementTolerance,
	}
	var lands ipc.Lands
	if p.leadCenter != nil {
		lands = ipc.PadCenter(off, cls.Roundoff, tol, ipc.PadCenterArgs{
			LeadWidth:      p.leadWidth,
			CenterPosition: *p.leadCenter,
			LeadLength:     *p.leadLen,
		})
	} else {
		var pullBack spec.TolerancedSize
		if p.leadToEdge != nil {
			pullBack = *p.leadToEdge
		}
		lands, err = ipc.BodyEdge(off, cls.Roundoff, tol, ipc.BodyEdgeArgs{
			BodySize:             body,
			LeadWidth:            p.leadWidth,
			PullBack:             pullBack,
			LeadLen:              p.leadLen,
			BodyToInsideLeadEdge: p.bodyToInside,
			HeelReduction:        heelReduction,
		})
	}
	if err != nil {
		return center, size, err
	}
	center = geom.Vector2D{X: -(lands.Zmax + lands.Gmin) / 4}
	size = geom.Vector2D{X: (lands.Zmax - lands.Gmin) / 2, Y: lands.Xmax}
	return center, size, nil
}

func (n *noLead) Generate(part string, rec map[string]interface{}, env *Env) ([]*Result, error) {
	p, err := n.parse(rec, env)
	if err != nil {
		return nil, err
	}
	cls, err := n.class(p, env)
	if err != nil {
		return nil, err
	}

	heel := 0.0
	if p.ep != nil && p.leadCenter == nil {
		off, _ := cls.Offsets(env.Density)
		tol := ipc.ManufacturingTolerances{
			Fab:       env.Config.ManufacturingTolerance,
			Placement: env.Config.PlacementTolerance,
		}
		var pullBack spec.TolerancedSize
		if p.leadToEdge != nil {
			pullBack = *p.leadToEdge
		}
		landsX, err := ipc.BodyEdge(off, cls.Roundoff, tol, ipc.BodyEdgeArgs{
			BodySize:             p.bodyX,
			LeadWidth:            p.leadWidth,
			PullBack:             pullBack,
			LeadLen:              p.leadLen,
			BodyToInsideLeadEdge: p.bodyToInside,
		})
		if err != nil {
			return nil, err
		}
		landsY := landsX
		epY := 0.0
		if p.pinsX > 0 {
			epY = p.ep.size.Y
			landsY, err = ipc.BodyEdge(off, cls.Roundoff, tol, ipc.BodyEdgeArgs{
				BodySize:             p.bodyY,
				LeadWidth:            p.leadWidth,
				PullBack:             pullBack,
				LeadLen:              p.leadLen,
				BodyToInsideLeadEdge: p.bodyToInside,
			})
			if err != nil {
				return nil, err
			}
		}
		_, _, heel = ipc.ClampToExposedPad(landsX, landsY, p.ep.size.X, epY, env.Rules.MinEPToPadClearance)
	}

	centerX, sizeV, err := n.rowPads(cls, env, p, p.bodyX, heel)
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
		centerY, _, err := n.rowPads(cls, env, p, p.bodyY, heel)
		if err != nil {
			return nil, err
		}
		tplQ := tpl
		tplQ.Size = sizeV
		border := &kicadmod.QuadBorder{Params: kicadmod.QuadParams{
			Template:    tplQ,
			PinsX:       p.pinsX,
			PinsY:       p.pinsY,
			Pitch:       p.pitch,
			CenterX:     centerX.X,
			CenterY:     centerY.X,
			DeletedPins: kicadmod.PinSet(p.deleted),
			HiddenPins:  kicadmod.PinSet(p.hidden),
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

	f.Name = n.footprintName(p, rec, nominalPins)
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

func (n *noLead) footprintName(p *noLeadPart, rec map[string]interface{}, nominalPins int) string {
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
