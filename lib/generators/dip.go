package generators

import (
	"fmt"

	"github.com/xoviat/kfgen/lib/geom"
	"github.com/xoviat/kfgen/lib/kicadmod"
	"github.com/xoviat/kfgen/lib/spec"
)

func init() {
	register(&dip{})
}

// dip covers dual-inline through-hole packages. Land sizes come from
// the drill and annular ring rather than the IPC surface-mount tables.
type dip struct{}

func (d *dip) Name() string { return "dip" }

type dipPart struct {
	deviceType string
	pins       int
	pitch      float64
	rowSpread  float64 // center distance between the two pin rows
	drill      float64
	padX, padY float64

	bodyX, bodyY spec.TolerancedSize

	longPads bool
	socket   bool
	deleted  []int
	suffix   string
}

const (
	dipDefaultPitch  = 2.54
	dipDefaultDrill  = 0.8
	dipDefaultPadX   = 1.6
	dipDefaultPadY   = 1.6
	dipLongPadFactor = 1.5
)

func (d *dip) parse(rec map[string]interface{}, env *Env) (*dipPart, error) {
	p := &dipPart{
		deviceType: spec.String(rec, "device_type", env.Header.DeviceType),
		pins:       spec.Int(rec, "num_pins", 0),
		pitch:      spec.Float(rec, "pitch", dipDefaultPitch),
		rowSpread:  spec.Float(rec, "row_spread", 0),
		drill:      spec.Float(rec, "drill", dipDefaultDrill),
		padX:       spec.Float(rec, "pad_size_x", dipDefaultPadX),
		padY:       spec.Float(rec, "pad_size_y", dipDefaultPadY),
		longPads:   spec.Bool(rec, "long_pads", false),
		socket:     spec.Bool(rec, "socket", false),
		deleted:    spec.IntList(rec, "deleted_pins"),
		suffix:     spec.String(rec, "suffix", ""),
	}
	if p.pins <= 0 || p.pins%2 != 0 {
		return nil, fmt.Errorf("num_pins must be a positive even number, got %d", p.pins)
	}
	if p.rowSpread <= 0 {
		return nil, fmt.Errorf("row_spread is required")
	}
	var err error
	unit := spec.UnitOf(rec)
	if p.bodyX, err = spec.TolerancedFromRecord(rec, "body_size_x", unit); err != nil {
		return nil, err
	}
	if p.bodyY, err = spec.TolerancedFromRecord(rec, "body_size_y", unit); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *dip) Generate(part string, rec map[string]interface{}, env *Env) ([]*Result, error) {
	p, err := d.parse(rec, env)
	if err != nil {
		return nil, err
	}

	padSize := geom.Vector2D{X: p.padX, Y: p.padY}
	if p.longPads {
		padSize.Y = p.padY * dipLongPadFactor
	}

	perRow := p.pins / 2
	span := float64(perRow-1) * p.pitch
	tpl := kicadmod.Pad{
		Type:   kicadmod.PadTypeTHT,
		Shape:  kicadmod.PadShapeOval,
		Size:   padSize,
		Drill:  p.drill,
		Layers: kicadmod.LayersTHT,
	}
	f := kicadmod.NewFootprint("")
	leftRow := &kicadmod.PadArray{
		Template:    tpl,
		Count:       perRow,
		Start:       geom.Vector2D{X: -p.rowSpread / 2, Y: -span / 2},
		Spacing:     geom.Vector2D{Y: p.pitch},
		Numbers:     kicadmod.OffsetNumbers(1),
		DeletedPins: kicadmod.PinSet(p.deleted),
	}
	rightRow := &kicadmod.PadArray{
		Template:    tpl,
		Count:       perRow,
		Start:       geom.Vector2D{X: p.rowSpread / 2, Y: span / 2},
		Spacing:     geom.Vector2D{Y: -p.pitch},
		Numbers:     kicadmod.OffsetNumbers(perRow + 1),
		DeletedPins: kicadmod.PinSet(p.deleted),
	}
	// pin 1 is rectangular for orientation
	if first := leftRow.First(); first != nil && first.Number == "1" {
		first.Shape = kicadmod.PadShapeRect
	}
	f.Append(leftRow, rightRow)

	body := geom.Rect{Size: geom.Vector2D{X: p.bodyX.Nominal, Y: p.bodyY.Nominal}}
	kicadmod.AddFabOutline(f, env.Config, body)
	if p.socket {
		// socket body outline, one pitch larger than the pin field
		f.Append(&kicadmod.RectOutline{
			Rect: geom.Rect{Size: geom.Vector2D{
				X: p.rowSpread + dipDefaultPitch,
				Y: span + dipDefaultPitch,
			}},
			Layer: kicadmod.LayerFFab,
			Width: env.Config.FabLineWidth,
		})
	}
	kicadmod.AddSilkOutline(f, env.Config, body, true)
	courtyard := kicadmod.Courtyard(f, env.Config, 0.25)
	kicadmod.AddTextFields(f, env.Config, courtyard, body)

	f.Name = d.footprintName(p)
	f.Attr = "through_hole"
	f.Descr = describe(rec, p.deviceType,
		fmt.Sprintf("%d pins, row spread %smm", p.pins, fm(p.rowSpread)))
	f.Tags = tags(rec, p.deviceType)

	library := libraryName(env, rec)
	attach3DModel(f, env, library)
	return []*Result{{Name: f.Name, Library: library, Footprint: f}}, nil
}

func (d *dip) footprintName(p *dipPart) string {
	suffix := p.suffix
	if p.longPads {
		suffix += "_LongPads"
	}
	if p.socket {
		suffix += "_Socket"
	}
	return fmt.Sprintf("%s-%s_W%smm%s",
		p.deviceType,
		pinCountText(p.pins, 0, len(p.deleted)),
		fm(p.rowSpread),
		suffix)
}
