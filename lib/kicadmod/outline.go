package kicadmod

import (
	"github.com/xoviat/kfgen/lib/config"
	"github.com/xoviat/kfgen/lib/geom"
)

/*
AddFabOutline draws the body rectangle on the fab layer with a beveled
top-left corner marking pin 1.
*/
func AddFabOutline(f *Footprint, cfg *config.GlobalConfig, body geom.Rect) {
	bb := body.BoundingBox()
	bevel := cfg.FabBevelSize(minf(body.Size.X, body.Size.Y))
	pts := []geom.Vector2D{
		{X: bb.Min.X + bevel, Y: bb.Min.Y},
		{X: bb.Max.X, Y: bb.Min.Y},
		{X: bb.Max.X, Y: bb.Max.Y},
		{X: bb.Min.X, Y: bb.Max.Y},
		{X: bb.Min.X, Y: bb.Min.Y + bevel},
		{X: bb.Min.X + bevel, Y: bb.Min.Y},
	}
	f.Append(&PolygonLine{Points: pts, Layer: LayerFFab, Width: cfg.FabLineWidth})
}

/*
AddSilkOutline draws the nose-to-nose silk segments for a package whose
pads run along the left and right (or top and bottom) sides. The silk
sits outside the body by the fab offset and stops short of the pads by
the silk clearance. Segments shorter than the configured minimum are
dropped. A triangle arrow next to pin 1 marks orientation.
*/
func AddSilkOutline(f *Footprint, cfg *config.GlobalConfig, body geom.Rect, padsVertical bool) {
	bb := body.BoundingBox()
	off := cfg.SilkFabOffset
	left := bb.Min.X - off
	right := bb.Max.X + off
	top := bb.Min.Y - off
	bottom := bb.Max.Y + off

	copper := f.CopperBoundingBox()
	w := cfg.SilkLineWidth

	if padsVertical {
		// pads on left/right: full lines across top and bottom,
		// clipped in x to the pad clearance
		x0 := copper.Min.X - cfg.SilkPadOffset()
		x1 := copper.Max.X + cfg.SilkPadOffset()
		if x0 < left {
			x0 = left
		}
		if x1 > right {
			x1 = right
		}
		addSilkLine(f, cfg, geom.Vector2D{X: x0, Y: top}, geom.Vector2D{X: x1, Y: top}, w)
		addSilkLine(f, cfg, geom.Vector2D{X: x0, Y: bottom}, geom.Vector2D{X: x1, Y: bottom}, w)
		// pin 1 arrow left of the first pad row
		addPin1Arrow(f, cfg, geom.Vector2D{X: copper.Min.X - 0.5, Y: copper.Min.Y + padEdgeInset(f)}, true)
	} else {
		y0 := copper.Min.Y - cfg.SilkPadOffset()
		y1 := copper.Max.Y + cfg.SilkPadOffset()
		if y0 < top {
			y0 = top
		}
		if y1 > bottom {
			y1 = bottom
		}
		addSilkLine(f, cfg, geom.Vector2D{X: left, Y: y0}, geom.Vector2D{X: left, Y: y1}, w)
		addSilkLine(f, cfg, geom.Vector2D{X: right, Y: y0}, geom.Vector2D{X: right, Y: y1}, w)
		addPin1Arrow(f, cfg, geom.Vector2D{X: copper.Min.X + padEdgeInset(f), Y: copper.Min.Y - 0.5}, false)
	}
}

/*
AddSilkCornerOutline draws silk corner brackets for quad packages with
pads on all four sides, with the pin-1 corner replaced by a single
angled line, and a pin-1 arrow outside the first pad.
*/
func AddSilkCornerOutline(f *Footprint, cfg *config.GlobalConfig, body geom.Rect) {
	bb := body.BoundingBox()
	off := cfg.SilkFabOffset
	left := bb.Min.X - off
	right := bb.Max.X + off
	top := bb.Min.Y - off
	bottom := bb.Max.Y + off

	copper := f.CopperBoundingBox()
	clear := cfg.SilkPadOffset()
	xIn := copper.Min.X - clear
	yIn := copper.Min.Y - clear
	if xIn < left {
		xIn = left
	}
	if yIn < top {
		yIn = top
	}
	w := cfg.SilkLineWidth

	corner := func(cx, cy, dx, dy float64) {
		addSilkLine(f, cfg, geom.Vector2D{X: cx, Y: cy}, geom.Vector2D{X: cx + dx, Y: cy}, w)
		addSilkLine(f, cfg, geom.Vector2D{X: cx, Y: cy}, geom.Vector2D{X: cx, Y: cy + dy}, w)
	}
	lenX := xIn - left
	lenY := yIn - top
	corner(right, top, -lenX, lenY)
	corner(right, bottom, -lenX, -lenY)
	corner(left, bottom, lenX, -lenY)
	// pin-1 corner: one diagonal stroke toward the first pad
	addSilkLine(f, cfg, geom.Vector2D{X: left, Y: yIn}, geom.Vector2D{X: xIn, Y: top}, w)
	addPin1Arrow(f, cfg, geom.Vector2D{X: left - 0.3, Y: yIn}, true)
}

func addSilkLine(f *Footprint, cfg *config.GlobalConfig, a, b geom.Vector2D, width float64) {
	if a.Sub(b).Norm() < cfg.SilkLineLengthMin {
		return
	}
	f.Append(&Line{Start: a, End: b, Layer: LayerFSilk, Width: width})
}

/*
addPin1Arrow draws a small filled triangle pointing at pin 1.
horizontal selects an arrow pointing right (pads on the left side)
over one pointing down.
*/
func addPin1Arrow(f *Footprint, cfg *config.GlobalConfig, tip geom.Vector2D, horizontal bool) {
	const size = 0.5
	var pts []geom.Vector2D
	if horizontal {
		pts = []geom.Vector2D{
			tip,
			{X: tip.X - size, Y: tip.Y - size/2},
			{X: tip.X - size, Y: tip.Y + size/2},
		}
	} else {
		pts = []geom.Vector2D{
			tip,
			{X: tip.X - size/2, Y: tip.Y - size},
			{X: tip.X + size/2, Y: tip.Y - size},
		}
	}
	f.Append(&Polygon{Points: pts, Layer: LayerFSilk, Width: cfg.SilkLineWidth / 2})
}

func padEdgeInset(f *Footprint) float64 {
	pads := f.Pads()
	if len(pads) == 0 {
		return 0
	}
	return pads[0].Size.Y / 2
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
