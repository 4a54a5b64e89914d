// Package kicadmod models a KiCad footprint as a tree of drawing
// primitives and pads, and serializes it to the s-expression
// .kicad_mod format.
package kicadmod

import (
	"github.com/xoviat/kfgen/lib/geom"
)

// Layer names as they appear in the output file.
const (
	LayerFCu        = "F.Cu"
	LayerFPaste     = "F.Paste"
	LayerFMask      = "F.Mask"
	LayerFSilk      = "F.SilkS"
	LayerFFab       = "F.Fab"
	LayerFCourtyard = "F.CrtYd"
	LayerBCu        = "B.Cu"
	LayerBMask      = "B.Mask"
)

// LayersSMD is the stack used for an ordinary surface-mount pad.
var LayersSMD = []string{LayerFCu, LayerFPaste, LayerFMask}

// LayersTHT is the stack used for a plated through hole pad.
var LayersTHT = []string{"*.Cu", "*.Mask"}

// Node is any element that can appear inside a footprint.
type Node interface {
	// write appends the node's s-expressions to the writer.
	write(w *sexpWriter)
}

// Pad shape and type tokens.
const (
	PadShapeRect      = "rect"
	PadShapeRoundRect = "roundrect"
	PadShapeOval      = "oval"
	PadShapeCircle    = "circle"
	PadShapeCustom    = "custom"

	PadTypeSMT     = "smd"
	PadTypeTHT     = "thru_hole"
	PadTypeNPTH    = "np_thru_hole"
	PadTypeConnect = "connect"
)

// Chamfer corner tokens, usable on roundrect pads.
const (
	CornerTopLeft     = "top_left"
	CornerTopRight    = "top_right"
	CornerBottomLeft  = "bottom_left"
	CornerBottomRight = "bottom_right"
)

// Pad is a single footprint pad.
type Pad struct {
	Number string
	Type   string
	Shape  string
	At     geom.Vector2D
	Size   geom.Vector2D
	Drill  float64
	Layers []string

	// RadiusRatio applies to roundrect pads; a ratio of zero with no
	// explicit radius falls back to a plain rect on write. MaxRadius,
	// when positive, caps the resolved corner radius so large pads do
	// not end up with oversized corners.
	RadiusRatio float64
	MaxRadius   float64

	ChamferRatio   float64
	ChamferCorners []string

	// Primitives holds the outline of a custom-shaped pad, expressed
	// relative to the pad position.
	Primitives []Node

	SolderPasteMargin      float64
	SolderPasteMarginRatio float64
	SolderMaskMargin       float64
	Clearance              float64
	ZoneConnect            *int
}

func (p *Pad) write(w *sexpWriter) { writePad(w, p) }

// BoundingBox returns the pad's copper extent. Chamfers and corner
// radii do not shrink it.
func (p *Pad) BoundingBox() geom.BoundingBox {
	var bb geom.BoundingBox
	bb.IncludeRect(geom.Rect{Center: p.At, Size: p.Size})
	return bb
}

// RoundRadius resolves the pad corner radius against a maximum.
func (p *Pad) RoundRadius(maxRadius float64) float64 {
	short := p.Size.X
	if p.Size.Y < short {
		short = p.Size.Y
	}
	r := short * p.RadiusRatio
	if maxRadius > 0 && r > maxRadius {
		r = maxRadius
	}
	return r
}

// Line is a graphic segment on a single layer.
type Line struct {
	Start geom.Vector2D
	End   geom.Vector2D
	Layer string
	Width float64
}

func (l *Line) write(w *sexpWriter) { writeLine(w, l) }

// PolygonLine draws an open polyline as individual segments.
type PolygonLine struct {
	Points []geom.Vector2D
	Layer  string
	Width  float64
}

func (p *PolygonLine) write(w *sexpWriter) {
	for i := 0; i+1 < len(p.Points); i++ {
		writeLine(w, &Line{Start: p.Points[i], End: p.Points[i+1], Layer: p.Layer, Width: p.Width})
	}
}

// Polygon is a filled polygon.
type Polygon struct {
	Points []geom.Vector2D
	Layer  string
	Width  float64
}

func (p *Polygon) write(w *sexpWriter) { writePoly(w, p) }

// Circle is a graphic circle.
type Circle struct {
	Center geom.Vector2D
	Radius float64
	Layer  string
	Width  float64
	Fill   bool
}

func (c *Circle) write(w *sexpWriter) { writeCircle(w, c) }

// RectOutline draws an axis-aligned rectangle as four segments.
type RectOutline struct {
	Rect  geom.Rect
	Layer string
	Width float64
}

func (r *RectOutline) write(w *sexpWriter) {
	bb := r.Rect.BoundingBox()
	pts := []geom.Vector2D{
		{X: bb.Min.X, Y: bb.Min.Y},
		{X: bb.Max.X, Y: bb.Min.Y},
		{X: bb.Max.X, Y: bb.Max.Y},
		{X: bb.Min.X, Y: bb.Max.Y},
		{X: bb.Min.X, Y: bb.Min.Y},
	}
	(&PolygonLine{Points: pts, Layer: r.Layer, Width: r.Width}).write(w)
}

// Text field kinds.
const (
	TextReference = "reference"
	TextValue     = "value"
	TextUser      = "user"
)

// Text is a footprint text field.
type Text struct {
	Kind      string
	Text      string
	At        geom.Vector2D
	Size      geom.Vector2D
	Thickness float64
	Layer     string
}

func (t *Text) write(w *sexpWriter) { writeText(w, t) }

// Model references a 3D model file.
type Model struct {
	Path string
}

func (m *Model) write(w *sexpWriter) { writeModel(w, m) }

// Footprint is the root of a module tree.
type Footprint struct {
	Name  string
	Descr string
	Tags  string
	Attr  string // "smd" or "through_hole"
	nodes []Node
}

// NewFootprint returns an empty footprint with the given name.
func NewFootprint(name string) *Footprint {
	return &Footprint{Name: name}
}

// Append adds nodes to the footprint.
func (f *Footprint) Append(nodes ...Node) {
	f.nodes = append(f.nodes, nodes...)
}

// Nodes returns the footprint's child nodes in insertion order.
func (f *Footprint) Nodes() []Node {
	return f.nodes
}

// Pads returns all pads, in insertion order, including pads nested in
// composite nodes.
func (f *Footprint) Pads() []*Pad {
	var pads []*Pad
	for _, n := range f.nodes {
		pads = append(pads, padsOf(n)...)
	}
	return pads
}

func padsOf(n Node) []*Pad {
	switch v := n.(type) {
	case *Pad:
		return []*Pad{v}
	case interface{ Children() []Node }:
		var pads []*Pad
		for _, c := range v.Children() {
			pads = append(pads, padsOf(c)...)
		}
		return pads
	}
	return nil
}

// CopperBoundingBox returns the extent of all pads.
func (f *Footprint) CopperBoundingBox() geom.BoundingBox {
	var bb geom.BoundingBox
	for _, p := range f.Pads() {
		bb.IncludeBox(p.BoundingBox())
	}
	return bb
}

// BoundingBoxOnLayer returns the extent of graphics on one layer.
func (f *Footprint) BoundingBoxOnLayer(layer string) geom.BoundingBox {
	var bb geom.BoundingBox
	for _, n := range f.nodes {
		includeLayer(&bb, n, layer)
	}
	return bb
}

func includeLayer(bb *geom.BoundingBox, n Node, layer string) {
	switch v := n.(type) {
	case *Line:
		if v.Layer == layer {
			bb.IncludePoint(v.Start)
			bb.IncludePoint(v.End)
		}
	case *PolygonLine:
		if v.Layer == layer {
			for _, p := range v.Points {
				bb.IncludePoint(p)
			}
		}
	case *Polygon:
		if v.Layer == layer {
			for _, p := range v.Points {
				bb.IncludePoint(p)
			}
		}
	case *RectOutline:
		if v.Layer == layer {
			bb.IncludeBox(v.Rect.BoundingBox())
		}
	case *Circle:
		if v.Layer == layer {
			bb.IncludePoint(geom.Vector2D{X: v.Center.X - v.Radius, Y: v.Center.Y - v.Radius})
			bb.IncludePoint(geom.Vector2D{X: v.Center.X + v.Radius, Y: v.Center.Y + v.Radius})
		}
	case interface{ Children() []Node }:
		for _, c := range v.Children() {
			includeLayer(bb, c, layer)
		}
	}
}
