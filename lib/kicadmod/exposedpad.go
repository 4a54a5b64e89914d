package kicadmod

import (
	"fmt"
	"math"

	"github.com/xoviat/kfgen/lib/geom"
)

// ExposedPadParams describes an exposed thermal pad, optionally with a
// subdivided paste print and a thermal via field.
type ExposedPadParams struct {
	Number string
	At     geom.Vector2D
	Size   geom.Vector2D

	// MaskSize, when nonzero, opens a mask window of a different size
	// than the copper.
	MaskSize geom.Vector2D

	// Paste subdivision. A zero count on either axis disables the
	// grid and the pad keeps its full paste aperture.
	PasteCountX   int
	PasteCountY   int
	PasteCoverage float64

	// Thermal vias. ViaGrid zero means the grid is spread evenly
	// across the pad.
	ViaCountX  int
	ViaCountY  int
	ViaDrill   float64
	ViaAnnular float64
	ViaGrid    geom.Vector2D

	// BottomPad adds a copper pad on the back spanning the via field.
	BottomPad bool

	RoundRadiusRatio float64
	MaxRoundRadius   float64
}

// ExposedPad builds the node set for an exposed pad.
type ExposedPad struct {
	Params ExposedPadParams
	nodes  []Node
}

const defaultPasteCoverage = 0.65

// Build instantiates the pad stack. It is idempotent.
func (e *ExposedPad) Build() ([]Node, error) {
	if e.nodes != nil {
		return e.nodes, nil
	}
	p := e.Params
	if p.Size.X <= 0 || p.Size.Y <= 0 {
		return nil, fmt.Errorf("exposed pad size must be positive, got %v", p.Size)
	}

	paste := p.PasteCountX > 0 && p.PasteCountY > 0
	customMask := p.MaskSize.X > 0 && p.MaskSize.Y > 0

	layers := []string{LayerFCu}
	if !customMask {
		layers = append(layers, LayerFMask)
	}
	if !paste {
		layers = append(layers, LayerFPaste)
	}
	zone := 2
	main := &Pad{
		Number:      p.Number,
		Type:        PadTypeSMT,
		Shape:       PadShapeRoundRect,
		At:          p.At,
		Size:        p.Size,
		Layers:      layers,
		RadiusRatio: p.RoundRadiusRatio,
		MaxRadius:   p.MaxRoundRadius,
		ZoneConnect: &zone,
	}
	e.nodes = append(e.nodes, main)

	if customMask {
		e.nodes = append(e.nodes, &Pad{
			Number: "",
			Type:   PadTypeSMT,
			Shape:  PadShapeRoundRect,
			At:     p.At,
			Size:   p.MaskSize,
			Layers: []string{LayerFMask},
		})
	}

	if paste {
		e.nodes = append(e.nodes, e.pasteGrid()...)
	}

	if p.ViaCountX > 0 && p.ViaCountY > 0 && p.ViaDrill > 0 {
		vias, bottom, err := e.viaField()
		if err != nil {
			return nil, err
		}
		e.nodes = append(e.nodes, vias...)
		if bottom != nil {
			e.nodes = append(e.nodes, bottom)
		}
	}
	return e.nodes, nil
}

/*
pasteGrid splits the paste print into an nx by ny grid of apertures
whose total area is the requested coverage fraction of the copper.
*/
func (e *ExposedPad) pasteGrid() []Node {
	p := e.Params
	coverage := p.PasteCoverage
	if coverage <= 0 || coverage > 1 {
		coverage = defaultPasteCoverage
	}
	nx, ny := p.PasteCountX, p.PasteCountY
	scale := math.Sqrt(coverage)
	aperture := geom.Vector2D{
		X: p.Size.X / float64(nx) * scale,
		Y: p.Size.Y / float64(ny) * scale,
	}
	stepX := p.Size.X / float64(nx)
	stepY := p.Size.Y / float64(ny)
	origin := geom.Vector2D{
		X: p.At.X - p.Size.X/2 + stepX/2,
		Y: p.At.Y - p.Size.Y/2 + stepY/2,
	}
	var nodes []Node
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			nodes = append(nodes, &Pad{
				Number: "",
				Type:   PadTypeSMT,
				Shape:  PadShapeRoundRect,
				At: geom.Vector2D{
					X: origin.X + float64(ix)*stepX,
					Y: origin.Y + float64(iy)*stepY,
				},
				Size:        aperture,
				Layers:      []string{LayerFPaste},
				RadiusRatio: p.RoundRadiusRatio,
				MaxRadius:   p.MaxRoundRadius,
			})
		}
	}
	return nodes
}

func (e *ExposedPad) viaField() ([]Node, *Pad, error) {
	p := e.Params
	viaSize := p.ViaDrill + 2*p.ViaAnnular
	grid := p.ViaGrid
	if grid.X == 0 && p.ViaCountX > 1 {
		grid.X = geom.RoundToGridDown((p.Size.X-viaSize)/float64(p.ViaCountX-1), 0.01, 1e-7)
	}
	if grid.Y == 0 && p.ViaCountY > 1 {
		grid.Y = geom.RoundToGridDown((p.Size.Y-viaSize)/float64(p.ViaCountY-1), 0.01, 1e-7)
	}
	spanX := grid.X * float64(p.ViaCountX-1)
	spanY := grid.Y * float64(p.ViaCountY-1)
	if spanX+viaSize > p.Size.X || spanY+viaSize > p.Size.Y {
		return nil, nil, fmt.Errorf(
			"thermal via field (%dx%d at %v) does not fit pad %v",
			p.ViaCountX, p.ViaCountY, grid, p.Size)
	}
	origin := geom.Vector2D{X: p.At.X - spanX/2, Y: p.At.Y - spanY/2}
	var nodes []Node
	for iy := 0; iy < p.ViaCountY; iy++ {
		for ix := 0; ix < p.ViaCountX; ix++ {
			nodes = append(nodes, &Pad{
				Number: p.Number,
				Type:   PadTypeTHT,
				Shape:  PadShapeCircle,
				At: geom.Vector2D{
					X: origin.X + float64(ix)*grid.X,
					Y: origin.Y + float64(iy)*grid.Y,
				},
				Size:   geom.Vector2D{X: viaSize, Y: viaSize},
				Drill:  p.ViaDrill,
				Layers: []string{"*.Cu"},
			})
		}
	}
	var bottom *Pad
	if p.BottomPad {
		zone := 2
		bottom = &Pad{
			Number:      p.Number,
			Type:        PadTypeSMT,
			Shape:       PadShapeRoundRect,
			At:          p.At,
			Size:        geom.Vector2D{X: spanX + viaSize, Y: spanY + viaSize},
			Layers:      []string{LayerBCu},
			RadiusRatio: p.RoundRadiusRatio,
			MaxRadius:   p.MaxRoundRadius,
			ZoneConnect: &zone,
		}
	}
	return nodes, bottom, nil
}

// Children exposes the built nodes to tree walkers.
func (e *ExposedPad) Children() []Node {
	nodes, err := e.Build()
	if err != nil {
		return nil
	}
	return nodes
}

func (e *ExposedPad) write(w *sexpWriter) {
	nodes, err := e.Build()
	if err != nil {
		return
	}
	for _, n := range nodes {
		n.write(w)
	}
}
