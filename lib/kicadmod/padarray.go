package kicadmod

import (
	"fmt"
	"strconv"

	"github.com/xoviat/kfgen/lib/geom"
)

// NumberGenerator produces pad numbers in sequence.
type NumberGenerator func(index int) string

// IncrementNumbers numbers pads first, first+step, first+2*step, ...
func IncrementNumbers(first, step int) NumberGenerator {
	return func(index int) string {
		return strconv.Itoa(first + index*step)
	}
}

// OffsetNumbers numbers pads starting at first with step one.
func OffsetNumbers(first int) NumberGenerator {
	return IncrementNumbers(first, 1)
}

// PadArray is a linear run of equal pads. Deleted and hidden pins both
// leave a positional gap in the row; the remaining pads keep their
// numbers, so the skipped number is consumed either way.
type PadArray struct {
	Template Pad
	Count    int
	Start    geom.Vector2D
	Spacing  geom.Vector2D
	Numbers  NumberGenerator

	DeletedPins map[string]bool
	HiddenPins  map[string]bool

	pads []*Pad
}

// PinSet converts a pin number list into the set form used by
// PadArray.
func PinSet(pins []int) map[string]bool {
	if len(pins) == 0 {
		return nil
	}
	set := make(map[string]bool, len(pins))
	for _, p := range pins {
		set[strconv.Itoa(p)] = true
	}
	return set
}

// Build instantiates the pads. It is idempotent.
func (a *PadArray) Build() []*Pad {
	if a.pads != nil {
		return a.pads
	}
	gen := a.Numbers
	if gen == nil {
		gen = OffsetNumbers(1)
	}
	for i := 0; i < a.Count; i++ {
		num := gen(i)
		if a.DeletedPins[num] || a.HiddenPins[num] {
			continue
		}
		pad := a.Template
		pad.Number = num
		pad.At = a.Start.Add(a.Spacing.Scale(float64(i)))
		a.pads = append(a.pads, &pad)
	}
	return a.pads
}

// Children exposes the built pads to tree walkers.
func (a *PadArray) Children() []Node {
	pads := a.Build()
	nodes := make([]Node, len(pads))
	for i, p := range pads {
		nodes[i] = p
	}
	return nodes
}

func (a *PadArray) write(w *sexpWriter) {
	for _, p := range a.Build() {
		p.write(w)
	}
}

// First returns the first surviving pad of the row, or nil.
func (a *PadArray) First() *Pad {
	pads := a.Build()
	if len(pads) == 0 {
		return nil
	}
	return pads[0]
}

// QuadSide identifies one side of a quad border in CCW pin order.
type QuadSide int

const (
	SideLeft QuadSide = iota
	SideBottom
	SideRight
	SideTop
)

// QuadParams describes the pad borders for a four-sided package.
type QuadParams struct {
	Template    Pad // size is for a left-side (vertical row) pad
	PinsX       int // pads on top and bottom
	PinsY       int // pads on left and right
	Pitch       float64
	CenterX     float64 // x of the left/right pad centers (negative for left)
	CenterY     float64 // y of the top/bottom pad centers (negative for top)
	DeletedPins map[string]bool
	HiddenPins  map[string]bool

	// ChamferFirst bevels the corner of the pin-1 end pad of each
	// row, rotating around the package.
	ChamferFirst bool
	ChamferRatio float64

	// EdgeSizeReduce trims the heel (package-facing) edge of the first
	// and last pad of every row, to gain clearance at the corners.
	EdgeSizeReduce float64
}

// QuadBorder builds the four pad rows of a quad package, numbered CCW
// starting at the top of the left side.
type QuadBorder struct {
	Params QuadParams
	arrays []*PadArray
}

func rowSpan(n int, pitch float64) float64 {
	return float64(n-1) * pitch
}

// Build instantiates the four rows.
func (q *QuadBorder) Build() []*PadArray {
	if q.arrays != nil {
		return q.arrays
	}
	p := q.Params
	sizeAcross := p.Template.Size.X // across the row (perpendicular)
	sizeAlong := p.Template.Size.Y  // along the row

	next := 1
	row := func(side QuadSide, count int, start, spacing geom.Vector2D, sz geom.Vector2D) {
		tpl := p.Template
		tpl.Size = sz
		arr := &PadArray{
			Template:    tpl,
			Count:       count,
			Start:       start,
			Spacing:     spacing,
			Numbers:     OffsetNumbers(next),
			DeletedPins: p.DeletedPins,
			HiddenPins:  p.HiddenPins,
		}
		applyEdgeTreatment(arr, side, p)
		q.arrays = append(q.arrays, arr)
		next += count
	}

	spanY := rowSpan(p.PinsY, p.Pitch)
	spanX := rowSpan(p.PinsX, p.Pitch)

	row(SideLeft, p.PinsY,
		geom.Vector2D{X: p.CenterX, Y: -spanY / 2},
		geom.Vector2D{Y: p.Pitch},
		geom.Vector2D{X: sizeAcross, Y: sizeAlong})
	row(SideBottom, p.PinsX,
		geom.Vector2D{X: -spanX / 2, Y: -p.CenterY},
		geom.Vector2D{X: p.Pitch},
		geom.Vector2D{X: sizeAlong, Y: sizeAcross})
	row(SideRight, p.PinsY,
		geom.Vector2D{X: -p.CenterX, Y: spanY / 2},
		geom.Vector2D{Y: -p.Pitch},
		geom.Vector2D{X: sizeAcross, Y: sizeAlong})
	row(SideTop, p.PinsX,
		geom.Vector2D{X: spanX / 2, Y: p.CenterY},
		geom.Vector2D{X: -p.Pitch},
		geom.Vector2D{X: sizeAlong, Y: sizeAcross})
	return q.arrays
}

/*
applyEdgeTreatment chamfers the leading corner of each row and trims
the heel of the end pads. Chamfer corners rotate CCW with the rows: the
lead pad of the left row is cut at its top-left toward the top row, and
so on around the package. Only this single-corner rotating set is
supported; per-pad corner selection is not.
*/
func applyEdgeTreatment(arr *PadArray, side QuadSide, p QuadParams) {
	pads := arr.Build()
	if len(pads) == 0 {
		return
	}
	if p.EdgeSizeReduce > 0 {
		heel := func(pad *Pad) {
			switch side {
			case SideLeft:
				pad.Size.X -= p.EdgeSizeReduce
				pad.At.X -= p.EdgeSizeReduce / 2
			case SideBottom:
				pad.Size.Y -= p.EdgeSizeReduce
				pad.At.Y += p.EdgeSizeReduce / 2
			case SideRight:
				pad.Size.X -= p.EdgeSizeReduce
				pad.At.X += p.EdgeSizeReduce / 2
			case SideTop:
				pad.Size.Y -= p.EdgeSizeReduce
				pad.At.Y -= p.EdgeSizeReduce / 2
			}
		}
		heel(pads[0])
		if len(pads) > 1 {
			heel(pads[len(pads)-1])
		}
	}
	if p.ChamferFirst && p.ChamferRatio > 0 {
		first := pads[0]
		first.Shape = PadShapeRoundRect
		first.ChamferRatio = p.ChamferRatio
		switch side {
		case SideLeft:
			first.ChamferCorners = []string{CornerTopLeft}
		case SideBottom:
			first.ChamferCorners = []string{CornerBottomLeft}
		case SideRight:
			first.ChamferCorners = []string{CornerBottomRight}
		case SideTop:
			first.ChamferCorners = []string{CornerTopRight}
		}
	}
}

// Children exposes the built rows to tree walkers.
func (q *QuadBorder) Children() []Node {
	arrays := q.Build()
	nodes := make([]Node, len(arrays))
	for i, a := range arrays {
		nodes[i] = a
	}
	return nodes
}

func (q *QuadBorder) write(w *sexpWriter) {
	for _, a := range q.Build() {
		a.write(w)
	}
}

// PadCount reports the nominal pin count of the border before
// deletions.
func (q *QuadBorder) PadCount() int {
	return 2*q.Params.PinsX + 2*q.Params.PinsY
}

// Validate rejects impossible border parameters.
func (q *QuadBorder) Validate() error {
	if q.Params.PinsX < 0 || q.Params.PinsY < 0 {
		return fmt.Errorf("negative pin count")
	}
	if q.Params.Pitch <= 0 {
		return fmt.Errorf("pitch must be positive, got %v", q.Params.Pitch)
	}
	return nil
}
