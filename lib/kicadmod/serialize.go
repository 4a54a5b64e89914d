package kicadmod

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xoviat/kfgen/lib/geom"
)

const fileVersion = 20221018

type sexpWriter struct {
	sb     strings.Builder
	indent int
}

func (w *sexpWriter) line(format string, args ...interface{}) {
	w.sb.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *sexpWriter) open(format string, args ...interface{}) {
	w.line(format, args...)
	w.indent++
}

func (w *sexpWriter) close() {
	w.indent--
	w.line(")")
}

/*
fv formats a coordinate the way KiCad writes them: shortest decimal
form, never scientific notation, and never "-0".
*/
func fv(x float64) string {
	if x == 0 {
		return "0"
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func layerList(layers []string) string {
	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = quote(l)
	}
	return strings.Join(parts, " ")
}

// Serialize renders the footprint in .kicad_mod format.
func Serialize(f *Footprint) string {
	w := &sexpWriter{}
	w.open("(footprint %s", quote(f.Name))
	w.line("(version %d)", fileVersion)
	w.line("(generator kfgen)")
	w.line("(layer %s)", quote(LayerFCu))
	if f.Descr != "" {
		w.line("(descr %s)", quote(f.Descr))
	}
	if f.Tags != "" {
		w.line("(tags %s)", quote(f.Tags))
	}
	if f.Attr != "" {
		w.line("(attr %s)", f.Attr)
	}
	for _, n := range f.nodes {
		n.write(w)
	}
	w.close()
	return w.sb.String()
}

// WriteFile serializes the footprint to path.
func WriteFile(f *Footprint, path string) error {
	return os.WriteFile(path, []byte(Serialize(f)), 0644)
}

func writeLine(w *sexpWriter, l *Line) {
	w.open("(fp_line (start %s %s) (end %s %s)", fv(l.Start.X), fv(l.Start.Y), fv(l.End.X), fv(l.End.Y))
	w.line("(stroke (width %s) (type solid)) (layer %s)", fv(l.Width), quote(l.Layer))
	w.close()
}

func writeCircle(w *sexpWriter, c *Circle) {
	fill := "none"
	if c.Fill {
		fill = "solid"
	}
	w.open("(fp_circle (center %s %s) (end %s %s)",
		fv(c.Center.X), fv(c.Center.Y), fv(c.Center.X+c.Radius), fv(c.Center.Y))
	w.line("(stroke (width %s) (type solid)) (fill %s) (layer %s)", fv(c.Width), fill, quote(c.Layer))
	w.close()
}

func writePoly(w *sexpWriter, p *Polygon) {
	w.open("(fp_poly")
	writePts(w, p.Points)
	w.line("(stroke (width %s) (type solid)) (fill solid) (layer %s)", fv(p.Width), quote(p.Layer))
	w.close()
}

func writePts(w *sexpWriter, points []geom.Vector2D) {
	w.open("(pts")
	for _, pt := range points {
		w.line("(xy %s %s)", fv(pt.X), fv(pt.Y))
	}
	w.close()
}

func writeText(w *sexpWriter, t *Text) {
	token := "fp_text"
	w.open("(%s %s %s (at %s %s) (layer %s)", token, t.Kind, quote(t.Text), fv(t.At.X), fv(t.At.Y), quote(t.Layer))
	w.open("(effects")
	w.line("(font (size %s %s) (thickness %s))", fv(t.Size.X), fv(t.Size.Y), fv(t.Thickness))
	w.close()
	w.close()
}

func writeModel(w *sexpWriter, m *Model) {
	w.open("(model %s", quote(m.Path))
	w.line("(offset (xyz 0 0 0))")
	w.line("(scale (xyz 1 1 1))")
	w.line("(rotate (xyz 0 0 0))")
	w.close()
}

// roundRectRatio resolves the corner radius ratio actually written,
// after the max-radius clamp.
func roundRectRatio(p *Pad) float64 {
	short := p.Size.X
	if p.Size.Y < short {
		short = p.Size.Y
	}
	if short <= 0 {
		return p.RadiusRatio
	}
	return geom.RoundToGridNearest(p.RoundRadius(p.MaxRadius)/short, 1e-6)
}

func writePad(w *sexpWriter, p *Pad) {
	shape := p.Shape
	if shape == PadShapeRoundRect && p.RadiusRatio == 0 {
		shape = PadShapeRect
	}
	w.open("(pad %s %s %s (at %s %s) (size %s %s)",
		quote(p.Number), p.Type, shape, fv(p.At.X), fv(p.At.Y), fv(p.Size.X), fv(p.Size.Y))
	if p.Drill > 0 {
		w.line("(drill %s)", fv(p.Drill))
	}
	w.line("(layers %s)", layerList(p.Layers))
	if shape == PadShapeRoundRect {
		w.line("(roundrect_rratio %s)", fv(roundRectRatio(p)))
	}
	if len(p.ChamferCorners) > 0 {
		w.line("(chamfer_ratio %s)", fv(p.ChamferRatio))
		w.line("(chamfer %s)", strings.Join(p.ChamferCorners, " "))
	}
	if p.SolderPasteMargin != 0 {
		w.line("(solder_paste_margin %s)", fv(p.SolderPasteMargin))
	}
	if p.SolderPasteMarginRatio != 0 {
		w.line("(solder_paste_margin_ratio %s)", fv(p.SolderPasteMarginRatio))
	}
	if p.SolderMaskMargin != 0 {
		w.line("(solder_mask_margin %s)", fv(p.SolderMaskMargin))
	}
	if p.Clearance != 0 {
		w.line("(clearance %s)", fv(p.Clearance))
	}
	if p.ZoneConnect != nil {
		w.line("(zone_connect %d)", *p.ZoneConnect)
	}
	if len(p.Primitives) > 0 {
		w.open("(primitives")
		for _, n := range p.Primitives {
			writePrimitive(w, n)
		}
		w.close()
	}
	w.close()
}

/*
Custom pad primitives use gr_* tokens and carry their own stroke, so
they get a dedicated writer instead of reusing the fp_* one.
*/
func writePrimitive(w *sexpWriter, n Node) {
	switch v := n.(type) {
	case *Polygon:
		w.open("(gr_poly")
		writePts(w, v.Points)
		w.line("(width %s) (fill yes)", fv(v.Width))
		w.close()
	case *Line:
		w.line("(gr_line (start %s %s) (end %s %s) (width %s))",
			fv(v.Start.X), fv(v.Start.Y), fv(v.End.X), fv(v.End.Y), fv(v.Width))
	case *Circle:
		w.line("(gr_circle (center %s %s) (end %s %s) (width %s))",
			fv(v.Center.X), fv(v.Center.Y), fv(v.Center.X+v.Radius), fv(v.Center.Y), fv(v.Width))
	}
}
