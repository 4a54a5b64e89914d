package kicadmod

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoviat/kfgen/lib/geom"
)

func TestSerializeMinimal(t *testing.T) {
	f := NewFootprint("R_0603_1608Metric")
	f.Descr = "Chip resistor"
	f.Tags = "resistor"
	f.Attr = "smd"
	f.Append(&Pad{
		Number: "1",
		Type:   PadTypeSMT,
		Shape:  PadShapeRoundRect,
		At:     geom.Vector2D{X: -0.825},
		Size:   geom.Vector2D{X: 0.8, Y: 0.95},
		Layers: LayersSMD, RadiusRatio: 0.25,
	})

	out := Serialize(f)

	want := []string{
		`(footprint "R_0603_1608Metric"`,
		`(version 20221018)`,
		`(generator kfgen)`,
		`(layer "F.Cu")`,
		`(descr "Chip resistor")`,
		`(tags "resistor")`,
		`(attr smd)`,
		`(pad "1" smd roundrect (at -0.825 0) (size 0.8 0.95)`,
		`(layers "F.Cu" "F.Paste" "F.Mask")`,
		`(roundrect_rratio 0.25)`,
	}
	for _, w := range want {
		assert.Contains(t, out, w)
	}

	// balanced parentheses
	assert.Equal(t, strings.Count(out, "("), strings.Count(out, ")"))
}

func TestSerializeDeterministic(t *testing.T) {
	build := func() string {
		f := NewFootprint("test")
		f.Append(&Line{Start: geom.Vector2D{X: -1, Y: -1}, End: geom.Vector2D{X: 1, Y: -1}, Layer: LayerFSilk, Width: 0.12})
		f.Append(&Circle{Center: geom.Vector2D{}, Radius: 0.5, Layer: LayerFFab, Width: 0.1})
		return Serialize(f)
	}
	a, b := build(), build()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("serialization not deterministic:\n%s", diff)
	}
}

func TestFloatFormatting(t *testing.T) {
	assert.Equal(t, "0", fv(0))
	assert.Equal(t, "0", fv(-0.0))
	assert.Equal(t, "-0.825", fv(-0.825))
	assert.Equal(t, "10.85", fv(10.85))
	assert.Equal(t, "1", fv(1.0))
	assert.NotContains(t, fv(1e-7), "e", "no scientific notation")
}

func TestSerializePadExtras(t *testing.T) {
	zone := 2
	f := NewFootprint("pads")
	f.Append(&Pad{
		Number:         "9",
		Type:           PadTypeSMT,
		Shape:          PadShapeRoundRect,
		Size:           geom.Vector2D{X: 4, Y: 4},
		Layers:         []string{LayerFCu},
		RadiusRatio:    0.25,
		ChamferRatio:   0.2,
		ChamferCorners: []string{CornerTopLeft},
		ZoneConnect:    &zone,
	})
	f.Append(&Pad{
		Number: "10",
		Type:   PadTypeTHT,
		Shape:  PadShapeCircle,
		Size:   geom.Vector2D{X: 0.6, Y: 0.6},
		Drill:  0.3,
		Layers: []string{"*.Cu"},
	})

	out := Serialize(f)
	assert.Contains(t, out, `(chamfer_ratio 0.2)`)
	assert.Contains(t, out, `(chamfer top_left)`)
	assert.Contains(t, out, `(zone_connect 2)`)
	assert.Contains(t, out, `(drill 0.3)`)
	assert.Contains(t, out, `(pad "10" thru_hole circle`)
}

func TestRoundRectRadiusClamped(t *testing.T) {
	f := NewFootprint("clamp")
	f.Append(&Pad{
		Number:      "17",
		Type:        PadTypeSMT,
		Shape:       PadShapeRoundRect,
		Size:        geom.Vector2D{X: 7, Y: 7},
		Layers:      LayersSMD,
		RadiusRatio: 0.25,
		MaxRadius:   0.25,
	})
	out := Serialize(f)
	// 0.25 of a 7 mm pad would be a 1.75 mm radius; the cap keeps it
	// at 0.25 mm, so the written ratio is 0.25/7
	assert.Contains(t, out, `(roundrect_rratio 0.035714)`)
	assert.NotContains(t, out, `(roundrect_rratio 0.25)`)
}

func TestRoundRectFallsBackToRect(t *testing.T) {
	f := NewFootprint("fallback")
	f.Append(&Pad{
		Number: "1",
		Type:   PadTypeSMT,
		Shape:  PadShapeRoundRect,
		Size:   geom.Vector2D{X: 1, Y: 1},
		Layers: []string{LayerFCu},
	})
	out := Serialize(f)
	assert.Contains(t, out, `(pad "1" smd rect`)
	assert.NotContains(t, out, "roundrect_rratio")
}

func TestQuoteEscapes(t *testing.T) {
	require.Equal(t, `"a \"b\""`, quote(`a "b"`))
}
