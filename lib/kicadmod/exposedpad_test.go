package kicadmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoviat/kfgen/lib/geom"
)

func TestExposedPadPlain(t *testing.T) {
	ep := &ExposedPad{Params: ExposedPadParams{
		Number: "9",
		Size:   geom.Vector2D{X: 4.5, Y: 4.5},
	}}
	nodes, err := ep.Build()
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	main := nodes[0].(*Pad)
	assert.Equal(t, "9", main.Number)
	// no paste grid: the pad prints its own paste
	assert.Contains(t, main.Layers, LayerFPaste)
	assert.Contains(t, main.Layers, LayerFMask)
}

func TestExposedPadPasteGrid(t *testing.T) {
	ep := &ExposedPad{Params: ExposedPadParams{
		Number:      "9",
		Size:        geom.Vector2D{X: 4.0, Y: 4.0},
		PasteCountX: 2,
		PasteCountY: 2,
	}}
	nodes, err := ep.Build()
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	main := nodes[0].(*Pad)
	assert.NotContains(t, main.Layers, LayerFPaste)

	var pasteArea float64
	for _, n := range nodes[1:] {
		p := n.(*Pad)
		assert.Equal(t, []string{LayerFPaste}, p.Layers)
		assert.Empty(t, p.Number)
		pasteArea += p.Size.X * p.Size.Y
	}
	assert.InDelta(t, defaultPasteCoverage, pasteArea/(4.0*4.0), 1e-9)
}

func TestExposedPadCustomMask(t *testing.T) {
	ep := &ExposedPad{Params: ExposedPadParams{
		Number:   "9",
		Size:     geom.Vector2D{X: 4.0, Y: 4.0},
		MaskSize: geom.Vector2D{X: 3.6, Y: 3.6},
	}}
	nodes, err := ep.Build()
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	main := nodes[0].(*Pad)
	assert.NotContains(t, main.Layers, LayerFMask)

	mask := nodes[1].(*Pad)
	assert.Equal(t, []string{LayerFMask}, mask.Layers)
	assert.Equal(t, geom.Vector2D{X: 3.6, Y: 3.6}, mask.Size)
}

func TestExposedPadThermalVias(t *testing.T) {
	ep := &ExposedPad{Params: ExposedPadParams{
		Number:     "9",
		Size:       geom.Vector2D{X: 4.0, Y: 4.0},
		ViaCountX:  3,
		ViaCountY:  3,
		ViaDrill:   0.3,
		ViaAnnular: 0.15,
		BottomPad:  true,
	}}
	nodes, err := ep.Build()
	require.NoError(t, err)

	var vias []*Pad
	var bottom *Pad
	for _, n := range nodes[1:] {
		p := n.(*Pad)
		if p.Type == PadTypeTHT {
			vias = append(vias, p)
		} else {
			bottom = p
		}
	}
	require.Len(t, vias, 9)
	require.NotNil(t, bottom)

	// via size is drill plus annular ring on both sides
	assert.InDelta(t, 0.6, vias[0].Size.X, 1e-9)
	assert.Equal(t, "9", vias[0].Number)
	assert.Equal(t, []string{LayerBCu}, bottom.Layers)

	// the field is centred on the pad
	var bb geom.BoundingBox
	for _, v := range vias {
		bb.IncludePoint(v.At)
	}
	assert.InDelta(t, 0, bb.Center().X, 1e-9)
	assert.InDelta(t, 0, bb.Center().Y, 1e-9)
}

func TestExposedPadViaFieldTooLarge(t *testing.T) {
	ep := &ExposedPad{Params: ExposedPadParams{
		Number:    "9",
		Size:      geom.Vector2D{X: 2.0, Y: 2.0},
		ViaCountX: 4,
		ViaCountY: 4,
		ViaDrill:  0.3,
		ViaGrid:   geom.Vector2D{X: 1.0, Y: 1.0},
	}}
	_, err := ep.Build()
	assert.Error(t, err)
}

func TestExposedPadRejectsZeroSize(t *testing.T) {
	ep := &ExposedPad{Params: ExposedPadParams{Number: "9"}}
	_, err := ep.Build()
	assert.Error(t, err)
}
