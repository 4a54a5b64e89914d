package kicadmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoviat/kfgen/lib/geom"
)

func testTemplate() Pad {
	return Pad{
		Type:   PadTypeSMT,
		Shape:  PadShapeRoundRect,
		Size:   geom.Vector2D{X: 1.5, Y: 0.6},
		Layers: LayersSMD,
	}
}

func TestPadArray(t *testing.T) {
	arr := &PadArray{
		Template: testTemplate(),
		Count:    4,
		Start:    geom.Vector2D{X: -3, Y: -1.905},
		Spacing:  geom.Vector2D{Y: 1.27},
	}
	pads := arr.Build()
	require.Len(t, pads, 4)
	assert.Equal(t, "1", pads[0].Number)
	assert.Equal(t, "4", pads[3].Number)
	assert.InDelta(t, -1.905, pads[0].At.Y, 1e-9)
	assert.InDelta(t, 1.905, pads[3].At.Y, 1e-9)
	assert.InDelta(t, -3, pads[3].At.X, 1e-9)
}

func TestPadArrayDeletedPins(t *testing.T) {
	arr := &PadArray{
		Template:    testTemplate(),
		Count:       4,
		Spacing:     geom.Vector2D{Y: 1.27},
		DeletedPins: PinSet([]int{2}),
	}
	pads := arr.Build()
	require.Len(t, pads, 3)
	// the position gap stays, the numbering too
	assert.Equal(t, []string{"1", "3", "4"}, padNumbers(pads))
	assert.InDelta(t, 2*1.27, pads[1].At.Y-pads[0].At.Y, 1e-9)
}

func TestPadArrayHiddenPins(t *testing.T) {
	arr := &PadArray{
		Template:   testTemplate(),
		Count:      3,
		Spacing:    geom.Vector2D{Y: 1.0},
		HiddenPins: PinSet([]int{2}),
	}
	pads := arr.Build()
	// the pad is absent but the number is consumed, so the row keeps
	// its positional gap and the later pads keep their numbers
	require.Len(t, pads, 2)
	assert.Equal(t, []string{"1", "3"}, padNumbers(pads))
	assert.InDelta(t, 2.0, pads[1].At.Y-pads[0].At.Y, 1e-9)
}

func padNumbers(pads []*Pad) []string {
	nums := make([]string, len(pads))
	for i, p := range pads {
		nums[i] = p.Number
	}
	return nums
}

func TestIncrementNumbers(t *testing.T) {
	gen := IncrementNumbers(10, 10)
	assert.Equal(t, "10", gen(0))
	assert.Equal(t, "30", gen(2))
}

func TestQuadBorderNumbering(t *testing.T) {
	q := &QuadBorder{Params: QuadParams{
		Template: testTemplate(),
		PinsX:    4,
		PinsY:    4,
		Pitch:    0.5,
		CenterX:  -4.5,
		CenterY:  -4.5,
	}}
	require.NoError(t, q.Validate())
	assert.Equal(t, 16, q.PadCount())

	rows := q.Build()
	require.Len(t, rows, 4)

	var all []*Pad
	for _, row := range rows {
		all = append(all, row.Build()...)
	}
	require.Len(t, all, 16)

	// CCW from the top of the left side
	assert.Equal(t, "1", all[0].Number)
	assert.Equal(t, "16", all[15].Number)

	// pin 1 top left, going down
	assert.Less(t, all[0].At.X, 0.0)
	assert.Less(t, all[0].At.Y, all[3].At.Y)
	// bottom row runs left to right
	assert.Equal(t, "5", all[4].Number)
	assert.Greater(t, all[4].At.Y, 0.0)
	assert.Less(t, all[4].At.X, all[7].At.X)
	// right row runs bottom to top
	assert.Equal(t, "9", all[8].Number)
	assert.Greater(t, all[8].At.X, 0.0)
	assert.Greater(t, all[8].At.Y, all[11].At.Y)
	// top row runs right to left
	assert.Equal(t, "13", all[12].Number)
	assert.Less(t, all[12].At.Y, 0.0)
	assert.Greater(t, all[12].At.X, all[15].At.X)

	// horizontal rows swap the pad size axes
	assert.Equal(t, all[0].Size.X, all[4].Size.Y)
	assert.Equal(t, all[0].Size.Y, all[4].Size.X)
}

func TestQuadBorderChamfer(t *testing.T) {
	q := &QuadBorder{Params: QuadParams{
		Template:     testTemplate(),
		PinsX:        2,
		PinsY:        2,
		Pitch:        0.65,
		CenterX:      -3,
		CenterY:      -3,
		ChamferFirst: true,
		ChamferRatio: 0.25,
	}}
	rows := q.Build()
	corners := []string{CornerTopLeft, CornerBottomLeft, CornerBottomRight, CornerTopRight}
	for i, row := range rows {
		first := row.First()
		require.NotNil(t, first)
		assert.Equal(t, []string{corners[i]}, first.ChamferCorners, "row %d", i)
	}
}

func TestQuadBorderEdgeSizeReduce(t *testing.T) {
	q := &QuadBorder{Params: QuadParams{
		Template:       testTemplate(),
		PinsX:          3,
		PinsY:          3,
		Pitch:          0.5,
		CenterX:        -3,
		CenterY:        -3,
		EdgeSizeReduce: 0.2,
	}}
	rows := q.Build()
	require.Len(t, rows, 4)

	tpl := testTemplate()
	left := rows[0].Build()
	// end pads lose 0.2 from the heel edge, the toe edge stays put
	assert.InDelta(t, tpl.Size.X-0.2, left[0].Size.X, 1e-9)
	assert.InDelta(t, -3-0.1, left[0].At.X, 1e-9)
	assert.InDelta(t, tpl.Size.X-0.2, left[2].Size.X, 1e-9)
	// the middle pad keeps the full size
	assert.InDelta(t, tpl.Size.X, left[1].Size.X, 1e-9)

	bottom := rows[1].Build()
	assert.InDelta(t, tpl.Size.X-0.2, bottom[0].Size.Y, 1e-9)
	assert.InDelta(t, 3+0.1, bottom[0].At.Y, 1e-9)

	right := rows[2].Build()
	assert.InDelta(t, 3+0.1, right[0].At.X, 1e-9)

	top := rows[3].Build()
	assert.InDelta(t, -3-0.1, top[0].At.Y, 1e-9)
}

func TestQuadBorderValidate(t *testing.T) {
	q := &QuadBorder{Params: QuadParams{Template: testTemplate(), PinsX: 2, PinsY: 2}}
	assert.Error(t, q.Validate(), "zero pitch")
}
