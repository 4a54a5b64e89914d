package generators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoviat/kfgen/lib/kicadmod"
	"github.com/xoviat/kfgen/lib/spec"
)

func chip0603Record() map[string]interface{} {
	return map[string]interface{}{
		"device_type":        "R",
		"size_code_metric":   "1608",
		"size_code_imperial": "0603",
		"body_length":        "1.55 ... 1.65",
		"body_width":         "0.75 ... 0.85",
		"terminal_length":    "0.25 ... 0.35",
	}
}

func TestTwoTerminalChip(t *testing.T) {
	g, err := Lookup("twoterminal")
	require.NoError(t, err)

	env := testEnv(t)
	env.Header = spec.Header{LibrarySuffix: "R"}

	results, err := g.Generate("r0603", chip0603Record(), env)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "R_0603_1608Metric", r.Name)
	assert.Equal(t, "Package_R", r.Library)

	pads := r.Footprint.Pads()
	require.Len(t, pads, 2)
	assert.Equal(t, "1", pads[0].Number)
	assert.Equal(t, "2", pads[1].Number)
	assert.InDelta(t, -pads[0].At.X, pads[1].At.X, 1e-9)
	assert.Less(t, pads[0].At.X, 0.0)
	assert.Equal(t, pads[0].Size, pads[1].Size)
}

func TestTwoTerminalTerminatorSpacing(t *testing.T) {
	spaced := func(spacing string) []*kicadmod.Pad {
		rec := chip0603Record()
		delete(rec, "terminal_length")
		rec["terminator_spacing"] = spacing
		g, _ := Lookup("twoterminal")
		results, err := g.Generate("r0603", rec, testEnv(t))
		require.NoError(t, err)
		pads := results[0].Footprint.Pads()
		require.Len(t, pads, 2)
		return pads
	}

	pads := spaced("0.95 ... 1.05")
	assert.Less(t, pads[0].At.X, 0.0)
	assert.InDelta(t, -pads[0].At.X, pads[1].At.X, 1e-9)

	// a wider inside spacing pushes the pads apart and shortens them
	wide := spaced("1.15 ... 1.25")
	assert.Less(t, wide[0].At.X, pads[0].At.X)
	assert.Less(t, wide[0].Size.X, pads[0].Size.X)
}

func TestTwoTerminalTerminalWidth(t *testing.T) {
	rec := chip0603Record()
	rec["terminal_width"] = "0.5 ... 0.6"
	g, _ := Lookup("twoterminal")

	narrow, err := g.Generate("r0603", rec, testEnv(t))
	require.NoError(t, err)
	full, err := g.Generate("r0603", chip0603Record(), testEnv(t))
	require.NoError(t, err)

	// narrower terminals give narrower pads
	assert.Less(t, narrow[0].Footprint.Pads()[0].Size.Y,
		full[0].Footprint.Pads()[0].Size.Y)
}

func TestTwoTerminalClassSelection(t *testing.T) {
	g := &twoTerminal{}
	env := testEnv(t)

	cls, err := g.class(&twoTerminalPart{bodyLen: spec.TolerancedSize{Nominal: 1.6}}, env)
	require.NoError(t, err)
	large, _ := env.Rules.Class("ipc_spec_larger_or_1608")
	assert.Same(t, large, cls)

	cls, err = g.class(&twoTerminalPart{bodyLen: spec.TolerancedSize{Nominal: 1.0}}, env)
	require.NoError(t, err)
	small, _ := env.Rules.Class("ipc_spec_smaller_0603")
	assert.Same(t, small, cls)

	cls, err = g.class(&twoTerminalPart{molded: true, bodyLen: spec.TolerancedSize{Nominal: 3.5}}, env)
	require.NoError(t, err)
	molded, _ := env.Rules.Class("ipc_spec_molded")
	assert.Same(t, molded, cls)

	cls, err = g.class(&twoTerminalPart{ipcClass: "ipc_spec_flat_lead"}, env)
	require.NoError(t, err)
	flatLead, _ := env.Rules.Class("ipc_spec_flat_lead")
	assert.Same(t, flatLead, cls)

	_, err = g.class(&twoTerminalPart{ipcClass: "no_such_class"}, env)
	assert.Error(t, err)
}

func TestTwoTerminalPolarized(t *testing.T) {
	rec := map[string]interface{}{
		"device_type":     "D",
		"body_length":     "3.3 ... 3.7",
		"body_width":      "1.4 ... 1.8",
		"terminal_length": "0.25 ... 0.45",
		"molded":          true,
		"polarized":       true,
	}
	g, _ := Lookup("twoterminal")

	results, err := g.Generate("d_smb", rec, testEnv(t))
	require.NoError(t, err)

	f := results[0].Footprint
	assert.Equal(t, "D_3.5x1.6mm", results[0].Name)

	// polarity bar: a silk line left of pad 1
	pads := f.Pads()
	require.Len(t, pads, 2)
	found := false
	for _, n := range f.Nodes() {
		line, ok := n.(*kicadmod.Line)
		if !ok || line.Layer != kicadmod.LayerFSilk {
			continue
		}
		if line.Start.X == line.End.X && line.Start.X < pads[0].At.X {
			found = true
		}
	}
	assert.True(t, found, "expected a vertical silk bar outside pad 1")
}

func TestTwoTerminalPasteReduction(t *testing.T) {
	rec := chip0603Record()
	rec["paste_reduction"] = 0.1
	g, _ := Lookup("twoterminal")

	results, err := g.Generate("r0603", rec, testEnv(t))
	require.NoError(t, err)
	for _, p := range results[0].Footprint.Pads() {
		assert.InDelta(t, -0.05, p.SolderPasteMarginRatio, 1e-9)
	}
}

func TestTwoTerminalRequiresTerminalDimension(t *testing.T) {
	rec := chip0603Record()
	delete(rec, "terminal_length")
	g, _ := Lookup("twoterminal")
	_, err := g.Generate("r0603", rec, testEnv(t))
	assert.Error(t, err)
}
