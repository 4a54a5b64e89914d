package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
FileHeader:
  library_Suffix: 'SO'
  device_type: 'SOIC'
  family: 'gullwing'

parameters:
  default_lead_width: 0.4

SOIC-8_3.9x4.9mm_P1.27mm:
  body_size_x: 3.9
  body_size_y: 4.9
  overall_size_x: '5.8 ... 6.2'
  lead_width: '$(parameters.default_lead_width) +/- 0.05'
  lead_len: '0.4 ... 1.27'
  pitch: 1.27
  num_pins_y: 4

SOIC-14_3.9x8.7mm_P1.27mm:
  inherit: 'SOIC-8_3.9x4.9mm_P1.27mm'
  body_size_y: 8.7
  num_pins_y: 7
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "SO", f.Header.LibrarySuffix)
	assert.Equal(t, "SOIC", f.Header.DeviceType)
	assert.Equal(t, "gullwing", f.Header.Family)
	assert.Len(t, f.Records, 2)
	assert.Equal(t, []string{
		"SOIC-14_3.9x8.7mm_P1.27mm",
		"SOIC-8_3.9x4.9mm_P1.27mm",
	}, f.Names())

	base := f.Records["SOIC-8_3.9x4.9mm_P1.27mm"]
	assert.Equal(t, "0.4 +/- 0.05", base["lead_width"])

	derived := f.Records["SOIC-14_3.9x8.7mm_P1.27mm"]
	assert.Equal(t, 8.7, derived["body_size_y"])
	// inherited fields survive the merge
	assert.Equal(t, 3.9, derived["body_size_x"])
	assert.Equal(t, 7, Int(derived, "num_pins_y", 0))
	_, stillThere := derived["inherit"]
	assert.False(t, stillThere)
}

func TestParseRejectsDeletedAndHidden(t *testing.T) {
	doc := `
part:
  num_pins_y: 4
  deleted_pins: 2
  hidden_pins: [3]
`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestParseInheritCycle(t *testing.T) {
	doc := `
a:
  inherit: 'b'
b:
  inherit: 'a'
`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestParseUnknownBase(t *testing.T) {
	doc := `
a:
  inherit: 'nope'
`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestFieldHelpers(t *testing.T) {
	rec := map[string]interface{}{
		"num_pins_x":   8,
		"pitch":        0.5,
		"suffix":       "_HandSolder",
		"polarized":    "True",
		"deleted_pins": []interface{}{1, 5},
		"unit":         "mil",
	}
	assert.Equal(t, 8, Int(rec, "num_pins_x", 0))
	assert.Equal(t, 3, Int(rec, "missing", 3))
	assert.InDelta(t, 0.5, Float(rec, "pitch", 0), 1e-9)
	assert.Equal(t, "_HandSolder", String(rec, "suffix", ""))
	assert.True(t, Bool(rec, "polarized", false))
	assert.False(t, Bool(rec, "missing", false))
	assert.Equal(t, []int{1, 5}, IntList(rec, "deleted_pins"))
	assert.Equal(t, []int{3}, IntList(map[string]interface{}{"deleted_pins": 3}, "deleted_pins"))
	assert.Equal(t, UnitMil, UnitOf(rec))
	assert.Equal(t, UnitMM, UnitOf(map[string]interface{}{}))
}

func TestMerge(t *testing.T) {
	a := map[string]interface{}{
		"x": 1,
		"nested": map[string]interface{}{
			"keep":     "a",
			"override": "a",
		},
	}
	b := map[string]interface{}{
		"nested": map[string]interface{}{
			"override": "b",
		},
		"y": 2,
	}
	m := Merge(a, b)
	assert.Equal(t, 1, m["x"])
	assert.Equal(t, 2, m["y"])
	nested := m["nested"].(map[string]interface{})
	assert.Equal(t, "a", nested["keep"])
	assert.Equal(t, "b", nested["override"])
}

func TestDeepCopyIndependence(t *testing.T) {
	orig := map[string]interface{}{
		"nested": map[string]interface{}{"k": "v"},
		"list":   []interface{}{1, 2},
	}
	cp := deepCopy(orig)
	cp["nested"].(map[string]interface{})["k"] = "changed"
	cp["list"].([]interface{})[0] = 9
	assert.Equal(t, "v", orig["nested"].(map[string]interface{})["k"])
	assert.Equal(t, 1, orig["list"].([]interface{})[0])
}
