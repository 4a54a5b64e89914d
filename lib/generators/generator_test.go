package generators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoviat/kfgen/lib/spec"
)

func TestGenerateFile(t *testing.T) {
	file := &spec.File{
		Header: spec.Header{LibrarySuffix: "SO", DeviceType: "SOIC"},
		Records: map[string]map[string]any{
			"soic8": soic8Record(),
			"soic14": func() map[string]any {
				r := soic8Record()
				r["num_pins_y"] = 7
				r["body_size_y"] = "8.55 ... 8.75"
				return r
			}(),
		},
	}
	g, err := Lookup("gullwing")
	require.NoError(t, err)

	env := testEnv(t)
	env.Header = spec.Header{}
	results, err := GenerateFile(g, file, env)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, spec.Header{LibrarySuffix: "SO", DeviceType: "SOIC"}, env.Header)

	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = true
		assert.Equal(t, "Package_SO", r.Library)
	}
	assert.True(t, names["SOIC-8_3.9x4.9mm_P1.27mm"])
	assert.True(t, names["SOIC-14_3.9x8.65mm_P1.27mm"])
}

func TestGenerateFileStopsOnError(t *testing.T) {
	bad := soic8Record()
	delete(bad, "lead_width")
	file := &spec.File{
		Records: map[string]map[string]any{"broken": bad},
	}
	g, _ := Lookup("gullwing")

	_, err := GenerateFile(g, file, testEnv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLibraryName(t *testing.T) {
	env := testEnv(t)

	env.Header = spec.Header{LibrarySuffix: "SO"}
	assert.Equal(t, "Package_SO", libraryName(env, map[string]interface{}{}))

	// device type stands in when no suffix is given
	env.Header = spec.Header{DeviceType: "QFP"}
	assert.Equal(t, "Package_QFP", libraryName(env, map[string]interface{}{}))

	env.Header = spec.Header{LibrarySuffix: "SO", OverrideLibName: "Custom_Lib"}
	assert.Equal(t, "Custom_Lib", libraryName(env, map[string]interface{}{}))

	// the record wins over everything
	assert.Equal(t, "Special", libraryName(env, map[string]interface{}{"library": "Special"}))
}

func TestPinCountText(t *testing.T) {
	assert.Equal(t, "16", pinCountText(16, 0, 0))
	assert.Equal(t, "16-15", pinCountText(16, 0, 1))
	assert.Equal(t, "64-60", pinCountText(64, 0, 4))
	assert.Equal(t, "15-16", pinCountText(16, 1, 0))
}

func TestDimensionFormat(t *testing.T) {
	assert.Equal(t, "10", fm(10.0))
	assert.Equal(t, "3.9", fm(3.9))
	assert.Equal(t, "1.27", fm(1.27))
	assert.Equal(t, "0.65", fm(0.65))
	assert.Equal(t, "7.62", fm(7.62))
}
