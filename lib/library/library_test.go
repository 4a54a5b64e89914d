package library

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoviat/kfgen/lib/generators"
	"github.com/xoviat/kfgen/lib/geom"
	"github.com/xoviat/kfgen/lib/kicadmod"
)

func testResult(name, lib string) *generators.Result {
	f := kicadmod.NewFootprint(name)
	f.Attr = "smd"
	f.Descr = "test package, generated with kfgen"
	f.Tags = "test resistor"
	f.Append(&kicadmod.Pad{
		Number: "1",
		Type:   kicadmod.PadTypeSMT,
		Shape:  kicadmod.PadShapeRect,
		Size:   geom.Vector2D{X: 1, Y: 1},
		Layers: kicadmod.LayersSMD,
	})
	return &generators.Result{Name: name, Library: lib, Footprint: f}
}

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestStoreAndGet(t *testing.T) {
	lib := openTestLibrary(t)

	stored, err := lib.Store([]*generators.Result{testResult("R_Test_1x1mm", "Package_R")}, "twoterminal", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	rec, err := lib.Get("R_Test_1x1mm")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Package_R", rec.Library)
	assert.Equal(t, "twoterminal", rec.Generator)
	assert.Equal(t, "1.0.0", rec.GeneratorVersion)
	assert.Equal(t, "test resistor", rec.Tags)
	assert.Equal(t, 1, rec.PadCount)
	assert.False(t, rec.GeneratedAt.IsZero())

	// footprint file written under the .pretty directory
	data, err := os.ReadFile(lib.FootprintPath(rec))
	require.NoError(t, err)
	assert.Contains(t, string(data), `(footprint "R_Test_1x1mm"`)

	missing, err := lib.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreToOutputDir(t *testing.T) {
	lib := openTestLibrary(t)
	out := t.TempDir()
	lib.SetOutput(out)

	_, err := lib.Store([]*generators.Result{testResult("R_Test_1x1mm", "Package_R")}, "twoterminal", "1.0.0")
	require.NoError(t, err)

	// the .pretty directory lands under the output dir, not the
	// library root, while the record stays in the database
	path := filepath.Join(out, "Package_R.pretty", "R_Test_1x1mm.kicad_mod")
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(lib.Root(), "Package_R.pretty"))
	assert.True(t, os.IsNotExist(err))

	rec, err := lib.Get("R_Test_1x1mm")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, path, lib.FootprintPath(rec))
}

func TestStoreSkipsNewerGeneratorVersion(t *testing.T) {
	lib := openTestLibrary(t)
	res := []*generators.Result{testResult("R_Test_1x1mm", "Package_R")}

	_, err := lib.Store(res, "twoterminal", "2.0.0")
	require.NoError(t, err)

	stored, err := lib.Store(res, "twoterminal", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 0, stored, "older generator must not overwrite")

	rec, err := lib.Get("R_Test_1x1mm")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", rec.GeneratorVersion)

	// equal or newer versions do overwrite
	stored, err = lib.Store(res, "twoterminal", "2.1.0")
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestIndexAndFind(t *testing.T) {
	lib := openTestLibrary(t)

	_, err := lib.Store([]*generators.Result{
		testResult("R_0603_1608Metric", "Package_R"),
		testResult("C_0603_1608Metric", "Package_C"),
	}, "twoterminal", "1.0.0")
	require.NoError(t, err)

	indexed, err := lib.IndexPending()
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)

	// second run has nothing left to do
	indexed, err = lib.IndexPending()
	require.NoError(t, err)
	assert.Equal(t, 0, indexed)

	records, err := lib.Find("R_0603_1608Metric")
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "R_0603_1608Metric", records[0].Name)
}

func TestAllAndLibraries(t *testing.T) {
	lib := openTestLibrary(t)

	_, err := lib.Store([]*generators.Result{
		testResult("R_A", "Package_R"),
		testResult("R_B", "Package_R"),
		testResult("C_A", "Package_C"),
	}, "twoterminal", "1.0.0")
	require.NoError(t, err)

	records, err := lib.All()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	libs, err := lib.Libraries()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Package_R", "Package_C"}, libs)
}

func TestReopen(t *testing.T) {
	root := t.TempDir()
	lib, err := Open(root)
	require.NoError(t, err)
	_, err = lib.Store([]*generators.Result{testResult("R_A", "Package_R")}, "twoterminal", "1.0.0")
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	lib, err = Open(root)
	require.NoError(t, err)
	defer lib.Close()
	rec, err := lib.Get("R_A")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestRegister(t *testing.T) {
	lib := openTestLibrary(t)

	rec := &Record{Name: "R_External", Library: "External", Generator: "import"}
	require.NoError(t, lib.Register(rec))

	got, err := lib.Get("R_External")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "import", got.Generator)

	// a generated record with a real version is not clobbered
	_, err = lib.Store([]*generators.Result{testResult("R_A", "Package_R")}, "twoterminal", "1.0.0")
	require.NoError(t, err)
	require.NoError(t, lib.Register(&Record{Name: "R_A", Library: "Other", Generator: "import"}))
	got, err = lib.Get("R_A")
	require.NoError(t, err)
	assert.Equal(t, "Package_R", got.Library)
}

func TestExportCSV(t *testing.T) {
	lib := openTestLibrary(t)
	_, err := lib.Store([]*generators.Result{testResult("R_A", "Package_R")}, "twoterminal", "1.0.0")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, lib.ExportCSV(dst))

	fp, err := os.Open(dst)
	require.NoError(t, err)
	defer fp.Close()
	rows, err := csv.NewReader(fp).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "R_A", rows[1][0])
	assert.Equal(t, "Package_R", rows[1][1])
}

func TestExportXLSX(t *testing.T) {
	lib := openTestLibrary(t)
	_, err := lib.Store([]*generators.Result{testResult("R_A", "Package_R")}, "twoterminal", "1.0.0")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, lib.ExportXLSX(dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestParseName(t *testing.T) {
	lib, name := ParseName("Package_R:R_0603_1608Metric")
	assert.Equal(t, "Package_R", lib)
	assert.Equal(t, "R_0603_1608Metric", name)

	lib, name = ParseName("R_0603_1608Metric")
	assert.Equal(t, "", lib)
	assert.Equal(t, "R_0603_1608Metric", name)
}
