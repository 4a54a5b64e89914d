package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Header is the optional FileHeader block of a size-definition file.
type Header struct {
	LibrarySuffix   string `yaml:"library_Suffix"`
	DeviceType      string `yaml:"device_type"`
	OverrideLibName string `yaml:"override_lib_name"`

	// Family names the generator for the file's parts, so a file can be
	// processed without naming the generator on the command line.
	Family string `yaml:"family"`
}

// File is one parsed size-definition file: a set of part records keyed by
// footprint name, after inheritance and expression expansion.
type File struct {
	Path       string
	Header     Header
	Parameters map[string]any
	Records    map[string]map[string]any
}

// Names returns the record names in stable (sorted) order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Records))
	for n := range f.Records {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load reads a size-definition YAML file and fully resolves it:
// the FileHeader and parameters blocks are split off, inherit entries are
// merged, and $(...) expressions are evaluated.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	f.Path = path
	return f, nil
}

// Parse resolves a size-definition document from memory.
func Parse(raw []byte) (*File, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	f := &File{Records: map[string]map[string]any{}}

	if h, ok := doc["FileHeader"]; ok {
		hb, err := yaml.Marshal(h)
		if err == nil {
			if err := yaml.Unmarshal(hb, &f.Header); err != nil {
				return nil, fmt.Errorf("FileHeader: %w", err)
			}
		}
		delete(doc, "FileHeader")
	}

	if p, ok := doc["parameters"]; ok {
		params, ok := p.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameters block must be a mapping")
		}
		f.Parameters = params
		delete(doc, "parameters")
	}

	if err := ResolveInheritance(doc); err != nil {
		return nil, err
	}

	for name, v := range doc {
		rec, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: part record must be a mapping", name)
		}
		if err := ExpandRecord(rec, f.Parameters); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := checkPinExclusions(rec); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		f.Records[name] = rec
	}

	return f, nil
}

func checkPinExclusions(rec map[string]any) error {
	_, deleted := rec["deleted_pins"]
	_, hidden := rec["hidden_pins"]
	if deleted && hidden {
		return fmt.Errorf("a footprint may not have both deleted pins and hidden pins")
	}
	return nil
}

// IntList reads a field that may be a single integer or a list of
// integers, as deleted_pins and hidden_pins are written both ways.
// Non-numeric entries are skipped.
func IntList(rec map[string]any, key string) []int {
	v, ok := rec[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}
	out := make([]int, 0, len(list))
	for _, e := range list {
		f, err := asFloat(e)
		if err != nil {
			continue
		}
		out = append(out, int(f))
	}
	return out
}

// Int reads an integer field, returning the default when missing or
// not numeric.
func Int(rec map[string]any, key string, def int) int {
	v, ok := rec[key]
	if !ok {
		return def
	}
	f, err := asFloat(v)
	if err != nil {
		return def
	}
	return int(f)
}

// Float reads a float field, returning the default when missing or not
// numeric.
func Float(rec map[string]any, key string, def float64) float64 {
	v, ok := rec[key]
	if !ok {
		return def
	}
	f, err := asFloat(v)
	if err != nil {
		return def
	}
	return f
}

// String reads a string field with a default.
func String(rec map[string]any, key, def string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return def
}

// Bool reads a bool field with a default. The YAML tables also spell
// booleans as the strings 'True' and 'False'.
func Bool(rec map[string]any, key string, def bool) bool {
	switch v := rec[key].(type) {
	case bool:
		return v
	case string:
		return v == "True" || v == "true"
	}
	return def
}

// UnitOf returns the unit a record's dimensions are given in.
func UnitOf(rec map[string]any) Unit {
	switch String(rec, "unit", "") {
	case "inch":
		return UnitInch
	case "mil":
		return UnitMil
	default:
		return UnitMM
	}
}
