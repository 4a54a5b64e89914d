package spec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xoviat/kfgen/lib/geom"
)

// Unit is the length unit a dimension was given in. All TolerancedSize
// values are stored in mm.
type Unit string

const (
	UnitMM   Unit = "mm"
	UnitInch Unit = "inch"
	UnitMil  Unit = "mil"
)

func (u Unit) toMM(v float64) float64 {
	switch u {
	case UnitInch:
		return v * 25.4
	case UnitMil:
		return v * 25.4 / 1000
	default:
		return v
	}
}

// TolerancedSize is a datasheet dimension with its tolerance range, plus
// the RMS-combined range that the IPC-7351 formulas work with. Datasheets
// give dimensions as any of nominal, nominal with tolerance, or min/max
// (optionally with nominal); all of them normalize to this.
type TolerancedSize struct {
	Minimum float64
	Nominal float64
	Maximum float64

	// Tol is maximum - minimum; TolRMS starts equal to Tol and shrinks
	// when sizes are combined arithmetically (root sum square).
	Tol        float64
	TolRMS     float64
	MinimumRMS float64
	MaximumRMS float64
}

// FromNominal builds a size with a zero-width tolerance range.
func FromNominal(nom float64) TolerancedSize {
	return mustSize(&nom, &nom, &nom, nil, UnitMM)
}

// FromMinMax builds a size from a min/max range; nominal is the midpoint.
func FromMinMax(min, max float64) (TolerancedSize, error) {
	return newSize(&min, nil, &max, nil, UnitMM)
}

func mustSize(min, nom, max *float64, tol []float64, unit Unit) TolerancedSize {
	s, err := newSize(min, nom, max, tol, unit)
	if err != nil {
		panic(err)
	}
	return s
}

func newSize(min, nom, max *float64, tol []float64, unit Unit) (TolerancedSize, error) {
	var s TolerancedSize

	switch {
	case nom != nil:
		s.Nominal = *nom
	case min != nil && max != nil:
		s.Nominal = (*min + *max) / 2
	default:
		return s, fmt.Errorf("either nominal or minimum and maximum must be given")
	}

	switch {
	case min != nil && max != nil:
		s.Minimum = *min
		s.Maximum = *max
	case len(tol) == 1:
		s.Minimum = s.Nominal - tol[0]
		s.Maximum = s.Nominal + tol[0]
	case len(tol) == 2:
		// the pair may come in as (+tol, -tol) in either order, or as two
		// positive magnitudes (minus, plus)
		switch {
		case tol[0] < 0:
			s.Minimum = s.Nominal + tol[0]
			s.Maximum = s.Nominal + tol[1]
		case tol[1] < 0:
			s.Minimum = s.Nominal + tol[1]
			s.Maximum = s.Nominal + tol[0]
		default:
			s.Minimum = s.Nominal - tol[0]
			s.Maximum = s.Nominal + tol[1]
		}
	default:
		s.Minimum = s.Nominal
		s.Maximum = s.Nominal
	}

	if s.Maximum < s.Minimum {
		return s, fmt.Errorf(
			"maximum %v is smaller than minimum %v: tolerance range given wrong or parameters confused",
			s.Maximum, s.Minimum)
	}

	s.Minimum = unit.toMM(s.Minimum)
	s.Nominal = unit.toMM(s.Nominal)
	s.Maximum = unit.toMM(s.Maximum)

	s.Tol = s.Maximum - s.Minimum
	s.TolRMS = s.Tol
	s.MinimumRMS = s.Minimum
	s.MaximumRMS = s.Maximum

	return s, nil
}

// updateRMS recomputes the RMS range after combining tolerances. The RMS
// tolerance can never exceed the plain tolerance; a tiny excess is float
// noise and is clamped.
func (s *TolerancedSize) updateRMS(tolerances ...float64) error {
	sum := 0.0
	for _, t := range tolerances {
		sum += t * t
	}
	s.TolRMS = math.Sqrt(sum)
	if s.TolRMS > s.Tol {
		if geom.RoundToGridNearest(s.TolRMS, 1e-6) > geom.RoundToGridNearest(s.Tol, 1e-6) {
			return fmt.Errorf(
				"RMS tolerance %v larger than normal tolerance %v: wrong tolerances given?",
				s.TolRMS, s.Tol)
		}
		s.TolRMS = s.Tol
	}
	s.MaximumRMS = s.Maximum - (s.Tol-s.TolRMS)/2
	s.MinimumRMS = s.Minimum + (s.Tol-s.TolRMS)/2
	return nil
}

// Add combines two toleranced sizes, RMS-combining their tolerances.
func (s TolerancedSize) Add(o TolerancedSize) TolerancedSize {
	r := mustSize(ptr(s.Minimum+o.Minimum), nil, ptr(s.Maximum+o.Maximum), nil, UnitMM)
	r.updateRMS(s.TolRMS, o.TolRMS)
	return r
}

// Sub subtracts o from s, RMS-combining their tolerances.
func (s TolerancedSize) Sub(o TolerancedSize) TolerancedSize {
	r := mustSize(ptr(s.Minimum-o.Maximum), nil, ptr(s.Maximum-o.Minimum), nil, UnitMM)
	r.updateRMS(s.TolRMS, o.TolRMS)
	return r
}

func (s TolerancedSize) AddScalar(v float64) TolerancedSize {
	r := s
	r.Minimum += v
	r.Nominal += v
	r.Maximum += v
	r.MinimumRMS += v
	r.MaximumRMS += v
	return r
}

func (s TolerancedSize) MulScalar(f float64) TolerancedSize {
	r := mustSize(ptr(s.Minimum*f), nil, ptr(s.Maximum*f), nil, UnitMM)
	r.updateRMS(s.TolRMS * math.Sqrt(f))
	return r
}

func (s TolerancedSize) DivScalar(f float64) TolerancedSize {
	return s.MulScalar(1 / f)
}

func (s TolerancedSize) String() string {
	return fmt.Sprintf("nom: %v, min: %v, max: %v | min_rms: %v, max_rms: %v",
		s.Nominal, s.Minimum, s.Maximum, s.MinimumRMS, s.MaximumRMS)
}

func ptr(v float64) *float64 { return &v }

var spaceRe = regexp.MustCompile(`\s+`)

// ParseToleranced parses a dimension string. Valid forms are "nom",
// "nom+/-tol", "nom+tolp-toln", "min...max" and "min...nom...max".
func ParseToleranced(input string, unit Unit) (TolerancedSize, error) {
	s := spaceRe.ReplaceAllString(input, "")

	bad := func() (TolerancedSize, error) {
		return TolerancedSize{}, fmt.Errorf(
			"dimension specifier not recognised: %q (valid: nom, nom+/-tol, nom+tolp-toln, min...max, min...nom...max)",
			input)
	}

	if strings.Contains(s, "+/-") {
		tokens := strings.SplitN(s, "+/-", 2)
		nom, err1 := strconv.ParseFloat(tokens[0], 64)
		tol, err2 := strconv.ParseFloat(tokens[1], 64)
		if err1 != nil || err2 != nil {
			return bad()
		}
		return newSize(nil, &nom, nil, []float64{tol}, unit)
	}

	if strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "...", "..")
		tokens := strings.Split(s, "..")
		if len(tokens) > 3 {
			return TolerancedSize{}, fmt.Errorf(
				"illegal dimension specifier: %q: too many '...'-separated tokens", input)
		}
		min, err1 := strconv.ParseFloat(tokens[0], 64)
		max, err2 := strconv.ParseFloat(tokens[len(tokens)-1], 64)
		if err1 != nil || err2 != nil {
			return bad()
		}
		var nom *float64
		if len(tokens) == 3 {
			n, err := strconv.ParseFloat(tokens[1], 64)
			if err != nil {
				return bad()
			}
			nom = &n
		}
		return newSize(&min, nom, &max, nil, unit)
	}

	if idxp, idxn := strings.Index(s, "+"), strings.Index(s, "-"); idxp > 0 && idxn > 0 {
		if strings.Count(s, "+") > 1 || strings.Count(s, "-") > 1 {
			return TolerancedSize{}, fmt.Errorf(
				"illegal dimension specifier: %q: expected nom+tolp-toln", input)
		}
		first := idxp
		if idxn < first {
			first = idxn
		}
		nom, err := strconv.ParseFloat(s[:first], 64)
		if err != nil {
			return bad()
		}
		var tolp, toln float64
		if idxn < idxp {
			toln, err = strconv.ParseFloat(s[idxn:idxp], 64)
			if err != nil {
				return bad()
			}
			tolp, err = strconv.ParseFloat(s[idxp:], 64)
		} else {
			tolp, err = strconv.ParseFloat(s[idxp:idxn], 64)
			if err != nil {
				return bad()
			}
			toln, err = strconv.ParseFloat(s[idxn:], 64)
		}
		if err != nil {
			return bad()
		}
		return newSize(nil, &nom, nil, []float64{toln, tolp}, unit)
	}

	nom, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return bad()
	}
	return newSize(nil, &nom, nil, nil, unit)
}

// TolerancedFromValue converts an already-decoded YAML value into a
// TolerancedSize: a number, a dimension string, or a mapping with
// minimum/nominal/maximum/tolerance keys.
func TolerancedFromValue(v any, unit Unit) (TolerancedSize, error) {
	switch val := v.(type) {
	case map[string]any:
		var min, nom, max *float64
		var tol []float64
		if f, ok, err := lookupFloat(val, "minimum"); err != nil {
			return TolerancedSize{}, err
		} else if ok {
			min = &f
		}
		if f, ok, err := lookupFloat(val, "nominal"); err != nil {
			return TolerancedSize{}, err
		} else if ok {
			nom = &f
		}
		if f, ok, err := lookupFloat(val, "maximum"); err != nil {
			return TolerancedSize{}, err
		} else if ok {
			max = &f
		}
		if t, ok := val["tolerance"]; ok {
			var err error
			tol, err = asFloatList(t)
			if err != nil {
				return TolerancedSize{}, fmt.Errorf("tolerance: %w", err)
			}
		}
		return newSize(min, nom, max, tol, unit)
	case string:
		return ParseToleranced(val, unit)
	case nil:
		return TolerancedSize{}, fmt.Errorf("dimension value is missing")
	default:
		f, err := asFloat(v)
		if err != nil {
			return TolerancedSize{}, err
		}
		return newSize(nil, &f, nil, nil, unit)
	}
}

// TolerancedFromRecord extracts the dimension named base from a part
// record. The record may carry either flat sibling keys (base, base_min,
// base_max, base_tol) or a single key holding a value understood by
// TolerancedFromValue.
func TolerancedFromRecord(rec map[string]any, base string, unit Unit) (TolerancedSize, error) {
	_, hasMin := rec[base+"_min"]
	_, hasMax := rec[base+"_max"]
	_, hasTol := rec[base+"_tol"]
	if hasMin || hasMax || hasTol {
		var min, nom, max *float64
		var tol []float64
		if f, ok, err := lookupFloat(rec, base+"_min"); err != nil {
			return TolerancedSize{}, fmt.Errorf("%s_min: %w", base, err)
		} else if ok {
			min = &f
		}
		if f, ok, err := lookupFloat(rec, base); err != nil {
			return TolerancedSize{}, fmt.Errorf("%s: %w", base, err)
		} else if ok {
			nom = &f
		}
		if f, ok, err := lookupFloat(rec, base+"_max"); err != nil {
			return TolerancedSize{}, fmt.Errorf("%s_max: %w", base, err)
		} else if ok {
			max = &f
		}
		if t, ok := rec[base+"_tol"]; ok {
			var err error
			tol, err = asFloatList(t)
			if err != nil {
				return TolerancedSize{}, fmt.Errorf("%s_tol: %w", base, err)
			}
		}
		s, err := newSize(min, nom, max, tol, unit)
		if err != nil {
			return s, fmt.Errorf("%s: %w", base, err)
		}
		return s, nil
	}

	v, ok := rec[base]
	if !ok {
		return TolerancedSize{}, fmt.Errorf("dimension %q not found", base)
	}
	s, err := TolerancedFromValue(v, unit)
	if err != nil {
		return s, fmt.Errorf("%s: %w", base, err)
	}
	return s, nil
}

// HasDimension reports whether the record defines the dimension base in
// any of its accepted spellings.
func HasDimension(rec map[string]any, base string) bool {
	for _, k := range []string{base, base + "_min", base + "_max", base + "_tol"} {
		if _, ok := rec[k]; ok {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func asFloatList(v any) ([]float64, error) {
	if list, ok := v.([]any); ok {
		out := make([]float64, 0, len(list))
		for _, e := range list {
			f, err := asFloat(e)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	}
	f, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	return []float64{f}, nil
}

func lookupFloat(m map[string]any, key string) (float64, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := asFloat(v)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}
