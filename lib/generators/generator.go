// Package generators builds footprints from declarative part
// definitions. Each generator family covers one lead style and knows
// which land pattern class applies.
package generators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xoviat/kfgen/lib/config"
	"github.com/xoviat/kfgen/lib/ipc"
	"github.com/xoviat/kfgen/lib/kicadmod"
	"github.com/xoviat/kfgen/lib/spec"
)

// Env carries the shared inputs of a generation run.
type Env struct {
	Config  *config.GlobalConfig
	Rules   *ipc.Rules
	Density ipc.Density
	Header  spec.Header
}

// Result is one generated footprint and the library it belongs in.
type Result struct {
	Name      string
	Library   string
	Footprint *kicadmod.Footprint
}

// Generator turns one part record into footprints. A part may expand
// to more than one footprint (e.g. a thermal via variant).
type Generator interface {
	Name() string
	Generate(part string, rec map[string]interface{}, env *Env) ([]*Result, error)
}

var registry = map[string]Generator{}

func register(g Generator) {
	registry[g.Name()] = g
}

// Lookup returns the generator with the given name.
func Lookup(name string) (Generator, error) {
	g, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return g, nil
}

// Names lists the registered generator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GenerateFile runs a generator over every part in a spec file.
func GenerateFile(g Generator, file *spec.File, env *Env) ([]*Result, error) {
	env.Header = file.Header
	var all []*Result
	for _, name := range file.Names() {
		results, err := g.Generate(name, file.Records[name], env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for _, r := range results {
			log.Debug().Str("part", name).Str("footprint", r.Name).Msg("generated")
		}
		all = append(all, results...)
	}
	return all, nil
}

// libraryName resolves the output library for a part.
func libraryName(env *Env, rec map[string]interface{}) string {
	if lib := spec.String(rec, "library", ""); lib != "" {
		return lib
	}
	if env.Header.OverrideLibName != "" {
		return env.Header.OverrideLibName
	}
	suffix := env.Header.LibrarySuffix
	if suffix == "" {
		suffix = env.Header.DeviceType
	}
	return strings.Replace(env.Config.LibNameFormat, "{category}", suffix, 1)
}

// pinCountText renders the pin count the way datasheets do: "15-16"
// for a 16 pin body with one pin hidden, "16-15" for one deleted.
func pinCountText(nominal, hidden, deleted int) string {
	switch {
	case hidden > 0:
		return fmt.Sprintf("%d-%d", nominal-hidden, nominal)
	case deleted > 0:
		return fmt.Sprintf("%d-%d", nominal, nominal-deleted)
	default:
		return fmt.Sprintf("%d", nominal)
	}
}

// fm formats a dimension for a footprint name: trailing zeros kept to
// at most two decimals.
func fm(x float64) string {
	s := fmt.Sprintf("%.2f", x)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

func attach3DModel(f *kicadmod.Footprint, env *Env, library string) {
	f.Append(&kicadmod.Model{
		Path: env.Config.Model3DPrefix + library + ".3dshapes/" + f.Name + ".wrl",
	})
}
