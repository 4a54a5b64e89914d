/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xoviat/kfgen/lib/config"
	"github.com/xoviat/kfgen/lib/generators"
	"github.com/xoviat/kfgen/lib/ipc"
	"github.com/xoviat/kfgen/lib/library"
	"github.com/xoviat/kfgen/lib/spec"
)

// appVersion is stamped on stored footprints so re-runs of an older
// build never overwrite newer output.
const appVersion = "1.0.0"

var (
	flagDensity string
	flagRules   string
	flagFamily  string
	flagOutput  string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [generator] <size-definition.yaml|directory>...",
	Short: "Generate footprints from part size definitions",
	Long: `Generate footprints from YAML size definition files and store them in
the library. Directory arguments are walked for .yaml files. The
generator selects the lead style, one of: ` + strings.Join(generators.Names(), ", ") + `.
It can be given as the first argument, with --family, or per file in
the FileHeader 'family' key.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		paths := args
		var gen generators.Generator
		if flagFamily != "" {
			g, err := generators.Lookup(flagFamily)
			if err != nil {
				fmt.Println(err)
				return
			}
			gen = g
		} else if g, err := generators.Lookup(args[0]); err == nil {
			gen = g
			paths = args[1:]
			if len(paths) == 0 {
				fmt.Println("no size definition files given")
				return
			}
		}

		files, err := collectSpecFiles(paths)
		if err != nil {
			fmt.Println(err)
			return
		}

		env, err := buildEnv()
		if err != nil {
			fmt.Println(err)
			return
		}

		lib, err := library.Open(flagLibrary)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer lib.Close()
		if flagOutput != "" {
			lib.SetOutput(flagOutput)
		}

		total := 0
		for _, path := range files {
			file, err := spec.Load(path)
			if err != nil {
				fmt.Printf("%s: %s\n", path, err)
				return
			}

			g := gen
			if g == nil {
				if file.Header.Family == "" {
					fmt.Printf("%s: no generator given and the FileHeader names no family\n", path)
					return
				}
				if g, err = generators.Lookup(file.Header.Family); err != nil {
					fmt.Printf("%s: %s\n", path, err)
					return
				}
			}

			results, err := generators.GenerateFile(g, file, env)
			if err != nil {
				fmt.Printf("%s: %s\n", path, err)
				return
			}

			stored, err := lib.Store(results, g.Name(), appVersion)
			if err != nil {
				fmt.Printf("%s: %s\n", path, err)
				return
			}
			total += stored
		}

		if _, err := lib.IndexPending(); err != nil {
			fmt.Println(err)
			return
		}

		fmt.Printf("stored %d footprints in %s\n", total, flagLibrary)
	},
}

/*
collectSpecFiles expands the path arguments: directories are walked
recursively for .yaml files, plain files pass through. The result
keeps the argument order, with walked files in lexical order.
*/
func collectSpecFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no size definition files found")
	}
	return files, nil
}

func buildEnv() (*generators.Env, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
	}

	rules, err := ipc.LoadRules(flagRules)
	if err != nil {
		return nil, err
	}

	density, err := ipc.ParseDensity(flagDensity)
	if err != nil {
		return nil, err
	}

	return &generators.Env{
		Config:  cfg,
		Rules:   rules,
		Density: density,
	}, nil
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&flagDensity, "density", "d", "nominal", "land pattern density: most, nominal or least")
	generateCmd.Flags().StringVarP(&flagRules, "rules", "r", "ipc_7351b", "IPC rule table (built-in name or .yaml path)")
	generateCmd.Flags().StringVarP(&flagFamily, "family", "f", "", "generator family for all files (overrides the FileHeader)")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "directory for the .pretty output (default: the library root)")
}
