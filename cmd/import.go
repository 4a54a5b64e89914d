/*
Copyright © 2020 Mars Galactic <EMAIL ADDRESS>

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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xoviat/kfgen/lib/library"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <dir>.pretty...",
	Short: "Register existing footprint libraries in the index",
	Long: `Register the footprints of existing .pretty directories in the
library database, so externally produced footprints show up in search
and list alongside generated ones. The files themselves are not
modified or copied.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		lib, err := library.Open(flagLibrary)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer lib.Close()

		total := 0
		for _, dir := range args {
			if !strings.HasSuffix(dir, ".pretty") {
				fmt.Printf("%s: not a .pretty directory\n", dir)
				return
			}
			libName := strings.TrimSuffix(filepath.Base(dir), ".pretty")

			entries, err := os.ReadDir(dir)
			if err != nil {
				fmt.Printf("%s: %s\n", dir, err)
				return
			}
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".kicad_mod") {
					continue
				}
				rec := &library.Record{
					Name:      strings.TrimSuffix(e.Name(), ".kicad_mod"),
					Library:   libName,
					Generator: "import",
				}
				if err := lib.Register(rec); err != nil {
					fmt.Printf("%s: %s\n", e.Name(), err)
					return
				}
				total++
			}
		}

		if _, err := lib.IndexPending(); err != nil {
			fmt.Println(err)
			return
		}

		fmt.Printf("registered %d footprints in %s\n", total, flagLibrary)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
