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

	"github.com/spf13/cobra"

	"github.com/xoviat/kfgen/lib/spec"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <size-definition.yaml|directory>...",
	Short: "Check size definition files without generating anything",
	Long: `Parse size definition files, resolve inheritance and expressions, and
report any errors. Directory arguments are walked for .yaml files.
Nothing is written.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := collectSpecFiles(args)
		if err != nil {
			fmt.Println(err)
			return
		}
		failed := false
		for _, path := range files {
			file, err := spec.Load(path)
			if err != nil {
				fmt.Printf("%s: %s\n", path, err)
				failed = true
				continue
			}
			fmt.Printf("%s: %d parts ok\n", path, len(file.Records))
		}
		if failed {
			fmt.Println("validation failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
