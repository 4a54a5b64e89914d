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

	"github.com/xoviat/kfgen/lib/library"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored footprints",
	Run: func(cmd *cobra.Command, args []string) {
		lib, err := library.Open(flagLibrary)
		if err != nil {
			fmt.Printf("failed to open or create library: %s\n", err)
			return
		}
		defer lib.Close()

		records, err := lib.All()
		if err != nil {
			fmt.Println(err)
			return
		}
		for _, rec := range records {
			fmt.Printf("%s:%s\n", rec.Library, rec.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
