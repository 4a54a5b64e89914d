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
	"strings"

	"github.com/spf13/cobra"

	"github.com/xoviat/kfgen/lib/library"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <catalog.xlsx|catalog.csv>",
	Short: "Export the library catalog",
	Long: `Write the catalog of stored footprints to a spreadsheet or CSV file,
chosen by the destination extension.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dst := args[0]

		lib, err := library.Open(flagLibrary)
		if err != nil {
			fmt.Printf("failed to open or create library: %s\n", err)
			return
		}
		defer lib.Close()

		switch {
		case strings.HasSuffix(dst, ".xlsx"):
			err = lib.ExportXLSX(dst)
		case strings.HasSuffix(dst, ".csv"):
			err = lib.ExportCSV(dst)
		default:
			err = fmt.Errorf("export file name must be an xlsx or csv file")
		}
		if err != nil {
			fmt.Println(err)
			return
		}

		fmt.Printf("exported catalog to %s\n", dst)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// exportCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}
