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
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"

	"github.com/xoviat/kfgen/lib/library"
)

var flagInteractive bool

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the footprint library",
	Long: `Search the full-text index of stored footprints. With --interactive
the query is read from a prompt with completion over footprint names.`,
	Run: func(cmd *cobra.Command, args []string) {
		lib, err := library.Open(flagLibrary)
		if err != nil {
			fmt.Println(err)
			return
		}
		defer lib.Close()

		if flagInteractive {
			runInteractive(lib)
			return
		}

		if len(args) < 1 {
			fmt.Println("len(args) < 1")
			return
		}

		printResults(lib, strings.Join(args, " "))
	},
}

func printResults(lib *library.Library, query string) {
	records, err := lib.Find(query)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, rec := range records {
		fmt.Printf("%s:%s\t%s\n", rec.Library, rec.Name, rec.Description)
	}
	if len(records) == 0 {
		fmt.Println("no matches")
	}
}

func runInteractive(lib *library.Library) {
	records, err := lib.All()
	if err != nil {
		fmt.Println(err)
		return
	}
	suggestions := make([]prompt.Suggest, 0, len(records))
	for _, rec := range records {
		suggestions = append(suggestions, prompt.Suggest{
			Text:        rec.Name,
			Description: rec.Description,
		})
	}

	completer := func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterContains(suggestions, d.GetWordBeforeCursor(), true)
	}

	for {
		query := prompt.Input("search> ", completer)
		if query == "" {
			return
		}
		printResults(lib, query)
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "interactive prompt with completion")
}
