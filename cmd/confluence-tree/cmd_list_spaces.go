/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-tree/operation"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var listSpacesUsage = strings.TrimSpace(`
If you want to find out what spaces your Confluence wiki has, use this command.  The space IDs it
prints are what the other commands take.
`)

var IncludePersonal bool

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print list of spaces",
	Long:  listSpacesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		api, stop, err := newAPI(ctx)
		if err != nil {
			return err
		}
		defer stop()

		params := operation.Params{Operation: operation.ListSpaces, SpaceType: "global"}
		if IncludePersonal {
			params.SpaceType = ""
		}

		Logger.Info().Str("instance", baseURL()).Msg("listing Confluence spaces")
		runner := &operation.Runner{Client: api, Logger: Logger}
		records, err := runner.Run(ctx, []operation.Params{params})
		if err != nil {
			return fmt.Errorf("confluence-tree: couldn't list Confluence spaces: %w", err)
		}
		Logger.Info().Int("spaces", len(records)).Msg("found spaces")

		return writeRecords(cmd.OutOrStdout(), OutputFormat, sortSpaces(records))
	},
}

func init() {
	listCmd.AddCommand(listSpacesCmd)

	listSpacesCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "list individuals' personal spaces")
}

// sortSpaces orders space records by key.
func sortSpaces(records []operation.Record) []operation.Record {
	byKey := make(map[string]operation.Record, len(records))
	for _, r := range records {
		if r.Space == nil {
			continue
		}
		byKey[r.Space.Key] = r
	}

	keys := maps.Keys(byKey)
	slices.Sort(keys)

	sorted := make([]operation.Record, 0, len(keys))
	for _, k := range keys {
		sorted = append(sorted, byKey[k])
	}
	return sorted
}
