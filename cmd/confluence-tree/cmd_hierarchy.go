/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-tree/operation"
)

var hierarchyUsage = strings.TrimSpace(`
Build the page tree of one or more spaces.  The root-level pages of each space are listed, then
their children are fetched level by level until the tree runs out or --max-depth is reached.

By default every page and folder is printed as its own record, with its depth and children.  Use
--nested to print only the roots, or -o tree for an outline.
`)

var (
	HierarchyLimit    int
	HierarchyMaxDepth int
)

var hierarchyCmd = &cobra.Command{
	Use:     "hierarchy SPACE_ID...",
	Aliases: []string{"tree"},
	Short:   "Print the page hierarchy of a space",
	Long:    hierarchyUsage,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]operation.Params, 0, len(args))
		for _, spaceID := range args {
			params := operation.Params{
				Operation: operation.GetHierarchy,
				SpaceID:   spaceID,
				Limit:     HierarchyLimit,
			}
			items = append(items, depthParams(params, HierarchyMaxDepth))
		}

		return runItems(cmd.Context(), cmd.OutOrStdout(), items)
	},
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)

	hierarchyCmd.Flags().IntVar(&HierarchyLimit, "limit", 250, "maximum number of pages to list per space (1-250)")
	hierarchyCmd.Flags().IntVar(&HierarchyMaxDepth, "max-depth", 0, "stop after this many levels (1-10, 0: no limit)")
}
