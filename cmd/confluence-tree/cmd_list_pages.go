/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-tree/operation"
)

var listPagesUsage = strings.TrimSpace(`
List the pages of one or more spaces, by space ID.  Only the first page of results (up to --limit)
is fetched; a warning is logged when the space has more.

With --include-hierarchy every listed page also gets its subtree attached, so nested pages show up
both on their own and under their parent.
`)

var (
	ListLimit        int
	IncludeHierarchy bool
	ListMaxDepth     int
)

var listPagesCmd = &cobra.Command{
	Use:   "pages SPACE_ID...",
	Short: "Print list of pages in a space",
	Long:  listPagesUsage,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]operation.Params, 0, len(args))
		for _, spaceID := range args {
			params := operation.Params{
				Operation:        operation.ListPages,
				SpaceID:          spaceID,
				Limit:            ListLimit,
				IncludeHierarchy: IncludeHierarchy,
			}
			items = append(items, depthParams(params, ListMaxDepth))
		}

		return runItems(cmd.Context(), cmd.OutOrStdout(), items)
	},
}

func init() {
	listCmd.AddCommand(listPagesCmd)

	listPagesCmd.Flags().IntVar(&ListLimit, "limit", 250, "maximum number of pages to list (1-250)")
	listPagesCmd.Flags().BoolVar(&IncludeHierarchy, "include-hierarchy", false, "attach each page's subtree")
	listPagesCmd.Flags().IntVar(&ListMaxDepth, "max-depth", 0, "with --include-hierarchy, stop after this many levels (1-10, 0: no limit)")
}
