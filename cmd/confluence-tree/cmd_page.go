/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-tree/confluence"
	"github.com/toothbrush/confluence-tree/operation"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Commands to work with single pages",
}

var pageGetUsage = strings.TrimSpace(`
Fetch one page by ID.  Use --body-format to include its body, e.g. storage or view.
`)

var (
	BodyFormat            string
	IncludeDirectChildren bool
)

var pageGetCmd = &cobra.Command{
	Use:   "get PAGE_ID",
	Short: "Print a single page",
	Long:  pageGetUsage,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		api, stop, err := newAPI(ctx)
		if err != nil {
			return err
		}
		defer stop()

		page, err := api.GetPageByID(ctx, confluence.GetPageByIDQuery{
			ID:                    args[0],
			BodyFormat:            BodyFormat,
			IncludeDirectChildren: IncludeDirectChildren,
		})
		if err != nil {
			return fmt.Errorf("confluence-tree: couldn't get page: %w", err)
		}

		return writeRecords(cmd.OutOrStdout(), OutputFormat, []operation.Record{{Node: page}})
	},
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.AddCommand(pageGetCmd)

	pageGetCmd.Flags().StringVar(&BodyFormat, "body-format", "", "body representation to include: storage, atlas_doc_format or view")
	pageGetCmd.Flags().BoolVar(&IncludeDirectChildren, "include-direct-children", false, "ask Confluence to include the page's direct children")
}
