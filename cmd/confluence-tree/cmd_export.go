/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-tree/confluence"
	"github.com/toothbrush/confluence-tree/export"
	"github.com/toothbrush/confluence-tree/operation"
)

var exportUsage = strings.TrimSpace(`
Write the page tree of a space to a directory of Markdown files.  Pages end up at
<store>/<space>/<ancestor slugs...>/<id>-<slug>.md with a YAML header; folders become directories.

Bodies are only downloaded with --with-body, which costs one extra request per page.
`)

var (
	LocalStore      string
	WithBody        bool
	DryRun          bool
	Prune           bool
	Workers         int
	ExportMaxDepth  int
	ExportPageLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export SPACE_ID",
	Short: "Save a space's hierarchy as Markdown files",
	Long:  exportUsage,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		spaceID := args[0]

		if LocalStore == "" {
			return fmt.Errorf("confluence-tree: no location set for local store of Confluence data.  Use --store or set it in your config file")
		}
		storePath, err := homedir.Expand(LocalStore)
		if err != nil {
			return fmt.Errorf("confluence-tree: couldn't expand homedir: %w", err)
		}
		storePath = filepath.Join(storePath, spaceID)
		if !DryRun {
			if err := os.MkdirAll(storePath, 0750); err != nil {
				return fmt.Errorf("confluence-tree: couldn't create directory %s: %w", storePath, err)
			}
		}

		api, stop, err := newAPI(ctx)
		if err != nil {
			return err
		}
		defer stop()

		forest, err := buildForest(cmd, api, spaceID)
		if err != nil {
			return err
		}

		exporter := &export.Exporter{
			StorePath: storePath,
			BaseURI:   api.BaseURI,
			API:       api,
			WithBody:  WithBody,
			DryRun:    DryRun,
			Prune:     Prune,
			Workers:   Workers,
			Logger:    Logger,
		}

		bar := maybeProgress(ctx, "export")
		if bar != nil {
			exporter.Progress = bar
		}
		summary, err := exporter.Export(ctx, forest)
		bar.Done()
		if err != nil {
			return err
		}

		for _, f := range summary.Files {
			Logger.Debug().Str("path", f).Msg("exported")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d pages and %d folders exported to %s (%d pruned)\n",
			summary.Pages, summary.Folders, storePath, summary.Pruned)
		return nil
	},
}

// buildForest runs get-hierarchy and hands back the roots with their subtrees attached.
func buildForest(cmd *cobra.Command, api *confluence.API, spaceID string) ([]*confluence.ContentNode, error) {
	ctx := cmd.Context()

	runner := &operation.Runner{
		Client:      api,
		Concurrency: Concurrency,
		Nested:      true,
		Logger:      Logger,
	}

	bar := maybeProgress(ctx, "pages")
	if bar != nil {
		runner.Progress = bar
	}
	params := depthParams(operation.Params{
		Operation: operation.GetHierarchy,
		SpaceID:   spaceID,
		Limit:     ExportPageLimit,
	}, ExportMaxDepth)
	records, err := runner.Run(ctx, []operation.Params{params})
	bar.Done()
	if err != nil {
		return nil, err
	}

	forest := make([]*confluence.ContentNode, 0, len(records))
	for _, r := range records {
		forest = append(forest, r.Node)
	}
	return forest, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&LocalStore, "store", "", "location to save Confluence pages")
	exportCmd.Flags().BoolVar(&WithBody, "with-body", false, "download and convert page bodies")
	exportCmd.Flags().BoolVarP(&DryRun, "dry-run", "n", false, "show what would be written without touching the disk")
	exportCmd.Flags().BoolVar(&Prune, "prune", false, "delete local Markdown files that are no longer in the space")
	exportCmd.Flags().IntVar(&Workers, "workers", export.DefaultWorkers, "number of pages written in parallel")
	exportCmd.Flags().IntVar(&ExportMaxDepth, "max-depth", 0, "stop after this many levels (1-10, 0: no limit)")
	exportCmd.Flags().IntVar(&ExportPageLimit, "limit", 250, "maximum number of pages to list in the space (1-250)")
}
