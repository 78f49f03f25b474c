/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-tree/operation"
	"gopkg.in/yaml.v3"
)

var runUsage = strings.TrimSpace(`
Run a batch of operations described in a YAML (or JSON) file.  The file holds a list of items:

  - operation: get-hierarchy
    spaceId: "123456"
    depthControl: limited
    maxDepth: 2
  - operation: list-pages
    spaceId: "654321"
    limit: 50

Records from every item are written out in order.  With --continue-on-fail a failing item turns
into an {"error": ...} record and the remaining items still run.
`)

var runCmd = &cobra.Command{
	Use:   "run ITEMS_FILE",
	Short: "Run operations listed in a file",
	Long:  runUsage,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := readItems(args[0])
		if err != nil {
			return err
		}
		return runItems(cmd.Context(), cmd.OutOrStdout(), items)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func readItems(path string) ([]operation.Params, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("confluence-tree: unable to expand homedir: %w", err)
	}

	source, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("confluence-tree: couldn't read items file: %w", err)
	}

	return parseItems(source)
}

func parseItems(source []byte) ([]operation.Params, error) {
	items := []operation.Params{}
	if err := yaml.Unmarshal(source, &items); err != nil {
		return nil, fmt.Errorf("confluence-tree: couldn't parse items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("confluence-tree: no items to run")
	}
	return items, nil
}

// runItems is the shared tail of every operation command: connect, run, print.
func runItems(ctx context.Context, out io.Writer, items []operation.Params) error {
	api, stop, err := newAPI(ctx)
	if err != nil {
		return err
	}
	defer stop()

	runner := &operation.Runner{
		Client:         api,
		Concurrency:    Concurrency,
		ContinueOnFail: ContinueOnFail,
		Nested:         Nested || OutputFormat == outputTree,
		Logger:         Logger,
	}

	bar := maybeProgress(ctx, "pages")
	if bar != nil {
		runner.Progress = bar
	}

	records, err := runner.Run(ctx, items)
	bar.Done()
	if err != nil {
		return err
	}

	return writeRecords(out, OutputFormat, records)
}

// depthParams turns --max-depth into params: 0 walks the whole tree, anything else is validated by
// the runner.
func depthParams(params operation.Params, maxDepth int) operation.Params {
	if maxDepth != 0 {
		params.DepthControl = operation.LimitedDepth
		params.MaxDepth = maxDepth
	} else {
		params.DepthControl = operation.FullDepth
	}
	return params
}
