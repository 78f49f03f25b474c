/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.
`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

func init() {
	configCmd.AddCommand(showCmd)
}

// showConfig only talks about persistent flags.  Command-specific ones aren't visible from here.
func showConfig(w io.Writer) error {
	parsed, err := yaml.Marshal(ParsedConfig)
	if err != nil {
		return fmt.Errorf("confluence-tree: couldn't render parsed config: %w", err)
	}

	fmt.Fprintf(w, "Dump current config state:\n\n")

	fmt.Fprintf(w, "  Config file: %s\n", ConfigActual)
	fmt.Fprintf(w, "  Debug: %v\n", Debug)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Parsed YAML:\n%s\n", parsed)
	fmt.Fprintf(w, "  BaseURL: %s\n", baseURL())
	fmt.Fprintf(w, "  AuthUsername: %s\n", AuthUsername)
	fmt.Fprintf(w, "  AuthTokenCmd: %v\n", AuthTokenCmd)
	fmt.Fprintf(w, "  Concurrency: %d\n", Concurrency)
	fmt.Fprintf(w, "  RateLimit: %v (burst %d)\n", RateLimit, RateBurst)
	fmt.Fprintf(w, "  ContinueOnFail: %v\n", ContinueOnFail)
	fmt.Fprintf(w, "  Nested: %v\n", Nested)
	fmt.Fprintf(w, "  Output: %s\n", OutputFormat)
	fmt.Fprintf(w, "  WithVCR: %v\n", WithVCR)

	return nil
}
