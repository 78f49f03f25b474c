/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check your credentials",
	Long: `
Ask Confluence who you're logged in as.  Handy to check your token and username before anything
bigger.
`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		api, stop, err := newAPI(ctx)
		if err != nil {
			return err
		}
		defer stop()

		currentUser, err := api.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("confluence-tree: couldn't query current user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as '%s (%s)'\n", api.BaseURI.Host, currentUser.DisplayName, currentUser.AccountID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
