package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var itemsOutput string

// itemsCmd groups the item commands
var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Search items",
}

var itemsSearchCmd = &cobra.Command{
	Use:   "search key=value...",
	Short: "Run one item search and print the hydrated items",
	Long: `Run a single page of the item search and fetch the detail of every result.

Example:
  wowdata items search name.en_US=Thunderfury orderby=id`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		search, err := parseKeyValues(args)
		if err != nil {
			return err
		}

		resp, err := client.ItemSearch(cmd.Context(), search)
		if err != nil {
			return fmt.Errorf("failed to search items: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var itemsAllCmd = &cobra.Command{
	Use:   "all [key=value...]",
	Short: "Page through the whole item search",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, err := parseKeyValues(args)
		if err != nil {
			return err
		}

		items, err := client.AllItems(cmd.Context(), search)
		if err != nil {
			return fmt.Errorf("failed to crawl items: %w", err)
		}
		logger.Info().Int("count", len(items)).Msg("Fetched items")

		if itemsOutput == "" {
			return printJSON(cmd.OutOrStdout(), items)
		}

		f, err := os.Create(itemsOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := printJSON(f, items); err != nil {
			return fmt.Errorf("failed to write items: %w", err)
		}
		return f.Close()
	},
}

func init() {
	itemsAllCmd.Flags().StringVarP(&itemsOutput, "output", "o", "", "write items to this file instead of stdout")

	itemsCmd.AddCommand(itemsSearchCmd)
	itemsCmd.AddCommand(itemsAllCmd)
}
