package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	realmSearch map[string]string
	allRealms   bool
)

// realmsCmd represents the realms command
var realmsCmd = &cobra.Command{
	Use:   "realms",
	Short: "List or search connected realms",
	Long: `List the connected realm index, fetch the detail of every connected realm
with --all, or search with --search.

Examples:
  wowdata realms
  wowdata realms --all
  wowdata realms --search status.type=UP --search realms.timezone=Europe/Paris`,
	RunE: runRealms,
}

func init() {
	realmsCmd.Flags().StringToStringVarP(&realmSearch, "search", "s", nil, "search filter key=value (repeatable)")
	realmsCmd.Flags().BoolVar(&allRealms, "all", false, "fetch the detail of every connected realm")
	realmsCmd.MarkFlagsMutuallyExclusive("search", "all")
}

func runRealms(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	switch {
	case len(realmSearch) > 0:
		resp, err := client.ConnectedRealmSearch(ctx, realmSearch)
		if err != nil {
			return fmt.Errorf("failed to search realms: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)

	case allRealms:
		realms, err := client.AllRealms(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch realms: %w", err)
		}
		logger.Info().Int("count", len(realms)).Msg("Fetched connected realms")
		return printJSON(cmd.OutOrStdout(), realms)

	default:
		index, err := client.ConnectedRealmIndex(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch realm index: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), index)
	}
}
