package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var professionIndexOnly bool

// professionsCmd represents the professions command
var professionsCmd = &cobra.Command{
	Use:   "professions",
	Short: "Walk professions, skill tiers and recipe categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		if professionIndexOnly {
			index, err := client.ProfessionIndex(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch profession index: %w", err)
			}
			return printJSON(w, index)
		}

		tree, err := client.ProfessionTree(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch professions: %w", err)
		}

		for _, prof := range tree {
			fmt.Fprintf(w, "%s (%d)\n", prof.Name, prof.ID)
			for _, tier := range prof.SkillTiers {
				fmt.Fprintf(w, "  %s (%d)\n", tier.Name, tier.ID)
				for _, category := range tier.Categories {
					fmt.Fprintf(w, "    %s: %d recipes\n", category.Name, len(category.Recipes))
				}
			}
		}
		return nil
	},
}

func init() {
	professionsCmd.Flags().BoolVar(&professionIndexOnly, "index", false, "print only the profession index")
}
