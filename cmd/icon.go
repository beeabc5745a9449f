package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var iconOutput string

var iconFetchers = map[string]func(ctx context.Context, id int) ([]byte, error){
	"item":       func(ctx context.Context, id int) ([]byte, error) { return client.ItemIcon(ctx, id) },
	"recipe":     func(ctx context.Context, id int) ([]byte, error) { return client.RecipeIcon(ctx, id) },
	"profession": func(ctx context.Context, id int) ([]byte, error) { return client.ProfessionIcon(ctx, id) },
}

// iconCmd represents the icon command
var iconCmd = &cobra.Command{
	Use:       "icon item|recipe|profession ID",
	Short:     "Download the media document of an item, recipe or profession",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"item", "recipe", "profession"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fetch, ok := iconFetchers[args[0]]
		if !ok {
			return fmt.Errorf("unknown media kind %q (expected item, recipe or profession)", args[0])
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}

		body, err := fetch(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to fetch %s media: %w", args[0], err)
		}

		if iconOutput == "" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		if err := os.WriteFile(iconOutput, body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", iconOutput, err)
		}
		logger.Info().Str("file", iconOutput).Int("bytes", len(body)).Msg("Saved media")
		return nil
	},
}

func init() {
	iconCmd.Flags().StringVarP(&iconOutput, "output", "o", "", "write to this file instead of stdout")
}
