package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/wowdata/gold"
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show the WoW token price",
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := client.TokenPrice(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch token price: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "WoW token (%s): %s\n", cfg.Region, gold.Format(price.Price))
		if price.LastUpdatedTimestamp > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s\n", price.LastUpdated().UTC().Format(time.RFC3339))
		}
		return nil
	},
}

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the API access token of the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := client.AccessToken(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		if expiry := client.TokenExpiry(); !expiry.IsZero() {
			logger.Info().Time("expires", expiry).Msg("Token expiry")
		}
		return nil
	},
}
