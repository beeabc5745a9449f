package cmd

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/wowdata/gold"
	"github.com/s0up4200/wowdata/wowapi"
)

var (
	realmID    int
	filterExpr string
	presetName string
	limit      int
)

// auctionsCmd represents the auctions command
var auctionsCmd = &cobra.Command{
	Use:   "auctions",
	Short: "Summarize the auction house of a connected realm",
	Long: `Fetch every auction of a connected realm and print how many match the
filter and what they are worth.

Examples:
  wowdata auctions --realm 3678
  wowdata auctions --realm 3678 --filter 'ItemID == 19019'
  wowdata auctions --realm 3678 --preset expensive`,
	RunE: runAuctions,
}

// commoditiesCmd represents the commodities command
var commoditiesCmd = &cobra.Command{
	Use:   "commodities",
	Short: "Summarize the region-wide commodity market",
	RunE:  runCommodities,
}

func init() {
	auctionsCmd.Flags().IntVar(&realmID, "realm", 0, "connected realm id")
	_ = auctionsCmd.MarkFlagRequired("realm")

	for _, c := range []*cobra.Command{auctionsCmd, commoditiesCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
		c.Flags().StringVarP(&presetName, "preset", "p", "", "use a filter preset")
		c.Flags().IntVarP(&limit, "limit", "n", 10, "number of most expensive listings to show")
		c.MarkFlagsMutuallyExclusive("filter", "preset")
	}
}

func runAuctions(cmd *cobra.Command, args []string) error {
	house, err := client.AuctionHouse(cmd.Context(), realmID)
	if err != nil {
		return fmt.Errorf("failed to fetch auctions: %w", err)
	}

	return summarize(cmd.Context(), cmd.OutOrStdout(), fmt.Sprintf("Connected realm %d", realmID), house)
}

func runCommodities(cmd *cobra.Command, args []string) error {
	house, err := client.CommodityHouse(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch commodities: %w", err)
	}

	return summarize(cmd.Context(), cmd.OutOrStdout(), fmt.Sprintf("Commodities (%s)", cfg.Region), house)
}

// selectAuctions applies --filter or --preset
func selectAuctions(ctx context.Context, auctions []wowapi.Auction) ([]wowapi.Auction, error) {
	switch {
	case filterExpr != "":
		logger.Debug().Str("filter", filterExpr).Msg("Filtering auctions")
		matches, err := filters.EvaluateExpression(ctx, filterExpr, auctions)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return matches, nil
	case presetName != "":
		logger.Debug().Str("preset", presetName).Msg("Filtering auctions")
		matches, err := filters.EvaluateFilter(ctx, presetName, auctions)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(filters.ListFilters(), ", "))
		}
		return matches, nil
	default:
		return auctions, nil
	}
}

func summarize(ctx context.Context, w io.Writer, title string, house *wowapi.AuctionHouse) error {
	matches, err := selectAuctions(ctx, house.Auctions)
	if err != nil {
		return err
	}

	selected := &wowapi.AuctionHouse{Auctions: matches, Date: house.Date}

	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Auctions:    %d of %d\n", len(matches), len(house.Auctions))
	fmt.Fprintf(w, "Total value: %s\n", gold.Format(selected.TotalValue()))
	if house.Date != "" {
		fmt.Fprintf(w, "Snapshot:    %s\n", house.Date)
	}

	if limit <= 0 || len(matches) == 0 {
		return nil
	}

	top := slices.Clone(matches)
	slices.SortFunc(top, func(a, b wowapi.Auction) int {
		return cmp.Compare(b.Price(), a.Price())
	})
	top = top[:min(limit, len(top))]

	fmt.Fprintf(w, "\nMost expensive listings:\n")
	for _, a := range top {
		fmt.Fprintf(w, "• item %-8d x%-5d %22s  %s\n", a.Item.ID, a.Quantity, gold.Format(a.Price()), a.TimeLeft)
	}

	return nil
}
