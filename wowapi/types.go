package wowapi

import "time"

// AuctionHouse is the auction listing of a connected realm or the
// region-wide commodity market.
type AuctionHouse struct {
	Auctions []Auction `json:"auctions"`
	Date     string    `json:"Date"`
}

// Auction is one listing. Prices are in copper.
type Auction struct {
	ID        int64       `json:"id"`
	Item      AuctionItem `json:"item"`
	Quantity  int64       `json:"quantity"`
	UnitPrice int64       `json:"unit_price"`
	Buyout    int64       `json:"buyout"`
	Bid       int64       `json:"bid"`
	TimeLeft  string      `json:"time_left"`
}

// AuctionItem identifies the listed item.
type AuctionItem struct {
	ID int64 `json:"id"`
}

// Price returns the listing's price: the unit price for commodities,
// otherwise the buyout, otherwise the bid.
func (a Auction) Price() int64 {
	switch {
	case a.UnitPrice > 0:
		return a.UnitPrice
	case a.Buyout > 0:
		return a.Buyout
	default:
		return a.Bid
	}
}

// IsCommodity reports whether the listing is priced per unit.
func (a Auction) IsCommodity() bool {
	return a.UnitPrice > 0
}

// Total returns what buying out the whole listing costs. Commodities are
// priced per unit; any other listing's buyout or bid already covers its
// quantity.
func (a Auction) Total() int64 {
	if a.IsCommodity() {
		return a.UnitPrice * a.Quantity
	}
	return a.Price()
}

// TotalValue sums Total over every listing.
func (h *AuctionHouse) TotalValue() int64 {
	var total int64
	for _, a := range h.Auctions {
		total += a.Total()
	}
	return total
}

// TokenPrice is the WoW token market price. Price is in copper.
type TokenPrice struct {
	LastUpdatedTimestamp int64  `json:"last_updated_timestamp"`
	Price                int64  `json:"price"`
	Date                 string `json:"Date"`
}

// LastUpdated converts the millisecond timestamp.
func (t *TokenPrice) LastUpdated() time.Time {
	return time.UnixMilli(t.LastUpdatedTimestamp)
}
