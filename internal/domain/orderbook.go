package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderbookSnapshot is a full snapshot of bids and asks for an asset.
// Prices are probabilities in [0,1] regardless of venue.
type OrderbookSnapshot struct {
	AssetID   string       `json:"assetId"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	BestBid   float64      `json:"bestBid"`
	BestAsk   float64      `json:"bestAsk"`
	MidPrice  float64      `json:"midPrice"`
	Timestamp time.Time    `json:"timestamp"`
}
