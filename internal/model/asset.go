package model

import "time"

// AssetSnapshot is one entry of the ranked tradable set. The ranking
// fields are fixed at selection time; only the price fields are refreshed
// in place by the streaming feed.
type AssetSnapshot struct {
	Symbol       string
	MidPrice     float64
	DayNtlVolume float64
	FundingRate  float64
	OpenInterest float64
	MaxLeverage  int
	LastUpdated  time.Time
}
