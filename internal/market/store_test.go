package market

import (
	"testing"
	"time"

	"main/internal/model"
)

func TestStoreApplyMidsThrottle(t *testing.T) {
	store := NewStore(time.Second)
	store.Seed([]model.AssetSnapshot{{Symbol: "BTC", MidPrice: 100}})

	base := time.Unix(1700000000, 0)
	if !store.ApplyMids(map[string]float64{"BTC": 101}, base) {
		t.Fatalf("first tick must apply")
	}

	// Early ticks are dropped outright, never queued.
	if store.ApplyMids(map[string]float64{"BTC": 999}, base.Add(300*time.Millisecond)) {
		t.Fatalf("tick inside the interval must be dropped")
	}
	if got := store.Mids()["BTC"]; got != 101 {
		t.Fatalf("dropped tick leaked: mid = %v", got)
	}

	if !store.ApplyMids(map[string]float64{"BTC": 102}, base.Add(time.Second)) {
		t.Fatalf("tick past the interval must apply")
	}
	if got := store.Mids()["BTC"]; got != 102 {
		t.Fatalf("mid = %v, want 102", got)
	}
}

func TestStoreApplyMidsKeepsMissingSymbols(t *testing.T) {
	store := NewStore(time.Second)
	store.Seed([]model.AssetSnapshot{
		{Symbol: "BTC", MidPrice: 100},
		{Symbol: "ETH", MidPrice: 50},
	})

	ts := time.Unix(1700000000, 0)
	store.ApplyMids(map[string]float64{"BTC": 110}, ts)

	mids := store.Mids()
	if mids["BTC"] != 110 {
		t.Fatalf("BTC mid = %v, want 110", mids["BTC"])
	}
	if mids["ETH"] != 50 {
		t.Fatalf("ETH must keep its prior mid, got %v", mids["ETH"])
	}

	for _, a := range store.Assets() {
		if !a.LastUpdated.Equal(ts) {
			t.Fatalf("%s lastUpdated = %v, want %v", a.Symbol, a.LastUpdated, ts)
		}
	}
}

func TestStoreSeedResetsThrottle(t *testing.T) {
	store := NewStore(time.Second)
	store.Seed([]model.AssetSnapshot{{Symbol: "BTC"}})

	ts := time.Unix(1700000000, 0)
	store.ApplyMids(map[string]float64{"BTC": 100}, ts)

	store.Seed([]model.AssetSnapshot{{Symbol: "BTC"}, {Symbol: "ETH"}})
	if store.Len() != 2 {
		t.Fatalf("seed must replace the set, len = %d", store.Len())
	}
	if !store.ApplyMids(map[string]float64{"BTC": 100}, ts.Add(time.Millisecond)) {
		t.Fatalf("first tick after reseed must apply")
	}
}

func TestStoreMidsOmitsUnpriced(t *testing.T) {
	store := NewStore(0)
	store.Seed([]model.AssetSnapshot{
		{Symbol: "BTC", MidPrice: 100},
		{Symbol: "NEW"},
	})

	mids := store.Mids()
	if _, ok := mids["NEW"]; ok {
		t.Fatalf("unpriced symbol must be omitted from mids")
	}
	if len(mids) != 1 {
		t.Fatalf("mids = %v, want only BTC", mids)
	}
}
