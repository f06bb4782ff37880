package market

import (
	"sync"
	"time"

	"main/internal/model"
)

const defaultMinUpdateInterval = time.Second

// Store holds the ranked asset list and its current mid prices. The set is
// seeded once from the selector; streaming ticks only refresh price fields
// in place. Ranking never changes after seeding.
type Store struct {
	minInterval time.Duration

	mu          sync.Mutex
	assets      []model.AssetSnapshot
	index       map[string]int
	lastApplied time.Time
}

// NewStore creates a store enforcing the given minimum inter-update
// interval; zero uses the 1s default.
func NewStore(minInterval time.Duration) *Store {
	if minInterval <= 0 {
		minInterval = defaultMinUpdateInterval
	}
	return &Store{
		minInterval: minInterval,
		index:       make(map[string]int),
	}
}

// Seed replaces the ranked set with the selector output.
func (s *Store) Seed(assets []model.AssetSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = append(s.assets[:0], assets...)
	s.index = make(map[string]int, len(assets))
	for i, asset := range assets {
		s.index[asset.Symbol] = i
	}
	s.lastApplied = time.Time{}
}

// ApplyMids overwrites the price of every selected entry present in mids,
// stamping lastUpdated; entries missing from mids keep their prior price.
// A tick arriving before the minimum interval has elapsed since the last
// applied one is dropped outright, not queued: the next tick past the
// interval is the one applied. Returns false for a dropped tick.
func (s *Store) ApplyMids(mids map[string]float64, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastApplied.IsZero() && ts.Sub(s.lastApplied) < s.minInterval {
		return false
	}
	s.lastApplied = ts

	for i := range s.assets {
		if mid, ok := mids[s.assets[i].Symbol]; ok {
			s.assets[i].MidPrice = mid
		}
		s.assets[i].LastUpdated = ts
	}
	return true
}

// Assets returns a copy of the ranked set.
func (s *Store) Assets() []model.AssetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AssetSnapshot(nil), s.assets...)
}

// Mids returns the current mid price per selected symbol. Zero prices are
// omitted so consumers fall through their price-priority chain.
func (s *Store) Mids() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	mids := make(map[string]float64, len(s.assets))
	for _, asset := range s.assets {
		if asset.MidPrice > 0 {
			mids[asset.Symbol] = asset.MidPrice
		}
	}
	return mids
}

// Len returns the size of the ranked set.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}
