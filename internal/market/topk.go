package market

import (
	"container/heap"
	"math"
	"sort"

	"main/internal/model"
)

// Metric extracts the ranking value from an asset. Assets whose metric is
// not finite are skipped entirely.
type Metric func(model.AssetSnapshot) float64

// Ranking metrics.
var (
	MetricDayNtlVolume Metric = func(a model.AssetSnapshot) float64 { return a.DayNtlVolume }
	MetricOpenInterest Metric = func(a model.AssetSnapshot) float64 { return a.OpenInterest }
)

// TopKAssets selects the k largest-metric assets from the universe, sorted
// descending, in O(N log K). A bounded min-heap holds the current winners;
// a candidate replaces the minimum only when its metric is strictly larger,
// so ties keep whichever entry the heap saw first.
func TopKAssets(assets []model.AssetSnapshot, metric Metric, k int) []model.AssetSnapshot {
	if k <= 0 || metric == nil {
		return nil
	}

	h := &assetMinHeap{metric: metric}
	for _, asset := range assets {
		m := metric(asset)
		if math.IsNaN(m) || math.IsInf(m, 0) {
			continue
		}

		if h.Len() < k {
			heap.Push(h, asset)
			continue
		}
		if m > metric(h.items[0]) {
			h.items[0] = asset
			heap.Fix(h, 0)
		}
	}

	result := append([]model.AssetSnapshot(nil), h.items...)
	sort.Slice(result, func(i, j int) bool {
		return metric(result[i]) > metric(result[j])
	})
	return result
}

type assetMinHeap struct {
	items  []model.AssetSnapshot
	metric Metric
}

func (h *assetMinHeap) Len() int { return len(h.items) }

func (h *assetMinHeap) Less(i, j int) bool {
	return h.metric(h.items[i]) < h.metric(h.items[j])
}

func (h *assetMinHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *assetMinHeap) Push(x any) {
	h.items = append(h.items, x.(model.AssetSnapshot))
}

func (h *assetMinHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
