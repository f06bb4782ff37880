package exchange

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"main/internal/model"
	"main/internal/model/enum"
)

// Float safe-parses a decimal string, returning 0 for anything malformed.
// Upstream sends every price and size as a string.
func Float(s string) float64 {
	return FloatOr(s, 0)
}

// FloatOr safe-parses a decimal string with an explicit fallback.
func FloatOr(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// ParseAllMids converts a streaming mids payload into a symbol -> price
// map, dropping unparsable entries.
func ParseAllMids(data []byte) (map[string]float64, error) {
	var payload AllMids
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	mids := make(map[string]float64, len(payload.Mids))
	for symbol, raw := range payload.Mids {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		mids[symbol] = v
	}
	return mids, nil
}

// ParseMetaAndAssetCtxs converts the [meta, contexts] response pair into
// the asset universe with metric fields. Contexts align with the universe
// by index; a short context slice leaves trailing assets zeroed.
func ParseMetaAndAssetCtxs(payload []byte) ([]model.AssetSnapshot, error) {
	var pair []json.RawMessage
	if err := sonic.Unmarshal(payload, &pair); err != nil {
		return nil, err
	}
	if len(pair) < 2 {
		return nil, nil
	}

	var meta Meta
	if err := sonic.Unmarshal(pair[0], &meta); err != nil {
		return nil, err
	}
	var ctxs []AssetCtx
	if err := sonic.Unmarshal(pair[1], &ctxs); err != nil {
		return nil, err
	}

	assets := make([]model.AssetSnapshot, 0, len(meta.Universe))
	for i, entry := range meta.Universe {
		asset := model.AssetSnapshot{
			Symbol:      entry.Name,
			MaxLeverage: entry.MaxLeverage,
		}
		if i < len(ctxs) {
			ctx := ctxs[i]
			asset.MidPrice = FloatOr(ctx.MidPx, FloatOr(ctx.MarkPx, 0))
			asset.DayNtlVolume = dayNtlVolumeOf(ctx)
			asset.FundingRate = Float(ctx.Funding)
			asset.OpenInterest = Float(ctx.OpenInterest)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// dayNtlVolumeOf keeps the ranking metric NaN for a missing field so the
// selector can skip the asset instead of ranking it at zero.
func dayNtlVolumeOf(ctx AssetCtx) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(ctx.DayNtlVlm), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParsePortfolio converts the [[timeframe, window], ...] response into raw
// per-timeframe history series. Unknown timeframe tags are dropped.
func ParsePortfolio(payload []byte) (map[enum.Timeframe][]model.HistoryPoint, error) {
	var entries [][2]json.RawMessage
	if err := sonic.Unmarshal(payload, &entries); err != nil {
		return nil, err
	}

	history := make(map[enum.Timeframe][]model.HistoryPoint, len(entries))
	for _, entry := range entries {
		var tag string
		if err := sonic.Unmarshal(entry[0], &tag); err != nil {
			continue
		}
		timeframe := enum.Timeframe(tag)
		if !timeframe.IsAvailable() {
			continue
		}

		var window struct {
			AccountValueHistory [][2]json.RawMessage `json:"accountValueHistory"`
		}
		if err := sonic.Unmarshal(entry[1], &window); err != nil {
			continue
		}

		points := make([]model.HistoryPoint, 0, len(window.AccountValueHistory))
		for _, sample := range window.AccountValueHistory {
			var ts int64
			if err := sonic.Unmarshal(sample[0], &ts); err != nil {
				continue
			}
			var raw string
			if err := sonic.Unmarshal(sample[1], &raw); err != nil {
				continue
			}
			points = append(points, model.HistoryPoint{TimeMs: ts, Value: Float(raw)})
		}
		history[timeframe] = points
	}
	return history, nil
}
