package exchange

import (
	"math"
	"testing"

	"main/internal/model/enum"
)

func TestParseAllMidsDropsUnparsable(t *testing.T) {
	mids, err := ParseAllMids([]byte(`{"mids":{"BTC":"50000.5","ETH":"3000","BAD":"n/a"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(mids) != 2 {
		t.Fatalf("mids = %v, want the two parsable entries", mids)
	}
	if mids["BTC"] != 50000.5 {
		t.Fatalf("BTC = %v, want 50000.5", mids["BTC"])
	}
}

func TestParseMetaAndAssetCtxs(t *testing.T) {
	payload := []byte(`[
		{"universe":[
			{"name":"BTC","szDecimals":5,"maxLeverage":50},
			{"name":"ETH","szDecimals":4,"maxLeverage":50},
			{"name":"NEW","szDecimals":2,"maxLeverage":10}
		]},
		[
			{"funding":"0.0001","openInterest":"1200","dayNtlVlm":"900000","markPx":"50010","midPx":"50000"},
			{"funding":"0.0002","openInterest":"800","dayNtlVlm":"","markPx":"3001"}
		]
	]`)

	assets, err := ParseMetaAndAssetCtxs(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("assets = %d, want 3", len(assets))
	}

	btc := assets[0]
	if btc.Symbol != "BTC" || btc.MidPrice != 50000 || btc.DayNtlVolume != 900000 {
		t.Fatalf("btc mismatch: %+v", btc)
	}
	if btc.MaxLeverage != 50 {
		t.Fatalf("btc max leverage = %d", btc.MaxLeverage)
	}

	// Missing midPx falls back to markPx; empty volume stays NaN so the
	// ranking can skip the asset.
	eth := assets[1]
	if eth.MidPrice != 3001 {
		t.Fatalf("eth mid = %v, want markPx fallback", eth.MidPrice)
	}
	if !math.IsNaN(eth.DayNtlVolume) {
		t.Fatalf("eth volume = %v, want NaN", eth.DayNtlVolume)
	}

	// Context slice shorter than universe leaves trailing assets zeroed.
	if assets[2].MidPrice != 0 {
		t.Fatalf("trailing asset should be zeroed, got %+v", assets[2])
	}
}

func TestParsePortfolio(t *testing.T) {
	payload := []byte(`[
		["day",{"accountValueHistory":[[1700000000000,"10000"],[1700000100000,"10100"]]}],
		["allTime",{"accountValueHistory":[[1600000000000,"5000"]]}],
		["perpMonth",{"accountValueHistory":[[1,"1"]]}]
	]`)

	history, err := ParsePortfolio(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d timeframes, unknown tags must be dropped", len(history))
	}

	day := history[enum.TimeframeDay]
	if len(day) != 2 {
		t.Fatalf("day points = %d, want 2", len(day))
	}
	if day[0].TimeMs != 1700000000000 || day[0].Value != 10000 {
		t.Fatalf("day[0] mismatch: %+v", day[0])
	}

	all := history[enum.TimeframeAllTime]
	if len(all) != 1 || all[0].Value != 5000 {
		t.Fatalf("allTime mismatch: %+v", all)
	}
}

func TestFloatOr(t *testing.T) {
	if v := Float("123.45"); v != 123.45 {
		t.Fatalf("got %v", v)
	}
	if v := Float(" 5 "); v != 5 {
		t.Fatalf("whitespace should be trimmed, got %v", v)
	}
	if v := FloatOr("garbage", 7); v != 7 {
		t.Fatalf("fallback not applied, got %v", v)
	}
	if v := Float("NaN"); v != 0 {
		t.Fatalf("non-finite must fall back, got %v", v)
	}
}
