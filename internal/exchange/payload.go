package exchange

// Subscription is the logical data-feed descriptor sent upstream. Its
// canonical key deduplicates consumers over one wire subscription.
type Subscription struct {
	Type     string `json:"type"`
	Coin     string `json:"coin,omitempty"`
	User     string `json:"user,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// Subscription feed types served by the upstream service.
const (
	SubTypeAllMids      = "allMids"
	SubTypeTrades       = "trades"
	SubTypeL2Book       = "l2Book"
	SubTypeCandle       = "candle"
	SubTypeWebData      = "webData2"
	SubTypeOrderUpdates = "orderUpdates"
	SubTypeUserFills    = "userFills"
)

// Key returns the canonical serialization of the descriptor. Two
// descriptors with the same key share one upstream subscription.
func (s Subscription) Key() string {
	return s.Type + "|" + s.Coin + "|" + s.User + "|" + s.Interval
}

// SubscribeRequest is the outbound subscribe/unsubscribe envelope.
type SubscribeRequest struct {
	Method       string       `json:"method"`
	Subscription Subscription `json:"subscription"`
}

// PostRequest is the outbound request/response envelope. ID correlates the
// inbound response.
type PostRequest struct {
	Method  string `json:"method"`
	ID      uint64 `json:"id"`
	Request any    `json:"request"`
}

// InfoRequest is the request body for on-demand state fetches.
type InfoRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// InfoBody is the inner payload of an info request.
type InfoBody struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

// NewInfoRequest builds a request body for the given info type.
func NewInfoRequest(infoType, user string) InfoRequest {
	return InfoRequest{
		Type:    "info",
		Payload: InfoBody{Type: infoType, User: user},
	}
}

// Info types used by the engine.
const (
	InfoClearinghouseState = "clearinghouseState"
	InfoPortfolio          = "portfolio"
	InfoMetaAndAssetCtxs   = "metaAndAssetCtxs"
	InfoExchangeStatus     = "exchangeStatus"
)

// AllMids is the streaming mid-price payload. Prices arrive as decimal
// strings keyed by symbol.
type AllMids struct {
	Mids map[string]string `json:"mids"`
}

// MarginSummary is the upstream margin account roll-up. The account value
// already embeds unrealized PnL computed against the snapshot's own mark
// prices.
type MarginSummary struct {
	AccountValue    string `json:"accountValue"`
	TotalNtlPos     string `json:"totalNtlPos"`
	TotalRawUsd     string `json:"totalRawUsd"`
	TotalMarginUsed string `json:"totalMarginUsed"`
}

// Leverage describes the leverage mode of a raw position.
type Leverage struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// RawPosition is one open position as reported by the clearinghouse.
type RawPosition struct {
	Coin           string   `json:"coin"`
	Szi            string   `json:"szi"`
	EntryPx        string   `json:"entryPx"`
	PositionValue  string   `json:"positionValue"`
	UnrealizedPnl  string   `json:"unrealizedPnl"`
	ReturnOnEquity string   `json:"returnOnEquity"`
	LiquidationPx  string   `json:"liquidationPx"`
	MarginUsed     string   `json:"marginUsed"`
	Leverage       Leverage `json:"leverage"`
}

// AssetPosition wraps a raw position with its margin type tag.
type AssetPosition struct {
	Type     string      `json:"type"`
	Position RawPosition `json:"position"`
}

// ClearinghouseState is the full account state snapshot.
type ClearinghouseState struct {
	MarginSummary      MarginSummary   `json:"marginSummary"`
	CrossMarginSummary MarginSummary   `json:"crossMarginSummary"`
	Withdrawable       string          `json:"withdrawable"`
	AssetPositions     []AssetPosition `json:"assetPositions"`
	Time               int64           `json:"time"`
}

// WebData is the streaming account payload. Only the embedded
// clearinghouse state is consumed.
type WebData struct {
	ClearinghouseState ClearinghouseState `json:"clearinghouseState"`
}

// AssetMeta is one universe entry of the tradable asset listing.
type AssetMeta struct {
	Name        string `json:"name"`
	SzDecimals  int    `json:"szDecimals"`
	MaxLeverage int    `json:"maxLeverage"`
}

// Meta is the asset universe listing.
type Meta struct {
	Universe []AssetMeta `json:"universe"`
}

// AssetCtx carries the per-asset market context aligned by index with the
// universe listing.
type AssetCtx struct {
	Funding      string `json:"funding"`
	OpenInterest string `json:"openInterest"`
	DayNtlVlm    string `json:"dayNtlVlm"`
	MarkPx       string `json:"markPx"`
	MidPx        string `json:"midPx"`
	OraclePx     string `json:"oraclePx"`
	PrevDayPx    string `json:"prevDayPx"`
}
