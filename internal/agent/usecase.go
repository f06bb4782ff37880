package agent

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/account"
	"main/internal/exchange"
	"main/internal/ledger"
	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/stream"
	"main/pkg/exception"
)

const defaultRequestTimeout = 10 * time.Second

// Option wires the engine's collaborators.
type Option struct {
	// Client is the connected stream client. Required.
	Client *stream.Client
	// Store holds the ranked asset set. Required.
	Store *market.Store
	// Ledger reconstructs historical positions. Optional.
	Ledger *ledger.Repository
	// User is the tracked account address. Required.
	User string
	// AgentID keys the ledger rows. Required when Ledger is set.
	AgentID string
	// TopK is the ranked set size. Required.
	TopK int
	// EnableAccountStream toggles the live account feed.
	EnableAccountStream bool
}

// Engine drives the market and account state from the stream: it seeds the
// ranked asset set, keeps mid prices flowing into the store and recomputes
// the account view on every applied tick.
type Engine struct {
	opt Option

	mu          sync.Mutex
	snapshot    account.Snapshot
	hasSnapshot bool
}

// New validates the option and builds an idle engine.
func New(option Option) (*Engine, error) {
	if option.Client == nil || option.Store == nil || option.User == "" || option.TopK <= 0 {
		return nil, exception.ErrInvalidArgument
	}
	return &Engine{opt: option}, nil
}

// SeedMarkets fetches the asset universe, ranks it by daily notional volume
// and seeds the store. The ranking is fixed until the next call.
func (e *Engine) SeedMarkets(ctx context.Context) error {
	payload, err := e.opt.Client.Post(ctx, exchange.NewInfoRequest(exchange.InfoMetaAndAssetCtxs, ""))
	if err != nil {
		return errors.Wrap(err, "fetch asset universe")
	}

	universe, err := exchange.ParseMetaAndAssetCtxs(payload)
	if err != nil {
		return errors.Wrap(err, "parse asset universe")
	}

	selected := market.TopKAssets(universe, market.MetricDayNtlVolume, e.opt.TopK)
	e.opt.Store.Seed(selected)
	logs.Info("market set seeded, size: ", len(selected))
	return nil
}

// RefreshAccount fetches the account history and clearinghouse state
// concurrently, then derives a fresh snapshot against current mids. Either
// fetch failing fails the refresh; the previous snapshot stays intact.
func (e *Engine) RefreshAccount(ctx context.Context) error {
	var (
		wg      sync.WaitGroup
		history map[enum.Timeframe][]model.HistoryPoint
		state   exchange.ClearinghouseState
		errs    [2]error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		history, errs[0] = e.fetchHistory(ctx)
	}()
	go func() {
		defer wg.Done()
		state, errs[1] = e.fetchClearinghouseState(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	snapshot := account.ProcessSnapshot(history, state, e.opt.Store.Mids())
	e.setSnapshot(snapshot)
	return nil
}

// Run subscribes the streaming feeds and blocks until the context ends or
// the process shuts down. SeedMarkets and RefreshAccount should have
// completed before entering.
func (e *Engine) Run(ctx context.Context) error {
	unsubscribeMids, err := e.opt.Client.Subscribe(
		exchange.Subscription{Type: exchange.SubTypeAllMids},
		e.handleMids,
		true,
	)
	if err != nil {
		return errors.Wrap(err, "subscribe mids feed")
	}
	defer unsubscribeMids()

	unsubscribeAccount, err := e.opt.Client.Subscribe(
		exchange.Subscription{Type: exchange.SubTypeWebData, User: e.opt.User},
		e.handleWebData,
		e.opt.EnableAccountStream,
	)
	if err != nil {
		return errors.Wrap(err, "subscribe account feed")
	}
	defer unsubscribeAccount()

	select {
	case <-sys.Shutdown():
	case <-ctx.Done():
	}
	return nil
}

// Reconnect dials again after a disconnect and replays the warm-up
// sequence. Never called automatically.
func (e *Engine) Reconnect(ctx context.Context) error {
	if err := e.opt.Client.Connect(ctx); err != nil {
		return err
	}
	if err := e.SeedMarkets(ctx); err != nil {
		return err
	}
	return e.RefreshAccount(ctx)
}

// Snapshot returns the latest derived account view.
func (e *Engine) Snapshot() (account.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot, e.hasSnapshot
}

// Health proxies the stream connectivity view.
func (e *Engine) Health() stream.Health {
	return e.opt.Client.Health()
}

// HistoricalPositions reconstructs the agent's discrete positions from the
// persisted ledger.
func (e *Engine) HistoricalPositions(ctx context.Context) ([]model.LedgerPosition, error) {
	if e.opt.Ledger == nil {
		return nil, nil
	}
	return e.opt.Ledger.PositionsByAgent(ctx, e.opt.AgentID)
}

// handleMids runs on the dispatcher goroutine. A throttled-out tick stops
// here; an applied one recomputes the live account view.
func (e *Engine) handleMids(data []byte) {
	mids, err := exchange.ParseAllMids(data)
	if err != nil {
		logs.Warnf("drop mids frame, err: %+v", err)
		return
	}

	if !e.opt.Store.ApplyMids(mids, time.Now()) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasSnapshot {
		e.snapshot = account.ComputeLivePnL(e.snapshot, e.opt.Store.Mids())
	}
}

// handleWebData refreshes the raw account state from the stream, keeping
// the already-fetched history series.
func (e *Engine) handleWebData(data []byte) {
	var payload exchange.WebData
	if err := sonic.Unmarshal(data, &payload); err != nil {
		logs.Warnf("drop account frame, err: %+v", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	history := e.snapshot.RawHistory
	e.snapshot = account.ProcessSnapshot(history, payload.ClearinghouseState, e.opt.Store.Mids())
	e.hasSnapshot = true
}

func (e *Engine) fetchHistory(ctx context.Context) (map[enum.Timeframe][]model.HistoryPoint, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	payload, err := e.opt.Client.Post(reqCtx, exchange.NewInfoRequest(exchange.InfoPortfolio, e.opt.User))
	if err != nil {
		return nil, errors.Wrap(err, "fetch account history")
	}

	history, err := exchange.ParsePortfolio(payload)
	if err != nil {
		return nil, errors.Wrap(err, "parse account history")
	}
	return history, nil
}

func (e *Engine) fetchClearinghouseState(ctx context.Context) (exchange.ClearinghouseState, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	payload, err := e.opt.Client.Post(reqCtx, exchange.NewInfoRequest(exchange.InfoClearinghouseState, e.opt.User))
	if err != nil {
		return exchange.ClearinghouseState{}, errors.Wrap(err, "fetch clearinghouse state")
	}

	var state exchange.ClearinghouseState
	if err := sonic.Unmarshal(payload, &state); err != nil {
		return exchange.ClearinghouseState{}, errors.Wrap(err, "parse clearinghouse state")
	}
	return state, nil
}

func (e *Engine) setSnapshot(snapshot account.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = snapshot
	e.hasSnapshot = true
}
