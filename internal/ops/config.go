package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"main/internal/stream"
	"main/pkg/conn"
)

const (
	defaultTopK                = 20
	defaultMinUpdateIntervalMs = 1000
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Stream   StreamConfig       `json:"stream"`
	Account  AccountConfig      `json:"account"`
	Market   MarketConfig       `json:"market"`
	Database DatabaseConfig     `json:"database"`
	Profiler ProfilerConfig     `json:"profiler"`
	Features FeatureFlagsConfig `json:"features"`
}

// StreamConfig describes the upstream websocket endpoint.
type StreamConfig struct {
	URL            string `json:"url"`
	DialTimeoutMs  int    `json:"dialTimeoutMs"`
	PingIntervalMs int    `json:"pingIntervalMs"`
	PingTimeoutMs  int    `json:"pingTimeoutMs"`
}

// AccountConfig identifies whose state the engine tracks.
type AccountConfig struct {
	User    string `json:"user"`
	AgentID string `json:"agentId"`
}

// MarketConfig tunes the ranked asset set.
type MarketConfig struct {
	TopK                int `json:"topK"`
	MinUpdateIntervalMs int `json:"minUpdateIntervalMs"`
}

// DatabaseConfig describes the ledger store connection.
type DatabaseConfig struct {
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	User     string            `json:"user"`
	Password string            `json:"password"`
	Database string            `json:"database"`
	SSLMode  string            `json:"sslMode"`
	Params   map[string]string `json:"params"`
}

// ProfilerConfig captures the optional continuous profiler.
type ProfilerConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	EnableAccountStream *bool `json:"enableAccountStream"`
	EnableLedger        *bool `json:"enableLedger"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	EnableAccountStream bool
	EnableLedger        bool
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Stream   stream.Option
	User     string
	AgentID  string
	Market   MarketSpec
	Database conn.Option
	Profiler ProfilerConfig
	Features FeatureFlags
}

// MarketSpec is the resolved ranked-set tuning.
type MarketSpec struct {
	TopK              int
	MinUpdateInterval time.Duration
}

// Load reads a JSON config file and resolves every section.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a parsed config and applies defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	streamOpt, err := resolveStream(cfg.Stream)
	if err != nil {
		return Loaded{}, err
	}

	user := strings.TrimSpace(cfg.Account.User)
	if user == "" {
		return Loaded{}, fmt.Errorf("account user is empty")
	}

	market, err := resolveMarket(cfg.Market)
	if err != nil {
		return Loaded{}, err
	}

	features := resolveFeatures(cfg.Features)
	if features.EnableLedger && strings.TrimSpace(cfg.Account.AgentID) == "" {
		return Loaded{}, fmt.Errorf("account agentId is required when the ledger is enabled")
	}

	return Loaded{
		Stream:   streamOpt,
		User:     user,
		AgentID:  strings.TrimSpace(cfg.Account.AgentID),
		Market:   market,
		Database: resolveDatabase(cfg.Database),
		Profiler: cfg.Profiler,
		Features: features,
	}, nil
}

func resolveStream(cfg StreamConfig) (stream.Option, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return stream.Option{}, fmt.Errorf("stream url is empty")
	}
	if cfg.DialTimeoutMs < 0 || cfg.PingIntervalMs < 0 || cfg.PingTimeoutMs < 0 {
		return stream.Option{}, fmt.Errorf("stream intervals must be >= 0")
	}
	return stream.Option{
		URL:          strings.TrimSpace(cfg.URL),
		DialTimeout:  time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
		PingInterval: time.Duration(cfg.PingIntervalMs) * time.Millisecond,
		PingTimeout:  time.Duration(cfg.PingTimeoutMs) * time.Millisecond,
	}, nil
}

func resolveMarket(cfg MarketConfig) (MarketSpec, error) {
	topK := cfg.TopK
	if topK == 0 {
		topK = defaultTopK
	}
	if topK < 0 {
		return MarketSpec{}, fmt.Errorf("market topK must be > 0")
	}

	intervalMs := cfg.MinUpdateIntervalMs
	if intervalMs == 0 {
		intervalMs = defaultMinUpdateIntervalMs
	}
	if intervalMs < 0 {
		return MarketSpec{}, fmt.Errorf("market minUpdateIntervalMs must be >= 0")
	}

	return MarketSpec{
		TopK:              topK,
		MinUpdateInterval: time.Duration(intervalMs) * time.Millisecond,
	}, nil
}

func resolveDatabase(cfg DatabaseConfig) conn.Option {
	return conn.Option{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		SSLMode:  cfg.SSLMode,
		Params:   cfg.Params,
	}
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{
		EnableAccountStream: true,
		EnableLedger:        false,
	}
	if cfg.EnableAccountStream != nil {
		flags.EnableAccountStream = *cfg.EnableAccountStream
	}
	if cfg.EnableLedger != nil {
		flags.EnableLedger = *cfg.EnableLedger
	}
	return flags
}
