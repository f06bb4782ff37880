package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"main/internal/agent"
	"main/internal/ledger"
	"main/internal/market"
	"main/internal/ops"
	"main/internal/stream"
	"main/pkg/conn"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("agent: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.json", "path to JSON config")
	flag.Parse()

	cfg, err := ops.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Profiler.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trading-agent",
			ServerAddress:   cfg.Profiler.ServerAddress,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	var repository *ledger.Repository
	if cfg.Features.EnableLedger {
		pg, err := conn.New(cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			_ = pg.Close()
		}()

		if err := pg.Ping(ctx); err != nil {
			return err
		}

		repository = ledger.NewRepository(pg.DB())
		if err := repository.Migrate(); err != nil {
			return err
		}
	}

	cfg.Stream.OnDisconnect = func(err error) {
		logs.Warnf("stream ended, reconnect manually, err: %+v", err)
	}

	client, err := stream.New(cfg.Stream)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return err
	}

	store := market.NewStore(cfg.Market.MinUpdateInterval)
	engine, err := agent.New(agent.Option{
		Client:              client,
		Store:               store,
		Ledger:              repository,
		User:                cfg.User,
		AgentID:             cfg.AgentID,
		TopK:                cfg.Market.TopK,
		EnableAccountStream: cfg.Features.EnableAccountStream,
	})
	if err != nil {
		return err
	}

	if err := engine.SeedMarkets(ctx); err != nil {
		return err
	}
	if err := engine.RefreshAccount(ctx); err != nil {
		return err
	}

	logs.Info("engine running, user: ", cfg.User)
	return engine.Run(ctx)
}

type emptyLogger struct{}

func (emptyLogger) Infof(string, ...any)  {}
func (emptyLogger) Debugf(string, ...any) {}
func (emptyLogger) Errorf(string, ...any) {}
