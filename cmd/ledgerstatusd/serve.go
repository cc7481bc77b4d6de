package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blockberries/ledgerstatus/config"
	statusgrpc "github.com/blockberries/ledgerstatus/grpc"
	"github.com/blockberries/ledgerstatus/jsonrpc"
	"github.com/blockberries/ledgerstatus/ledger"
	"github.com/blockberries/ledgerstatus/rest"
	"github.com/blockberries/ledgerstatus/server"
)

func serveCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves status queries against an in-memory ledger",
		Args:  cobra.NoArgs,
		RunE:  serveFunc,
	}
	config.AddFlags(c.Flags())
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	cfg, err := config.ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store := ledger.NewStore()
	if cfg.SeedFile != "" {
		if store, err = ledger.LoadSeedFile(cfg.SeedFile); err != nil {
			return err
		}
		log.Info("ledger seeded",
			zap.String("file", cfg.SeedFile),
			zap.Int("blocks", len(store.Blocks())),
			zap.Int("backlog", store.BacklogLen()),
		)
	}
	pool := ledger.NewPool(store, cfg.PoolSize, log.Named("ledger"))
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(pool,
		server.WithLogger(log.Named("server")),
		server.WithRegisterer(reg),
	)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if err := startListeners(ctx, g, cfg, srv, reg, log); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}

	err = g.Wait()
	log.Info("shut down", zap.Error(err))
	return err
}

func startListeners(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Config,
	srv *server.Server,
	reg *prometheus.Registry,
	log *zap.Logger,
) error {
	if cfg.HTTPAddr != "" {
		if err := serveHTTP(ctx, g, cfg, srv, reg, log.Named("http")); err != nil {
			return err
		}
	}
	if cfg.GRPCAddr != "" {
		if err := serveGRPC(ctx, g, cfg, srv, reg, log.Named("grpc")); err != nil {
			return err
		}
	}
	return nil
}

func serveHTTP(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Config,
	srv *server.Server,
	reg *prometheus.Registry,
	log *zap.Logger,
) error {
	rpcHandler, err := jsonrpc.NewService(srv, log)
	if err != nil {
		return fmt.Errorf("json-rpc service: %w", err)
	}
	router := rest.NewRouter(srv, reg, log)
	router.Handle(jsonrpc.Endpoint, rpcHandler).Methods(http.MethodPost)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	httpServer := rest.NewServer(log, lis, router,
		cfg.AllowedOrigins,
		cfg.AllowedHosts,
		cfg.ShutdownTimeout,
		cfg.HTTP,
	)

	g.Go(func() error {
		log.Info("serving", zap.Stringer("addr", httpServer.Addr()))
		if err := httpServer.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return httpServer.Shutdown()
	})
	return nil
}

func serveGRPC(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Config,
	srv *server.Server,
	reg prometheus.Registerer,
	log *zap.Logger,
) error {
	gs, err := statusgrpc.NewGRPCServer(srv, log).NewServer(reg)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g.Go(func() error {
		log.Info("serving", zap.Stringer("addr", lis.Addr()))
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		gs.GracefulStop()
		return nil
	})
	return nil
}
