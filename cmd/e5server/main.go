package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"e5_server/config"
	"e5_server/embedding"
	embeddingGrpc "e5_server/embedding/grpc"
	"e5_server/logger"
	"e5_server/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		host     string
		port     int
		grpcPort int
	)

	cmd := &cobra.Command{
		Use:          "e5server",
		Short:        "Serve multilingual-e5 sentence embeddings over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				cfgFile = os.Getenv("E5_CONFIG")
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("grpc-port") {
				cfg.GRPCPort = grpcPort
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML config file (default: $E5_CONFIG)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP bind host (default: $E5_HOST or 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (default: $E5_PORT or 8765)")
	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "also serve the model over gRPC on this port (0 disables)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	encoder, closeEncoder, err := newEncoder(cfg.Model)
	if err != nil {
		slog.Error("Fail to init model backend", "backend", cfg.Model.Backend, "error", err)
		return err
	}
	defer closeEncoder()

	slog.Info("Loading model (this may take a minute on first run)...",
		"model", cfg.Model.Name,
		"backend", cfg.Model.Backend,
		"endpoint", cfg.Model.Endpoint,
	)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Model.LoadTimeout)
	model, err := embedding.Load(loadCtx, cfg.Model.Name, cfg.Model.Dimension, encoder)
	cancel()
	if err != nil {
		slog.Error("Fail to load model", "error", err)
		return err
	}

	httpSrv := server.New(model, cfg.Addr())
	httpLis, err := net.Listen("tcp", httpSrv.Addr())
	if err != nil {
		slog.Error("Fail to listen", "addr", httpSrv.Addr(), "error", err)
		return err
	}

	var grpcSrv *grpc.Server
	var grpcLis net.Listener
	if addr := cfg.GRPCAddr(); addr != "" {
		grpcLis, err = net.Listen("tcp", addr)
		if err != nil {
			httpLis.Close()
			slog.Error("Fail to listen", "addr", addr, "error", err)
			return err
		}
		grpcSrv = grpc.NewServer()
		embeddingGrpc.Register(grpcSrv, model)
	}

	printBanner(cfg, model)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpSrv.Serve(httpLis)
	})
	if grpcSrv != nil {
		g.Go(func() error {
			slog.Info("Embedding gRPC server listening", "addr", grpcLis.Addr().String())
			if err := grpcSrv.Serve(grpcLis); err != nil {
				return fmt.Errorf("gRPC server failed: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func printBanner(cfg *config.Config, model embedding.Model) {
	slog.Info("E5 Embedding Server",
		"model", model.Name(),
		"dimension", model.Dimension(),
		"listening", "http://"+cfg.Addr(),
	)
	slog.Info("Endpoints",
		"POST /embed", "single text embedding",
		"POST /batch", "batch embeddings",
		"GET /health", "health check",
		"GET /metrics", "prometheus metrics",
	)
}
