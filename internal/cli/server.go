package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/itemledger/itemd/internal/node"
	"github.com/itemledger/itemd/internal/rpc"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the itemd server",
	Long: `Start the itemd server: opens the state store, applies genesis to an
empty state and serves the JSON-RPC and WebSocket endpoints until
interrupted.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// server is the default action
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	n, err := node.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Close(); err != nil {
			log.Printf("Close failed: %v", err)
		}
	}()

	manager := rpc.NewSubscriptionManager()
	n.SetPublisher(rpc.NewPublisher(manager))

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	rpcServer := rpc.NewServer(n, timeout)
	wsServer := rpc.NewWebSocketServer(rpcServer, manager)

	httpMux := http.NewServeMux()
	httpMux.Handle("/", rpcServer)
	httpMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"itemd"}`))
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: httpMux}

	var wsSrv *http.Server
	if cfg.Server.WSAddr != "" {
		wsMux := http.NewServeMux()
		wsMux.Handle("/", wsServer)
		wsSrv = &http.Server{Addr: cfg.Server.WSAddr, Handler: wsMux}
	}

	if !quiet {
		fmt.Printf("itemd listening: JSON-RPC http://%s/", cfg.Server.HTTPAddr)
		if wsSrv != nil {
			fmt.Printf(", WebSocket ws://%s/", cfg.Server.WSAddr)
		}
		fmt.Println()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if wsSrv != nil {
		g.Go(func() error {
			if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("websocket server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if wsSrv != nil {
			_ = wsSrv.Shutdown(shutdownCtx)
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}
