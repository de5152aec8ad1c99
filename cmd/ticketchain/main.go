// Command ticketchain runs one agent of the ticket transfer network:
// the chain engine, the HTTP API, and the peer gossip hub, wired
// together from a pair of JSON config files. Grounded on
// original_source/blockchain/bc_agent.py's __main__ block and the
// pack's cmd/cli Cobra command style.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticketchain/config"
	"ticketchain/core"
	"ticketchain/gossip"
	"ticketchain/httpserver"
)

var (
	pubPath  string
	privPath string
)

const httpShutdownGrace = 5 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ticketchain",
		Short: "A replicated ticket-transfer ledger",
	}
	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run this agent's chain engine, HTTP API, and peer gossip",
		RunE:  runServe,
	}
	cmd.Flags().StringVarP(&pubPath, "pub", "u", "configs/pub.json", "path to the public user table")
	cmd.Flags().StringVarP(&privPath, "priv", "v", "configs/priv.json", "path to this agent's private config")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(pubPath); err != nil {
		cmd.Help()
		os.Exit(1)
	}
	if _, err := os.Stat(privPath); err != nil {
		cmd.Help()
		os.Exit(1)
	}

	pub, err := config.LoadPublic(pubPath)
	if err != nil {
		return err
	}
	priv, err := config.LoadPrivate(privPath)
	if err != nil {
		return err
	}

	users := make(map[string]core.User, len(pub))
	for name, u := range pub {
		modulus, err := u.Modulus()
		if err != nil {
			return fmt.Errorf("user %q: %w", name, err)
		}
		users[name] = core.User{Key: core.NewBigInt(modulus), Host: u.Host}
	}
	reg := core.NewRegistry(users)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	engine := core.NewEngine(reg, sugar)
	hub := gossip.NewHub(engine, sugar)
	bootstrap := gossip.NewBootstrap(hub, engine, sugar)

	logger := logrus.New()
	srv := httpserver.New(engine, hub, pub, priv, logger)

	logger.Info("Accounts:")
	for user, pass := range priv.Passcodes {
		logger.Infof("    Username: %s", user)
		logger.Infof("    Password: %s", pass)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	bootstrap.Start(config.RemoteHosts(pub, priv))

	httpSrv := &http.Server{Addr: fmt.Sprintf(":%d", priv.Port), Handler: srv}
	go func() {
		logger.Infof("ticketchain listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownGrace)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	hub.Close()
	cancel()
	return nil
}
