package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meigma/certledger"
	"github.com/meigma/certledger/httpapi"
	"github.com/meigma/certledger/internal/config"
	"github.com/meigma/certledger/ipfs"
	"github.com/meigma/certledger/ledger/sqlite"
	"github.com/meigma/certledger/render"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the certificate HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// buildClient assembles the certledger client from configuration. The
// returned cleanup closes the ledger.
func buildClient(cfg *config.Config, logger *slog.Logger) (*certledger.Client, func() error, error) {
	store, err := ipfs.NewClient(
		cfg.IPFS.APIURL,
		ipfs.WithGatewayURL(cfg.IPFS.GatewayURL),
		ipfs.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("content store: %w", err)
	}

	led, err := sqlite.New(cfg.Ledger.DataDir, sqlite.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: %w", err)
	}

	client, err := certledger.NewClient(
		certledger.WithStore(store),
		certledger.WithLedger(led),
		certledger.WithLogger(logger),
		certledger.WithUploadTimeout(cfg.IPFS.UploadTimeout),
		certledger.WithLedgerTimeout(cfg.Ledger.Timeout),
	)
	if err != nil {
		led.Close()
		return nil, nil, err
	}
	return client, led.Close, nil
}

func runServe() error {
	logger := commonRun()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	client, cleanup, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := httpapi.New(
		client,
		httpapi.WithAddr(cfg.API.ListenAddress),
		httpapi.WithPublicURL(cfg.API.PublicURL),
		httpapi.WithRenderer(render.NewPNG()),
		httpapi.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
