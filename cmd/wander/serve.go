package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/4thel00z/wander/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type serverDeps struct {
	recommend *internal.RecommendService
	catalogs  *internal.CatalogService
	gatherer  prometheus.Gatherer
	logger    zerolog.Logger
}

func NewServeCmd(deps func() serverDeps, catalogs func() *internal.CatalogService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Long: `Start a JSON API for recommendations.

  GET  /api/v1/health
  GET  /api/v1/catalog
  GET  /api/v1/catalog/options
  POST /api/v1/recommendations
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: makeServeRunner(deps, catalogs),
	}

	cmd.Flags().String("addr", "", "Listen address (default server.addr from config)")
	return cmd
}

func makeServeRunner(deps func() serverDeps, catalogs func() *internal.CatalogService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		addr, _ := cmd.Flags().GetString("addr")

		if addr == "" {
			cfg, err := catalogs().Config(scopeHint)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			addr = cfg.Server.Addr
		}

		// fail before listening if the catalog is broken
		if _, err := catalogs().Recommender(scopeHint); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		d := deps()
		srv := internal.NewServer(d.recommend, d.catalogs, d.gatherer, d.logger, scopeHint)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
		return srv.Run(ctx, addr)
	}
}
