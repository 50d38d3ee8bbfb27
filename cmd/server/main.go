// Package main runs the wallet risk HTTP service: feature extraction,
// model scoring and alert delivery behind one router.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"wallet-risk-lab/internal/api"
	"wallet-risk-lab/internal/app"
	"wallet-risk-lab/internal/config"
	"wallet-risk-lab/internal/observability"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cliApp := &cli.App{
		Name:  "server",
		Usage: "Serve wallet feature extraction and fraud scoring over HTTP",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose logging",
				EnvVars: []string{"VERBOSE"},
			},
			&cli.StringFlag{
				Name:    "listen-addr",
				Aliases: []string{"l"},
				Usage:   "HTTP listen address",
				EnvVars: []string{"LISTEN_ADDR"},
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Optional .env file loaded before reading the environment",
				EnvVars: []string{"ENV_FILE"},
				Value:   ".env",
			},
			&cli.StringFlag{
				Name:    "metrics-namespace",
				Usage:   "Prometheus metric namespace",
				EnvVars: []string{"METRICS_NAMESPACE"},
				Value:   "wallet_risk_lab",
			},
		},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	sugar, err := observability.NewSugaredLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush

	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	sugar.Infow("config",
		"listenAddr", c.String("listen-addr"),
		"covalentBaseURL", cfg.Covalent.BaseURL,
		"chain", cfg.Covalent.Chain,
		"maxPages", cfg.Covalent.MaxPages,
		"rateLimit", cfg.Covalent.RateLimit,
		"scoringEnabled", cfg.ScoringEnabled(),
		"upstreamTimeout", cfg.UpstreamTimeout,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(c.String("metrics-namespace"), registry)

	components := app.New(cfg, sugar, metrics)
	if !components.Alerts.Configured() {
		sugar.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, alerts will be dropped")
	}

	server := api.NewServer(api.Options{
		Features: components.Analysis,
		Pager:    components.Fetcher,
		Scorer:   components.Scorer,
		Alerts:   components.Alerts,
		Logger:   sugar.Named("api"),
		Metrics:  metrics,
	})

	httpServer := &http.Server{
		Addr:              c.String("listen-addr"),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sugar.Infof("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Errorw("server failed", "error", err)
		return err
	}
	sugar.Info("shutdown complete")
	return nil
}
