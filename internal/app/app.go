// Package app wires configuration into the service components shared by the
// server and the command line tools.
package app

import (
	"go.uber.org/zap"

	"wallet-risk-lab/internal/alert"
	"wallet-risk-lab/internal/analysis"
	"wallet-risk-lab/internal/config"
	"wallet-risk-lab/internal/covalent"
	"wallet-risk-lab/internal/ingestion"
	"wallet-risk-lab/internal/observability"
	"wallet-risk-lab/internal/scoring"
	"wallet-risk-lab/internal/upstream"
)

// indexerBurst is the token bucket size of the indexer rate limiter.
const indexerBurst = 2

// App holds the wired components.
type App struct {
	Fetcher  *ingestion.Fetcher
	Analysis *analysis.Service
	Scorer   scoring.Scorer // nil when SCORING_API_URL is unset
	Alerts   *alert.Telegram
}

// New builds every component from cfg. metrics may be nil.
func New(cfg *config.Config, logger *zap.SugaredLogger, metrics *observability.Metrics) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	indexerHTTP := upstream.New(cfg.Covalent.BaseURL,
		upstream.WithBearerToken(cfg.Covalent.APIKey),
		upstream.WithTimeout(cfg.UpstreamTimeout),
		upstream.WithMaxRetries(cfg.Covalent.MaxRetries),
		upstream.WithRateLimit(cfg.Covalent.RateLimit, indexerBurst),
		upstream.WithObserver(metrics.ObserverFor("covalent")),
	)
	fetcher := ingestion.NewFetcher(ingestion.FetcherOptions{
		Indexer:  covalent.NewClient(indexerHTTP, cfg.Covalent.Chain),
		MaxPages: cfg.Covalent.MaxPages,
		Logger:   logger.Named("ingestion"),
		Metrics:  metrics,
	})

	a := &App{
		Fetcher: fetcher,
		Analysis: analysis.New(analysis.Options{
			Fetcher: fetcher,
			Logger:  logger.Named("analysis"),
			Metrics: metrics,
		}),
		Alerts: alert.NewTelegram(alert.TelegramOptions{
			HTTP: upstream.New(alert.DefaultBaseURL,
				upstream.WithTimeout(cfg.Telegram.Timeout),
				upstream.WithMaxRetries(0),
				upstream.WithObserver(metrics.ObserverFor("telegram")),
			),
			Token:   cfg.Telegram.BotToken,
			ChatID:  cfg.Telegram.ChatID,
			Logger:  logger.Named("alert"),
			Metrics: metrics,
		}),
	}

	if cfg.ScoringEnabled() {
		a.Scorer = scoring.NewClient(upstream.New(cfg.Scoring.URL,
			upstream.WithTimeout(cfg.UpstreamTimeout),
			upstream.WithMaxRetries(cfg.Scoring.MaxRetries),
			upstream.WithObserver(metrics.ObserverFor("scoring")),
		))
	} else {
		logger.Warn("SCORING_API_URL not set, /api/analyze is disabled")
	}

	return a
}
