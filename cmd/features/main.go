// Package main derives the feature record of one wallet and prints it.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"wallet-risk-lab/internal/analysis"
	"wallet-risk-lab/internal/app"
	"wallet-risk-lab/internal/config"
	"wallet-risk-lab/internal/features"
	"wallet-risk-lab/internal/observability"
	"wallet-risk-lab/internal/reporting"
)

func main() {
	cliApp := &cli.App{
		Name:  "features",
		Usage: "Fetch a wallet's history and print its feature record",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Aliases:  []string{"a"},
				Usage:    "Wallet address (0x-prefixed hex)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, csv or markdown",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Optional .env file loaded before reading the environment",
				EnvVars: []string{"ENV_FILE"},
				Value:   ".env",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose logging",
				EnvVars: []string{"VERBOSE"},
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
	format := c.String("format")
	switch format {
	case "json", "csv", "markdown":
	default:
		return fmt.Errorf("unknown format %q (want json, csv or markdown)", format)
	}

	sugar, err := observability.NewSugaredLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush

	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	components := app.New(cfg, sugar, nil)
	result, err := components.Analysis.Features(c.Context, c.String("address"))
	if err != nil {
		return err
	}
	if result.Partial {
		sugar.Warnw("transaction history is partial",
			"stop_reason", result.StopReason,
			"pages", result.PagesFetched,
		)
	}

	return write(os.Stdout, format, result)
}

func write(w io.Writer, format string, result *analysis.Result) error {
	switch format {
	case "csv":
		return reporting.RenderCSV(w, []features.Record{result.Record})
	case "markdown":
		_, err := io.WriteString(w, reporting.RenderMarkdown(reporting.Summary{
			Address:      result.Address,
			Transactions: result.TransactionCount,
			Transfers:    result.TransferCount,
			Pages:        result.PagesFetched,
			Partial:      result.Partial,
			StopReason:   string(result.StopReason),
			GeneratedAt:  time.Now(),
		}, result.Record))
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Record)
	}
}
