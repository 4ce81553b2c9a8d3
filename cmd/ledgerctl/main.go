// Package main provides the ledger maintenance CLI.
//
//	ledgerctl migrate
//	ledgerctl rebuild-inventory
//	ledgerctl recompute-balances
//	ledgerctl export-sales --from 2026-01-01 --to 2026-01-31 --out january.xlsx
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"hwshop/internal/config"
	"hwshop/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	env := &environment{cfg: cfg, log: log}

	app := &cli.App{
		Name:  "ledgerctl",
		Usage: "Maintenance commands for the hwshop ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string",
				Value:   cfg.Database.URL,
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Before: env.open,
				After:  env.close,
				Action: env.migrate,
			},
			{
				Name:   "rebuild-inventory",
				Usage:  "Recompute every inventory row from the movement ledger",
				Before: env.open,
				After:  env.close,
				Action: env.rebuildInventory,
			},
			{
				Name:   "recompute-balances",
				Usage:  "Recompute credit sale payment state and customer balances",
				Before: env.open,
				After:  env.close,
				Action: env.recomputeBalances,
			},
			{
				Name:  "export-sales",
				Usage: "Write the sales summary and product performance to an xlsx workbook",
				Flags: []cli.Flag{
					&cli.TimestampFlag{Name: "from", Usage: "First day (inclusive)", Layout: "2006-01-02"},
					&cli.TimestampFlag{Name: "to", Usage: "Last day (inclusive)", Layout: "2006-01-02"},
					&cli.IntFlag{Name: "limit", Usage: "Top products to include", Value: 50},
					&cli.StringFlag{Name: "out", Usage: "Output file; defaults to sales_<from>_<to>.xlsx"},
				},
				Before: env.open,
				After:  env.close,
				Action: env.exportSales,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorw("command failed", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
}
