package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"hwshop/internal/app"
	"hwshop/internal/config"
	"hwshop/internal/core/security"
	"hwshop/internal/domain/reports"
	"hwshop/internal/infrastructure/cache"
	"hwshop/internal/infrastructure/export"
	"hwshop/internal/infrastructure/storage/postgres"
	"hwshop/pkg/logger"
)

// environment holds the connections opened for one command.
type environment struct {
	cfg *config.Config
	log *logger.Logger

	pool     *postgres.Pool
	cache    reports.Cache
	services *app.Services
}

func (e *environment) open(c *cli.Context) error {
	dsn := c.String("db-url")
	if dsn == "" {
		return errors.New("database url is required (--db-url or DATABASE_URL)")
	}

	poolCfg := postgres.DefaultPoolConfig(dsn)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(c.Context, poolCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	e.pool = pool

	reportCache, err := cache.NewReportCache(c.Context, cache.Config{
		Enabled:    e.cfg.Cache.Enabled,
		RedisURL:   e.cfg.Cache.RedisURL,
		TTLSeconds: e.cfg.Cache.ReportTTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("connect to report cache: %w", err)
	}
	e.cache = reportCache

	// Maintenance scans the whole ledger, so statements get no timeout.
	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = 0
	txOpts.LockTimeout = e.cfg.Database.LockTimeout
	e.services = app.NewPostgres(pool, postgres.NewTxManager(pool, txOpts), reportCache)
	return nil
}

func (e *environment) close(*cli.Context) error {
	if closer, ok := e.cache.(io.Closer); ok {
		_ = closer.Close()
	}
	if e.pool != nil {
		e.pool.Close()
	}
	return nil
}

func (e *environment) migrate(c *cli.Context) error {
	applied, err := postgres.Migrate(c.Context, e.pool)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) == 0 {
		fmt.Println("schema is up to date")
		return nil
	}
	for _, v := range applied {
		fmt.Printf("applied %s\n", v)
	}
	return nil
}

func (e *environment) rebuildInventory(c *cli.Context) error {
	n, err := e.services.Stock.RebuildInventory(c.Context, security.System)
	if err != nil {
		return fmt.Errorf("rebuild inventory: %w", err)
	}
	e.services.Reports.Invalidate(c.Context)
	fmt.Printf("rebuilt inventory for %d products\n", n)
	return nil
}

func (e *environment) recomputeBalances(c *cli.Context) error {
	report, err := e.services.Settlement.RecomputeAll(c.Context, security.System)
	if err != nil {
		return fmt.Errorf("recompute balances: %w", err)
	}
	e.services.Reports.Invalidate(c.Context)
	fmt.Printf("recomputed %d credit sales and %d customers\n", report.Sales, report.Customers)
	return nil
}

func (e *environment) exportSales(c *cli.Context) error {
	var period reports.Period
	if from := c.Timestamp("from"); from != nil {
		period.From = *from
	}
	if to := c.Timestamp("to"); to != nil {
		period.To = *to
	}

	summary, err := e.services.Reports.SalesSummary(c.Context, security.System, period)
	if err != nil {
		return fmt.Errorf("sales summary: %w", err)
	}
	products, err := e.services.Reports.ProductPerformance(c.Context, security.System, reports.PerformanceFilter{
		Period: summary.Period,
		Limit:  c.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("product performance: %w", err)
	}

	out := c.String("out")
	if out == "" {
		out = export.Filename(summary.Period)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := export.SalesWorkbook(f, summary, products); err != nil {
		_ = f.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	e.log.Infow("sales exported", "file", out, "days", len(summary.Days), "products", len(products))
	return nil
}
