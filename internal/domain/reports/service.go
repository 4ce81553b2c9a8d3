package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/security"
	"hwshop/internal/core/types"
	"hwshop/pkg/logger"
)

const (
	defaultPeriodDays   = 30
	maxPeriodDays       = 366
	defaultProductLimit = 20
	maxProductLimit     = 500
)

// Service builds reports, reading through the cache when one is configured.
type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewService creates a new reports service. A nil cache disables caching.
func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = NoCache{}
	}
	return &Service{
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns today's sales, month revenue, receivables and low-stock count.
func (s *Service) Dashboard(ctx context.Context, actor security.Actor) (*Dashboard, error) {
	if err := actor.Require(security.CapReportRead); err != nil {
		return nil, err
	}

	now := s.now()
	today := truncateDay(now)
	key := "dashboard:" + today.Format(time.DateOnly)

	var cached Dashboard
	if s.load(ctx, key, &cached) {
		return &cached, nil
	}

	d := &Dashboard{Date: today, GeneratedAt: now}
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.repo.SalesTotals(gctx, today, tomorrow)
		if err != nil {
			return fmt.Errorf("today totals: %w", err)
		}
		d.TodaySalesCount, d.TodayRevenue = t.Count, t.Revenue
		return nil
	})
	g.Go(func() error {
		t, err := s.repo.SalesTotals(gctx, monthStart, tomorrow)
		if err != nil {
			return fmt.Errorf("month totals: %w", err)
		}
		d.MonthRevenue = t.Revenue
		return nil
	})
	g.Go(func() error {
		var err error
		d.OutstandingReceivables, err = s.repo.OutstandingReceivables(gctx)
		if err != nil {
			return fmt.Errorf("receivables: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.LowStockCount, err = s.repo.LowStockCount(gctx)
		if err != nil {
			return fmt.Errorf("low stock count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.store(ctx, key, d)
	return d, nil
}

// SalesSummary returns revenue per day over the period.
func (s *Service) SalesSummary(ctx context.Context, actor security.Actor, period Period) (*SalesSummary, error) {
	if err := actor.Require(security.CapReportRead); err != nil {
		return nil, err
	}
	period, err := s.normalize(period)
	if err != nil {
		return nil, err
	}

	key := "sales-summary:" + period.key()
	var cached SalesSummary
	if s.load(ctx, key, &cached) {
		return &cached, nil
	}

	from, to := period.Bounds()
	days, err := s.repo.SalesByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}

	summary := &SalesSummary{Period: period, Days: days}
	for _, d := range days {
		summary.TotalCount += d.SalesCount
		summary.TotalRevenue = summary.TotalRevenue.Add(d.Revenue)
		summary.TotalPaid = summary.TotalPaid.Add(d.AmountPaid)
	}

	s.store(ctx, key, summary)
	return summary, nil
}

// ProductPerformance ranks products by revenue over the period.
func (s *Service) ProductPerformance(ctx context.Context, actor security.Actor, filter PerformanceFilter) ([]ProductPerformance, error) {
	if err := actor.Require(security.CapReportRead); err != nil {
		return nil, err
	}
	period, err := s.normalize(filter.Period)
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultProductLimit
	}
	if limit > maxProductLimit {
		limit = maxProductLimit
	}

	from, to := period.Bounds()
	rows, err := s.repo.ProductPerformance(ctx, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("product performance: %w", err)
	}
	return rows, nil
}

// FinancialSummary returns revenue, cost of goods, expenses and net profit.
func (s *Service) FinancialSummary(ctx context.Context, actor security.Actor, period Period) (*FinancialSummary, error) {
	if err := actor.Require(security.CapReportRead); err != nil {
		return nil, err
	}
	period, err := s.normalize(period)
	if err != nil {
		return nil, err
	}
	from, to := period.Bounds()

	var (
		totals     SalesTotals
		cogs       types.Money
		categories []CategoryTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.SalesTotals(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		cogs, err = s.repo.CostOfGoodsSold(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.repo.ExpensesByCategory(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("financial summary: %w", err)
	}

	fs := &FinancialSummary{
		Period:             period,
		Revenue:            totals.Revenue,
		CostOfGoods:        cogs,
		ExpensesByCategory: categories,
	}
	for _, c := range categories {
		fs.Expenses = fs.Expenses.Add(c.Total)
	}
	fs.GrossProfit = fs.Revenue.Sub(fs.CostOfGoods)
	fs.NetProfit = fs.GrossProfit.Sub(fs.Expenses)
	return fs, nil
}

// Invalidate drops cached reports after a ledger write.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "error", err)
	}
}

// normalize applies the default period and rejects inverted or oversized ranges.
func (s *Service) normalize(p Period) (Period, error) {
	today := truncateDay(s.now())
	if p.To.IsZero() {
		p.To = today
	}
	if p.From.IsZero() {
		p.From = truncateDay(p.To).AddDate(0, 0, -(defaultPeriodDays - 1))
	}
	p.From, p.To = truncateDay(p.From), truncateDay(p.To)

	if p.From.After(p.To) {
		return p, apperror.NewValidation("from must not be after to").WithDetail("field", "from")
	}
	if p.To.Sub(p.From) > maxPeriodDays*24*time.Hour {
		return p, apperror.NewValidation(fmt.Sprintf("period must not exceed %d days", maxPeriodDays)).
			WithDetail("field", "to")
	}
	return p, nil
}

// load is a best-effort cache read; failures fall through to the database.
func (s *Service) load(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
	}
}
