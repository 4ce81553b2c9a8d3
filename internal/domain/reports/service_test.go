package reports

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/security"
	"hwshop/internal/core/types"
)

type stubRepo struct {
	mu         sync.Mutex
	totalCalls int
	totals     map[time.Time]SalesTotals
	days       []SalesDay
	cogs       types.Money
	expenses   []CategoryTotal
	receivable types.Money
	lowStock   int
	err        error
}

func (r *stubRepo) SalesTotals(_ context.Context, from, _ time.Time) (SalesTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalCalls++
	return r.totals[from], r.err
}

func (r *stubRepo) SalesByDay(context.Context, time.Time, time.Time) ([]SalesDay, error) {
	return r.days, r.err
}

func (r *stubRepo) ProductPerformance(_ context.Context, _, _ time.Time, limit int) ([]ProductPerformance, error) {
	return make([]ProductPerformance, 0, limit), r.err
}

func (r *stubRepo) CostOfGoodsSold(context.Context, time.Time, time.Time) (types.Money, error) {
	return r.cogs, r.err
}

func (r *stubRepo) ExpensesByCategory(context.Context, time.Time, time.Time) ([]CategoryTotal, error) {
	return r.expenses, r.err
}

func (r *stubRepo) OutstandingReceivables(context.Context) (types.Money, error) {
	return r.receivable, r.err
}

func (r *stubRepo) LowStockCount(context.Context) (int, error) {
	return r.lowStock, r.err
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string][]byte{}
	}
	c.items[key] = raw
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return nil
}

var (
	owner   = security.Actor{ID: "u-owner", Role: security.RoleOwner}
	cashier = security.Actor{ID: "u-cash", Role: security.RoleCashier}
	staff   = security.Actor{ID: "u-staff", Role: security.RoleStaff}
	fixedAt = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
)

func newTestService(repo Repository, cache Cache) *Service {
	s := NewService(repo, cache)
	s.now = func() time.Time { return fixedAt }
	return s
}

func TestDashboard(t *testing.T) {
	today := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	month := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		totals: map[time.Time]SalesTotals{
			today: {Count: 3, Revenue: types.MustMoney("150.00")},
			month: {Count: 40, Revenue: types.MustMoney("2400.50")},
		},
		receivable: types.MustMoney("600.00"),
		lowStock:   2,
	}
	cache := &mapCache{}
	svc := newTestService(repo, cache)

	d, err := svc.Dashboard(context.Background(), cashier)
	require.NoError(t, err)
	assert.Equal(t, today, d.Date)
	assert.Equal(t, 3, d.TodaySalesCount)
	assert.Equal(t, "150", d.TodayRevenue.String())
	assert.Equal(t, "2400.5", d.MonthRevenue.String())
	assert.Equal(t, "600", d.OutstandingReceivables.String())
	assert.Equal(t, 2, d.LowStockCount)
	assert.Equal(t, 2, repo.totalCalls)

	t.Run("served from cache", func(t *testing.T) {
		again, err := svc.Dashboard(context.Background(), cashier)
		require.NoError(t, err)
		assert.Equal(t, 2, repo.totalCalls)
		assert.True(t, d.MonthRevenue.Equal(again.MonthRevenue))
	})

	t.Run("invalidate forces reload", func(t *testing.T) {
		svc.Invalidate(context.Background())
		_, err := svc.Dashboard(context.Background(), cashier)
		require.NoError(t, err)
		assert.Equal(t, 4, repo.totalCalls)
	})
}

func TestDashboard_RepositoryError(t *testing.T) {
	svc := newTestService(&stubRepo{err: errors.New("boom")}, nil)

	_, err := svc.Dashboard(context.Background(), owner)
	require.Error(t, err)
}

func TestReports_RequireCapability(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	_, err := svc.Dashboard(context.Background(), staff)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = svc.FinancialSummary(context.Background(), staff, Period{})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestSalesSummary(t *testing.T) {
	repo := &stubRepo{days: []SalesDay{
		{Day: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), SalesCount: 2, Revenue: types.MustMoney("100.00"), AmountPaid: types.MustMoney("100.00")},
		{Day: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), SalesCount: 1, Revenue: types.MustMoney("999.99"), AmountPaid: types.MustMoney("0.00")},
	}}
	svc := newTestService(repo, nil)

	s, err := svc.SalesSummary(context.Background(), owner, Period{
		From: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, "1099.99", s.TotalRevenue.String())
	assert.Equal(t, "100", s.TotalPaid.String())
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), s.Period.From)
}

func TestNormalizePeriod(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	tests := []struct {
		name     string
		in       Period
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{
			name:     "defaults to last 30 days",
			wantFrom: time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "inverted range",
			in:      Period{From: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			wantErr: true,
		},
		{
			name:    "too long",
			in:      Period{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.normalize(tt.in)
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantTo, got.To)
		})
	}
}

func TestPeriodBounds(t *testing.T) {
	p := Period{From: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), To: time.Date(2026, 3, 3, 23, 0, 0, 0, time.UTC)}
	from, to := p.Bounds()
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), to)
}

func TestFinancialSummary(t *testing.T) {
	repo := &stubRepo{
		totals: map[time.Time]SalesTotals{
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC): {Count: 10, Revenue: types.MustMoney("1000.00")},
		},
		cogs: types.MustMoney("600.00"),
		expenses: []CategoryTotal{
			{Category: "rent", Total: types.MustMoney("250.00")},
			{Category: "power", Total: types.MustMoney("49.50")},
		},
	}
	svc := newTestService(repo, nil)

	fs, err := svc.FinancialSummary(context.Background(), owner, Period{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "400", fs.GrossProfit.String())
	assert.Equal(t, "299.5", fs.Expenses.String())
	assert.Equal(t, "100.5", fs.NetProfit.String())
	assert.Len(t, fs.ExpensesByCategory, 2)
}
