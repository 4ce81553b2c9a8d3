package reports

import (
	"context"
	"time"

	"hwshop/internal/core/types"
)

// Repository defines report data access. Ranges are half-open [from, to).
type Repository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error)
	SalesByDay(ctx context.Context, from, to time.Time) ([]SalesDay, error)
	ProductPerformance(ctx context.Context, from, to time.Time, limit int) ([]ProductPerformance, error)
	CostOfGoodsSold(ctx context.Context, from, to time.Time) (types.Money, error)
	ExpensesByCategory(ctx context.Context, from, to time.Time) ([]CategoryTotal, error)
	OutstandingReceivables(ctx context.Context) (types.Money, error)
	LowStockCount(ctx context.Context) (int, error)
}

// Cache stores rendered reports. Implementations must be safe for concurrent use.
type Cache interface {
	// Get loads key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Invalidate drops every cached report.
	Invalidate(ctx context.Context) error
}

// NoCache is a Cache that never hits.
type NoCache struct{}

func (NoCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NoCache) Set(context.Context, string, any) error         { return nil }
func (NoCache) Invalidate(context.Context) error               { return nil }
