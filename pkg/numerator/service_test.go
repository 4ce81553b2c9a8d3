package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = m.val
	}
	return nil
}

// mockQuerier simulates the doc_sequences upsert per key.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	key := args[0].(string)
	m.values[key] += args[1].(int64)
	return &mockRow{val: m.values[key]}
}

var at = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestNext_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()

	first, err := svc.Next(ctx, "INV", at)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", first)

	second, err := svc.Next(ctx, "INV", at)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", second)

	po, err := svc.Next(ctx, "PO", at)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", po)

	nextYear, err := svc.Next(ctx, "INV", at.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-00001", nextYear)
}

func TestNext_CachedReservesRanges(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, Config{Prefix: "PO", PadWidth: 4, Strategy: StrategyCached, RangeSize: 3})
	ctx := context.Background()

	var got []string
	for range 4 {
		n, err := svc.Next(ctx, "PO", at)
		require.NoError(t, err)
		got = append(got, n)
	}

	assert.Equal(t, []string{"PO-2026-0001", "PO-2026-0002", "PO-2026-0003", "PO-2026-0004"}, got)
	assert.Equal(t, 2, q.calls)
}

func TestNext_Concurrent(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, Config{Prefix: "INV", Strategy: StrategyCached, RangeSize: 7})
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.Next(ctx, "INV", at)
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestNext_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")

	_, err := New(q).Next(context.Background(), "INV", at)
	assert.ErrorContains(t, err, "connection refused")
}
