// Package numerator issues human-readable document numbers such as INV-2026-00001.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict bumps the stored counter for every number. No gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves a range of numbers per round trip.
	// Numbers left in a range are lost on restart.
	StrategyCached
)

// Querier is the subset of pgx used by the service.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration.
type Config struct {
	Prefix    string
	PadWidth  int
	Strategy  Strategy
	RangeSize int64
}

// DefaultConfig returns PREFIX-YYYY-NNNNN numbering with yearly reset.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, PadWidth: 5, Strategy: StrategyStrict}
}

type cachedRange struct {
	current int64
	max     int64
}

// Service issues document numbers backed by the doc_sequences table.
// Calls run outside the caller's business transaction so that a rolled back
// document does not hold the counter row locked.
type Service struct {
	querier Querier
	configs map[string]Config

	mu     sync.Mutex
	ranges map[string]*cachedRange
}

// New creates a numerator over querier (normally the pool).
func New(querier Querier, configs ...Config) *Service {
	s := &Service{
		querier: querier,
		configs: make(map[string]Config),
		ranges:  make(map[string]*cachedRange),
	}
	for _, c := range configs {
		s.configs[c.Prefix] = c
	}
	return s
}

// Next returns the next number for prefix in the year of at.
func (s *Service) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	cfg, ok := s.configs[prefix]
	if !ok {
		cfg = DefaultConfig(prefix)
	}

	key := sequenceKey(prefix, at)

	var (
		num int64
		err error
	)
	switch cfg.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, key, cfg.RangeSize)
	default:
		num, err = s.reserve(ctx, key, 1)
	}
	if err != nil {
		return "", err
	}

	return Format(cfg, at, num), nil
}

// reserve bumps the counter by n and returns the new last value.
func (s *Service) reserve(ctx context.Context, key string, n int64) (int64, error) {
	var last int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO doc_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = doc_sequences.current_val + EXCLUDED.current_val
		RETURNING current_val
	`, key, n).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("reserve %s: %w", key, err)
	}
	return last, nil
}

func (s *Service) nextCached(ctx context.Context, key string, size int64) (int64, error) {
	if size <= 0 {
		size = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		last, err := s.reserve(ctx, key, size)
		if err != nil {
			return 0, err
		}
		rng.current = last - size
		rng.max = last
	}

	rng.current++
	return rng.current, nil
}

func sequenceKey(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s", prefix, at.Format("2006"))
}

// Format renders PREFIX-YYYY-NNNNN.
func Format(cfg Config, at time.Time, num int64) string {
	pad := cfg.PadWidth
	if pad == 0 {
		pad = 5
	}
	return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, at.Format("2006"), pad, num)
}
