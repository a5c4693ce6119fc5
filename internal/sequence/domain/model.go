// Package domain holds the durable invoice counter model.
package domain

import (
	"context"
	"errors"
)

// DefaultSeries is the counter key used for regular invoices. Additional
// series (per-year books, credit notes) advance independently.
const DefaultSeries = "invoice"

var (
	// ErrAllocationFailed means the counter transaction did not commit. No
	// number was consumed; calling Allocate again is safe.
	ErrAllocationFailed = errors.New("invoice number allocation failed")

	// ErrCounterCorrupt means the persisted counter is unreadable or
	// implausible. Fatal: silently resetting it risks duplicate invoice
	// numbers.
	ErrCounterCorrupt = errors.New("invoice counter corrupt")
)

// Counter is the single persisted "last issued number" record per series.
// Owned exclusively by the sequencer; nothing else writes this table.
type Counter struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value int64  `gorm:"not null"`
}

func (Counter) TableName() string { return "counters" }

type Service interface {
	// Allocate returns the next number in the default series. Strictly
	// increasing within and across processes sharing the store; a crash
	// mid-allocation can leave a gap but never a duplicate.
	Allocate(ctx context.Context) (int64, error)

	// AllocateSeries allocates from a named series.
	AllocateSeries(ctx context.Context, series string) (int64, error)

	// Peek reports the last issued number without consuming one.
	Peek(ctx context.Context, series string) (int64, error)
}
