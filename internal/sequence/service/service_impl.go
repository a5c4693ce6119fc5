package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sequencedomain "github.com/MahmoudHooda2019/alswaife/internal/sequence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewService(p ServiceParam) sequencedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("sequence.service"),
	}
}

func (s *Service) Allocate(ctx context.Context) (int64, error) {
	return s.AllocateSeries(ctx, sequencedomain.DefaultSeries)
}

// AllocateSeries runs the read-increment-write as one transaction. The write
// is guarded on the value just read, so two racing allocations can never both
// commit the same number even if the store let both reads through.
func (s *Service) AllocateSeries(ctx context.Context, series string) (int64, error) {
	series = strings.TrimSpace(series)
	if series == "" {
		series = sequencedomain.DefaultSeries
	}

	var next int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter sequencedomain.Counter
		err := tx.Where("key = ?", series).Take(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = sequencedomain.Counter{Key: series, Value: 0}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if counter.Value < 0 {
			return fmt.Errorf("series %q holds %d: %w", series, counter.Value, sequencedomain.ErrCounterCorrupt)
		}

		next = counter.Value + 1
		res := tx.Model(&sequencedomain.Counter{}).
			Where("key = ? AND value = ?", series, counter.Value).
			Update("value", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("series %q advanced concurrently", series)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sequencedomain.ErrCounterCorrupt) {
			return 0, err
		}
		return 0, fmt.Errorf("%v: %w", err, sequencedomain.ErrAllocationFailed)
	}

	s.log.Debug("allocated invoice number", zap.String("series", series), zap.Int64("number", next))
	return next, nil
}

func (s *Service) Peek(ctx context.Context, series string) (int64, error) {
	series = strings.TrimSpace(series)
	if series == "" {
		series = sequencedomain.DefaultSeries
	}

	var counter sequencedomain.Counter
	err := s.db.WithContext(ctx).Where("key = ?", series).Take(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if counter.Value < 0 {
		return 0, fmt.Errorf("series %q holds %d: %w", series, counter.Value, sequencedomain.ErrCounterCorrupt)
	}
	return counter.Value, nil
}
