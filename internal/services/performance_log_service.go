package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/pkg/logger"
)

const maxPerformanceLabel = 200

// PerformanceLogService persists slow-call samples asynchronously.
type PerformanceLogService struct {
	db  *gorm.DB
	log *zap.Logger

	wg sync.WaitGroup
}

// NewPerformanceLogService constructs a PerformanceLogService.
func NewPerformanceLogService(db *gorm.DB) (*PerformanceLogService, error) {
	if db == nil {
		return nil, errors.New("performance log service: db is required")
	}
	return &PerformanceLogService{db: db, log: logger.WithModule("perflog")}, nil
}

// Record persists one slow-call sample without blocking the caller.
func (s *PerformanceLogService) Record(label string, durationMs int64) {
	entry := models.PerformanceLog{
		Label:      truncate(label, maxPerformanceLabel),
		DurationMs: durationMs,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Create(&entry).Error; err != nil {
			s.log.Warn("performance sample dropped",
				zap.String("label", entry.Label),
				zap.Error(err),
			)
		}
	}()
}

// Flush blocks until all in-flight writes have completed.
func (s *PerformanceLogService) Flush() {
	s.wg.Wait()
}

// List returns the most recent samples, optionally filtered by label.
func (s *PerformanceLogService) List(ctx context.Context, label string, limit int) ([]models.PerformanceLog, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.db.WithContext(ctx).Model(&models.PerformanceLog{})
	if label != "" {
		query = query.Where("label = ?", label)
	}

	var results []models.PerformanceLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("performance log service: list samples: %w", err)
	}
	return results, nil
}

// DeleteOlderThan removes samples older than the supplied retention window (in days).
func (s *PerformanceLogService) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("performance log service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.PerformanceLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("performance log service: cleanup samples: %w", result.Error)
	}
	return result.RowsAffected, nil
}
