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

// ApiLogFilters encapsulates optional filters when querying API logs.
type ApiLogFilters struct {
	UserEmail  string
	Endpoint   string
	Method     string
	StatusCode int
	Since      *time.Time
	Until      *time.Time
}

// ApiLogListOptions controls pagination and filtering for API log queries.
type ApiLogListOptions struct {
	Page     int
	PageSize int
	Filters  ApiLogFilters
}

// ApiLogService persists HTTP request/response records asynchronously.
type ApiLogService struct {
	db  *gorm.DB
	log *zap.Logger

	wg sync.WaitGroup
}

// NewApiLogService constructs an ApiLogService.
func NewApiLogService(db *gorm.DB) (*ApiLogService, error) {
	if db == nil {
		return nil, errors.New("api log service: db is required")
	}
	return &ApiLogService{db: db, log: logger.WithModule("apilog")}, nil
}

// Record persists one request/response record without blocking the caller.
func (s *ApiLogService) Record(entry models.ApiLog) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Create(&entry).Error; err != nil {
			s.log.Warn("api log write dropped",
				zap.String("endpoint", entry.Endpoint),
				zap.Error(err),
			)
		}
	}()
}

// Flush blocks until all in-flight writes have completed.
func (s *ApiLogService) Flush() {
	s.wg.Wait()
}

// List returns paginated API logs ordered by creation time descending.
func (s *ApiLogService) List(ctx context.Context, opts ApiLogListOptions) ([]models.ApiLog, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	var (
		results []models.ApiLog
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.ApiLog{})
	query = applyApiLogFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("api log service: count logs: %w", err)
	}

	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("api log service: list logs: %w", err)
	}

	return results, total, nil
}

// DeleteOlderThan removes API logs older than the supplied retention window (in days).
func (s *ApiLogService) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("api log service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ApiLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("api log service: cleanup logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func applyApiLogFilters(query *gorm.DB, filters ApiLogFilters) *gorm.DB {
	if filters.UserEmail != "" {
		query = query.Where("user_email = ?", filters.UserEmail)
	}
	if filters.Endpoint != "" {
		query = query.Where("endpoint = ?", filters.Endpoint)
	}
	if filters.Method != "" {
		query = query.Where("method = ?", filters.Method)
	}
	if filters.StatusCode != 0 {
		query = query.Where("status_code = ?", filters.StatusCode)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
