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

const (
	maxErrorEndpoint      = 500
	maxErrorExceptionType = 255
	maxErrorMessage       = 2000
	maxErrorStacktrace    = 10000
)

// ErrorLogFilters encapsulates optional filters when querying error logs.
type ErrorLogFilters struct {
	UserID        *uint
	ExceptionType string
	Endpoint      string
	Since         *time.Time
	Until         *time.Time
}

// ErrorLogListOptions controls pagination and filtering for error log queries.
type ErrorLogListOptions struct {
	Page     int
	PageSize int
	Filters  ErrorLogFilters
}

// ErrorLogService persists unhandled failures. Writes are fire-and-forget so
// error capture never adds a second failure to the request being reported.
type ErrorLogService struct {
	db  *gorm.DB
	log *zap.Logger

	wg sync.WaitGroup
}

// NewErrorLogService constructs an ErrorLogService.
func NewErrorLogService(db *gorm.DB) (*ErrorLogService, error) {
	if db == nil {
		return nil, errors.New("error log service: db is required")
	}
	return &ErrorLogService{db: db, log: logger.WithModule("errorlog")}, nil
}

// Record writes one error entry asynchronously. Oversized fields are
// truncated to the column widths; a failed insert is logged and dropped.
func (s *ErrorLogService) Record(userID *uint, endpoint, exceptionType, message, stacktrace string) {
	entry := models.ErrorLog{
		UserID:        userID,
		Endpoint:      truncate(endpoint, maxErrorEndpoint),
		ExceptionType: truncate(exceptionType, maxErrorExceptionType),
		Message:       truncate(message, maxErrorMessage),
		Stacktrace:    truncate(stacktrace, maxErrorStacktrace),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Create(&entry).Error; err != nil {
			s.log.Warn("error log write dropped",
				zap.String("endpoint", entry.Endpoint),
				zap.Error(err),
			)
		}
	}()
}

// Flush blocks until all in-flight writes have completed.
func (s *ErrorLogService) Flush() {
	s.wg.Wait()
}

// List returns paginated error logs ordered by creation time descending.
func (s *ErrorLogService) List(ctx context.Context, opts ErrorLogListOptions) ([]models.ErrorLog, int64, error) {
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
		results []models.ErrorLog
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.ErrorLog{})
	query = applyErrorLogFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error log service: count logs: %w", err)
	}

	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("error log service: list logs: %w", err)
	}

	return results, total, nil
}

// DeleteOlderThan removes error logs older than the supplied retention window (in days).
func (s *ErrorLogService) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("error log service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("error log service: cleanup logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func applyErrorLogFilters(query *gorm.DB, filters ErrorLogFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.ExceptionType != "" {
		query = query.Where("exception_type = ?", filters.ExceptionType)
	}
	if filters.Endpoint != "" {
		query = query.Where("endpoint LIKE ?", "%"+filters.Endpoint+"%")
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
