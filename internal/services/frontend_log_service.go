package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/models"
	appErrors "github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/logger"
)

const (
	maxFrontendAction  = 255
	maxFrontendPage    = 255
	maxFrontendDetails = 2000
)

// FrontendLogFilters encapsulates optional filters when querying frontend logs.
type FrontendLogFilters struct {
	UserID *uint
	Action string
	Page   string
	Since  *time.Time
	Until  *time.Time
}

// FrontendLogListOptions controls pagination and filtering for frontend log queries.
type FrontendLogListOptions struct {
	Page     int
	PageSize int
	Filters  FrontendLogFilters
}

// FrontendLogService persists user actions reported by the web client.
// Writes are fire-and-forget; the ingest endpoint never blocks on storage.
type FrontendLogService struct {
	db  *gorm.DB
	log *zap.Logger

	wg sync.WaitGroup
}

// NewFrontendLogService constructs a FrontendLogService.
func NewFrontendLogService(db *gorm.DB) (*FrontendLogService, error) {
	if db == nil {
		return nil, errors.New("frontend log service: db is required")
	}
	return &FrontendLogService{db: db, log: logger.WithModule("frontendlog")}, nil
}

// Record writes one client action asynchronously. The action verb is
// required; everything else is best-effort context.
func (s *FrontendLogService) Record(userID *uint, action, page, details string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return appErrors.NewBadRequest("action is required")
	}

	entry := models.FrontendLog{
		UserID:  userID,
		Action:  truncate(action, maxFrontendAction),
		Page:    truncate(page, maxFrontendPage),
		Details: truncate(details, maxFrontendDetails),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Create(&entry).Error; err != nil {
			s.log.Warn("frontend log write dropped",
				zap.String("action", entry.Action),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Flush blocks until all in-flight writes have completed.
func (s *FrontendLogService) Flush() {
	s.wg.Wait()
}

// List returns paginated frontend logs ordered by creation time descending.
func (s *FrontendLogService) List(ctx context.Context, opts FrontendLogListOptions) ([]models.FrontendLog, int64, error) {
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
		results []models.FrontendLog
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.FrontendLog{})
	query = applyFrontendLogFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("frontend log service: count logs: %w", err)
	}

	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("frontend log service: list logs: %w", err)
	}

	return results, total, nil
}

// DeleteOlderThan removes frontend logs older than the supplied retention window (in days).
func (s *FrontendLogService) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("frontend log service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.FrontendLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("frontend log service: cleanup logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func applyFrontendLogFilters(query *gorm.DB, filters FrontendLogFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != "" {
		query = query.Where("action LIKE ?", "%"+filters.Action+"%")
	}
	if filters.Page != "" {
		query = query.Where("page LIKE ?", "%"+filters.Page+"%")
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
