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

// Column widths enforced before insert so oversized captions never fail a write.
const (
	maxActivityAction      = 100
	maxActivityEntityType  = 100
	maxActivityDescription = 1000
)

// ActivityLogFilters encapsulates optional filters when querying activity logs.
type ActivityLogFilters struct {
	UserID     *uint
	Action     string
	EntityType string
	EntityID   *uint
	Since      *time.Time
	Until      *time.Time
}

// ActivityLogListOptions controls pagination and filtering for activity queries.
type ActivityLogListOptions struct {
	Page     int
	PageSize int
	Filters  ActivityLogFilters
}

// ActivityLogService persists and retrieves the business audit trail. Writes
// are fire-and-forget: callers never wait on, or fail because of, the audit
// store.
type ActivityLogService struct {
	db  *gorm.DB
	log *zap.Logger

	wg sync.WaitGroup
}

// NewActivityLogService constructs an ActivityLogService using the provided database handle.
func NewActivityLogService(db *gorm.DB) (*ActivityLogService, error) {
	if db == nil {
		return nil, errors.New("activity log service: db is required")
	}
	return &ActivityLogService{db: db, log: logger.WithModule("activitylog")}, nil
}

// Record writes an audit entry asynchronously. Oversized fields are truncated
// to the column widths, a failed insert is logged and dropped, and the caller
// is never blocked.
func (s *ActivityLogService) Record(actorID *uint, action, entityType string, entityID *uint, description string) {
	entry := models.ActivityLog{
		UserID:      actorID,
		Action:      truncate(action, maxActivityAction),
		EntityType:  truncate(entityType, maxActivityEntityType),
		EntityID:    entityID,
		Description: truncate(description, maxActivityDescription),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Create(&entry).Error; err != nil {
			s.log.Warn("activity write dropped",
				zap.String("action", entry.Action),
				zap.Error(err),
			)
		}
	}()
}

// Flush blocks until all in-flight writes have completed. Used during
// shutdown and by tests.
func (s *ActivityLogService) Flush() {
	s.wg.Wait()
}

// List returns paginated activity logs ordered by creation time descending.
func (s *ActivityLogService) List(ctx context.Context, opts ActivityLogListOptions) ([]models.ActivityLog, int64, error) {
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
		results []models.ActivityLog
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	query = applyActivityFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("activity log service: count logs: %w", err)
	}

	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("activity log service: list logs: %w", err)
	}

	return results, total, nil
}

// DeleteOlderThan removes activity logs older than the supplied retention window (in days).
func (s *ActivityLogService) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("activity log service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("activity log service: cleanup logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func applyActivityFilters(query *gorm.DB, filters ActivityLogFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.EntityType != "" {
		query = query.Where("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != nil {
		query = query.Where("entity_id = ?", *filters.EntityID)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
