package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/authz"
	"github.com/akademi/edutrack/internal/models"
	apperrors "github.com/akademi/edutrack/pkg/errors"
)

// PaymentInput describes the fields accepted when creating or updating a payment.
type PaymentInput struct {
	Amount      float64
	Description string
	EducationID *uint
	TrainerID   *uint
	StatusID    *uint
}

// PaymentFilters captures listing filters.
type PaymentFilters struct {
	EducationID *uint
	TrainerID   *uint
	StatusID    *uint
	Unpaid      bool
}

// PaymentService manages expense records for trainers and educations.
type PaymentService struct {
	db       *gorm.DB
	engine   *authz.Engine
	activity *ActivityLogService
	perf     *PerformanceLogService
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(db *gorm.DB, engine *authz.Engine, activity *ActivityLogService, perf *PerformanceLogService) (*PaymentService, error) {
	if db == nil {
		return nil, errors.New("payment service: db is required")
	}
	if engine == nil {
		return nil, errors.New("payment service: authz engine is required")
	}
	return &PaymentService{db: db, engine: engine, activity: activity, perf: perf}, nil
}

func paymentSpec(action string) authz.ActivitySpec[*models.Payment] {
	return authz.ActivitySpec[*models.Payment]{
		Action:     action,
		EntityType: "Payment",
		EntityID:   func(pm *models.Payment) *uint { return &pm.ID },
		Describe:   func(pm *models.Payment) string { return fmt.Sprintf("%.2f %s", pm.Amount, pm.Description) },
	}
}

// Create records a new payment.
func (s *PaymentService) Create(ctx context.Context, p *auth.Principal, input PaymentInput) (*models.Payment, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "payment", "create", func() (*models.Payment, error) {
		return authz.WithActivityLog(s.activity, actorID(p), paymentSpec("CREATE_PAYMENT"), func() (*models.Payment, error) {
			if input.Amount <= 0 {
				return nil, apperrors.NewBadRequest("amount must be positive")
			}

			payment := &models.Payment{
				Amount:      input.Amount,
				Description: strings.TrimSpace(input.Description),
				EducationID: input.EducationID,
				TrainerID:   input.TrainerID,
				StatusID:    input.StatusID,
			}
			if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
				return nil, fmt.Errorf("payment service: create: %w", err)
			}
			return payment, nil
		})
	})
}

// Get returns one payment with its associations preloaded.
func (s *PaymentService) Get(ctx context.Context, p *auth.Principal, id uint) (*models.Payment, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "payment", "view", func() (*models.Payment, error) {
		var payment models.Payment
		err := s.db.WithContext(ctx).
			Preload("Education").
			Preload("Trainer").
			Preload("Status").
			First(&payment, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("payment")
			}
			return nil, fmt.Errorf("payment service: get: %w", err)
		}
		return &payment, nil
	})
}

// List returns payments matching the filters, most recent first.
func (s *PaymentService) List(ctx context.Context, p *auth.Principal, filters PaymentFilters) ([]models.Payment, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "payment", "view", func() ([]models.Payment, error) {
		return authz.WithTiming(s.perf, "PaymentService.List", func() ([]models.Payment, error) {
			query := s.db.WithContext(ctx).Model(&models.Payment{})
			if filters.EducationID != nil {
				query = query.Where("education_id = ?", *filters.EducationID)
			}
			if filters.TrainerID != nil {
				query = query.Where("trainer_id = ?", *filters.TrainerID)
			}
			if filters.StatusID != nil {
				query = query.Where("status_id = ?", *filters.StatusID)
			}
			if filters.Unpaid {
				query = query.Where("paid_at IS NULL")
			}

			var payments []models.Payment
			err := query.
				Preload("Trainer").
				Preload("Education").
				Order("created_at DESC").
				Find(&payments).Error
			if err != nil {
				return nil, fmt.Errorf("payment service: list: %w", err)
			}
			return payments, nil
		})
	})
}

// Update rewrites a payment's details. Settled payments stay mutable; the
// activity log keeps the change history.
func (s *PaymentService) Update(ctx context.Context, p *auth.Principal, id uint, input PaymentInput) (*models.Payment, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "payment", "update", func() (*models.Payment, error) {
		return authz.WithActivityLog(s.activity, actorID(p), paymentSpec("UPDATE_PAYMENT"), func() (*models.Payment, error) {
			var payment models.Payment
			if err := s.db.WithContext(ctx).First(&payment, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("payment")
				}
				return nil, fmt.Errorf("payment service: load: %w", err)
			}

			if input.Amount <= 0 {
				return nil, apperrors.NewBadRequest("amount must be positive")
			}

			payment.Amount = input.Amount
			payment.Description = strings.TrimSpace(input.Description)
			payment.EducationID = input.EducationID
			payment.TrainerID = input.TrainerID
			payment.StatusID = input.StatusID

			if err := s.db.WithContext(ctx).Save(&payment).Error; err != nil {
				return nil, fmt.Errorf("payment service: update: %w", err)
			}
			return &payment, nil
		})
	})
}

// MarkPaid stamps a payment as settled. Already-settled payments are left
// untouched.
func (s *PaymentService) MarkPaid(ctx context.Context, p *auth.Principal, id uint) (*models.Payment, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "payment", "update", func() (*models.Payment, error) {
		return authz.WithActivityLog(s.activity, actorID(p), paymentSpec("MARK_PAYMENT_PAID"), func() (*models.Payment, error) {
			var payment models.Payment
			if err := s.db.WithContext(ctx).First(&payment, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewNotFound("payment")
				}
				return nil, fmt.Errorf("payment service: load: %w", err)
			}

			if payment.PaidAt == nil {
				now := time.Now()
				if err := s.db.WithContext(ctx).Model(&payment).Update("paid_at", now).Error; err != nil {
					return nil, fmt.Errorf("payment service: mark paid: %w", err)
				}
				payment.PaidAt = &now
			}
			return &payment, nil
		})
	})
}

// TotalForEducation sums all payments attached to one education.
func (s *PaymentService) TotalForEducation(ctx context.Context, p *auth.Principal, educationID uint) (float64, error) {
	ctx = ensureContext(ctx)

	return authz.Guarded(ctx, s.engine, p, "payment", "view", func() (float64, error) {
		var total float64
		err := s.db.WithContext(ctx).
			Model(&models.Payment{}).
			Where("education_id = ?", educationID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error
		if err != nil {
			return 0, fmt.Errorf("payment service: total: %w", err)
		}
		return total, nil
	})
}

// Delete removes a payment record.
func (s *PaymentService) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	ctx = ensureContext(ctx)

	_, err := authz.Guarded(ctx, s.engine, p, "payment", "delete", func() (struct{}, error) {
		spec := authz.ActivitySpec[struct{}]{
			Action:     "DELETE_PAYMENT",
			EntityType: "Payment",
			EntityID:   func(struct{}) *uint { return &id },
			Describe:   func(struct{}) string { return fmt.Sprintf("Deleted payment #%d", id) },
			LogOnError: true,
		}
		return authz.WithActivityLog(s.activity, actorID(p), spec, func() (struct{}, error) {
			result := s.db.WithContext(ctx).Delete(&models.Payment{}, id)
			if result.Error != nil {
				return struct{}{}, fmt.Errorf("payment service: delete: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return struct{}{}, apperrors.NewNotFound("payment")
			}
			return struct{}{}, nil
		})
	})
	return err
}
