package paywall

import (
	"github.com/trendscouthq/trendscout/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the paywall oracle.
type Repository interface {
	// HasSucceededPayment reports whether any succeeded payment row exists
	// for a user. Duplicate rows collapse here, so best-effort repair
	// inserts never need to be unique.
	HasSucceededPayment(userID uint) (bool, error)
	// CreatePayment inserts a payment mirror row.
	CreatePayment(p *models.Payment) error
	// ListPaymentsByUser returns a user's payment history, newest first.
	ListPaymentsByUser(userID uint) ([]models.Payment, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a paywall repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) HasSucceededPayment(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("user_id = ? AND status = ?", userID, models.PaymentStatusSucceeded).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) ListPaymentsByUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}
