package models

import "time"

const (
	PaymentProviderStripe = "stripe"

	PaymentStatusSucceeded = "succeeded"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

// Payment is the local mirror of one confirmed payment event at the
// provider. Rows are inserted by checkout settlement or by the paywall
// oracle's repair step when it sees an active subscription that is not
// mirrored yet; they are never updated or deleted by this workflow.
//
// The (user_id, status) pair is deliberately NOT unique: repair inserts are
// best-effort and may race, so reads collapse to "any succeeded row exists"
// instead of relying on row uniqueness.
type Payment struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"not null;index:idx_payments_user_status,priority:1" json:"user_id"`
	Provider              string    `gorm:"type:varchar(20);not null;default:'stripe'" json:"provider"`
	ProviderCustomerID    string    `gorm:"type:varchar(191);not null;index" json:"provider_customer_id"`
	ProviderTransactionID string    `gorm:"type:varchar(191);not null;index" json:"provider_transaction_id"`
	Amount                int64     `gorm:"not null;default:0" json:"amount"`
	Currency              string    `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	Status                string    `gorm:"type:varchar(32);not null;index:idx_payments_user_status,priority:2" json:"status"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
}
