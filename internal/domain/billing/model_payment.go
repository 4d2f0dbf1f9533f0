package billing

import (
	"time"

	"entitlement-app/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment is the platform-side record of a one-time payment. It is created
// pending and completed exactly once by the entitlement commit.
type Payment struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)"`
	UserID        string     `gorm:"type:varchar(36);not null;index"`
	User          users.User `gorm:"constraint:OnDelete:CASCADE"`
	OrderID       *string    `gorm:"column:order_id;index"`
	AmountMinor   int64      `gorm:"column:amount_minor"`
	Currency      string     `gorm:"type:varchar(3);not null;default:'INR'"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	TransactionID *string    `gorm:"column:transaction_id;uniqueIndex:idx_payments_transaction_id"`
	PaymentMethod *string    `gorm:"column:payment_method"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return nil
}
