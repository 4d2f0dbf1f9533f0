package rewards

import (
	"context"
	"fmt"
	"time"

	"entitlement-app/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReasonWelcomeBonus = "welcome_bonus"

	ReferencePayment = "payment"
)

// LedgerEntry is an append-only reward grant or debit. A reference
// (type, id) appears at most once, so a payment can credit only once.
type LedgerEntry struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Reason        string    `gorm:"type:varchar(50);not null" json:"reason"`
	ReferenceType string    `gorm:"type:varchar(30);uniqueIndex:idx_reward_ledger_reference" json:"reference_type"`
	ReferenceID   string    `gorm:"type:varchar(64);uniqueIndex:idx_reward_ledger_reference" json:"reference_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "reward_ledger_entries"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Balance sums the user's ledger.
func Balance(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	if err := db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum reward ledger: %w", err)
	}
	return total, nil
}

// Entries lists the user's ledger, newest first.
func Entries(ctx context.Context, db *gorm.DB, userID string) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list reward ledger: %w", err)
	}
	return entries, nil
}

// Sums returns ledger totals per user.
func Sums(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		UserID string
		Total  int64
	}
	if err := db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Select("user_id, COALESCE(SUM(amount), 0) AS total").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sum reward ledger by user: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.Total
	}
	return out, nil
}

// SyncBalance rewrites users.reward_balance from the ledger sum.
func SyncBalance(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	total, err := Balance(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", userID).
		Update("reward_balance", total)
	if res.Error != nil {
		return 0, fmt.Errorf("update reward balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("update reward balance for %s: %w", userID, gorm.ErrRecordNotFound)
	}
	return total, nil
}
