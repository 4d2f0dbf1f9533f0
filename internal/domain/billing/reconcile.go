package billing

import (
	"context"
	"fmt"

	"entitlement-app/internal/domain/rewards"
	"entitlement-app/internal/domain/users"

	"gorm.io/gorm"
)

// Drift compares a user's stored entitlement against what the payment
// records and reward ledger say it should be.
type Drift struct {
	UserID          string `json:"user_id"`
	HasPaid         bool   `json:"has_paid"`
	ExpectedHasPaid bool   `json:"expected_has_paid"`
	RewardBalance   int64  `json:"reward_balance"`
	LedgerBalance   int64  `json:"ledger_balance"`
}

func (d Drift) Any() bool {
	return d.HasPaid != d.ExpectedHasPaid || d.RewardBalance != d.LedgerBalance
}

// Reconcile repairs one user: reward_balance becomes the ledger sum and
// has_paid is raised if a completed payment exists. has_paid is never
// lowered. The returned Drift holds the values found before the repair.
func Reconcile(ctx context.Context, db *gorm.DB, userID string) (Drift, error) {
	var drift Drift

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user users.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		var completed int64
		if err := tx.Model(&Payment{}).
			Where("user_id = ? AND status = ?", userID, PaymentCompleted).
			Count(&completed).Error; err != nil {
			return fmt.Errorf("count completed payments: %w", err)
		}

		ledger, err := rewards.Balance(ctx, tx, userID)
		if err != nil {
			return err
		}

		drift = Drift{
			UserID:          user.ID,
			HasPaid:         user.HasPaid,
			ExpectedHasPaid: completed > 0,
			RewardBalance:   user.RewardBalance,
			LedgerBalance:   ledger,
		}
		if !drift.Any() {
			return nil
		}

		updates := map[string]interface{}{"reward_balance": ledger}
		if drift.ExpectedHasPaid && !user.HasPaid {
			var first Payment
			if err := tx.Where("user_id = ? AND status = ?", userID, PaymentCompleted).
				Order("completed_at ASC").
				First(&first).Error; err != nil {
				return fmt.Errorf("load first completed payment: %w", err)
			}
			updates["has_paid"] = true
			updates["payment_date"] = first.CompletedAt
		}

		return tx.Model(&users.User{}).Where("id = ?", userID).Updates(updates).Error
	})

	return drift, err
}

// FindDrift lists every user whose stored entitlement disagrees with the
// payment records or reward ledger.
func FindDrift(ctx context.Context, db *gorm.DB) ([]Drift, error) {
	var all []users.User
	if err := db.WithContext(ctx).
		Select("id", "has_paid", "reward_balance").
		Find(&all).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	sums, err := rewards.Sums(ctx, db)
	if err != nil {
		return nil, err
	}

	var paidIDs []string
	if err := db.WithContext(ctx).
		Model(&Payment{}).
		Where("status = ?", PaymentCompleted).
		Distinct().
		Pluck("user_id", &paidIDs).Error; err != nil {
		return nil, fmt.Errorf("load paid users: %w", err)
	}
	paid := make(map[string]bool, len(paidIDs))
	for _, id := range paidIDs {
		paid[id] = true
	}

	out := []Drift{}
	for _, u := range all {
		d := Drift{
			UserID:          u.ID,
			HasPaid:         u.HasPaid,
			ExpectedHasPaid: paid[u.ID],
			RewardBalance:   u.RewardBalance,
			LedgerBalance:   sums[u.ID],
		}
		if d.Any() {
			out = append(out, d)
		}
	}
	return out, nil
}
