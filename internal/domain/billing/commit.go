package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entitlement-app/config"
	"entitlement-app/internal/domain/payments"
	"entitlement-app/internal/domain/rewards"
	"entitlement-app/internal/domain/users"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommitInput struct {
	OrderID         string
	PaymentID       string
	Signature       string
	UserID          string
	PaymentRecordID string
	BonusAmount     int64
}

func (in CommitInput) validate() error {
	switch {
	case in.OrderID == "":
		return payments.New(payments.CodeInvalidRequest, "orderId is required")
	case in.PaymentID == "":
		return payments.New(payments.CodeInvalidRequest, "paymentId is required")
	case in.Signature == "":
		return payments.New(payments.CodeInvalidRequest, "signature is required")
	case in.UserID == "":
		return payments.New(payments.CodeInvalidRequest, "userId is required")
	case in.PaymentRecordID == "":
		return payments.New(payments.CodeInvalidRequest, "paymentRecordId is required")
	case in.BonusAmount < 0:
		return payments.New(payments.CodeInvalidRequest, "bonus amount must not be negative")
	}
	return nil
}

// CommitResult reports what the commit did. Verified only means the
// signature was accepted; Warnings lists writes that did not apply.
type CommitResult struct {
	Verified    bool
	Environment payments.Environment
	Replayed    bool
	Warnings    []error
}

// Committer turns a verified payment into entitlement and a reward grant.
type Committer struct {
	DB      *gorm.DB
	Secrets []payments.Secret
	Mode    string
	Logger  *slog.Logger
	Now     func() time.Time
}

func NewCommitter(db *gorm.DB, secrets []payments.Secret, mode string, logger *slog.Logger) *Committer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Committer{
		DB:      db,
		Secrets: secrets,
		Mode:    mode,
		Logger:  logger,
		Now:     time.Now,
	}
}

var errPaymentNotPending = errors.New("payment record not found, not owned by user, or already completed")

// Commit verifies the signature and, only if it matches a configured
// secret, applies the entitlement writes. Write failures never turn a
// verified payment into an error; they come back as Warnings.
func (c *Committer) Commit(ctx context.Context, in CommitInput) (CommitResult, error) {
	if err := in.validate(); err != nil {
		return CommitResult{}, err
	}

	flow := newCommitFlow()
	if err := flow.advance(CommitVerifying); err != nil {
		return CommitResult{}, err
	}

	env, ok := payments.Verify(c.Secrets, in.OrderID, in.PaymentID, in.Signature)
	if !ok {
		c.Logger.Warn("payment signature rejected",
			"order_id", in.OrderID,
			"payment_id", in.PaymentID,
			"user_id", in.UserID)
		return CommitResult{}, payments.New(payments.CodeInvalidSignature, "Invalid payment signature")
	}

	if err := flow.advance(CommitCommitting); err != nil {
		return CommitResult{}, err
	}

	result := CommitResult{Verified: true, Environment: env}
	now := c.now()

	if c.Mode == config.CommitModeSequential {
		result.Warnings = c.commitSequential(ctx, in, env, now)
	} else {
		replayed, err := c.commitTransactional(ctx, in, env, now)
		result.Replayed = replayed
		if err != nil {
			result.Warnings = append(result.Warnings,
				payments.Wrap(payments.CodePersistenceWarning, "apply entitlement", err))
		}
	}

	for _, w := range result.Warnings {
		c.Logger.Error("persistence warning",
			"payment_id", in.PaymentID,
			"payment_record_id", in.PaymentRecordID,
			"user_id", in.UserID,
			"mode", c.Mode,
			"err", w)
	}

	if result.Replayed {
		c.Logger.Info("payment already committed, skipping writes",
			"payment_id", in.PaymentID,
			"user_id", in.UserID)
		return result, nil
	}

	if len(result.Warnings) == 0 {
		if err := flow.advance(CommitCommitted); err != nil {
			return result, err
		}
		c.Logger.Info("entitlement committed",
			"payment_id", in.PaymentID,
			"user_id", in.UserID,
			"environment", string(env),
			"bonus", in.BonusAmount)
	}
	return result, nil
}

// commitTransactional applies every write in one transaction, keyed by the
// gateway payment id. A replay finds the key and writes nothing.
func (c *Committer) commitTransactional(ctx context.Context, in CommitInput, env payments.Environment, now time.Time) (bool, error) {
	replayed := false

	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		marker := PaymentCommit{
			PaymentID:       in.PaymentID,
			PaymentRecordID: in.PaymentRecordID,
			UserID:          in.UserID,
			Environment:     string(env),
			State:           CommitCommitting,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
		if res.Error != nil {
			return fmt.Errorf("record idempotency key: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			replayed = true
			return nil
		}

		res = tx.Model(&Payment{}).
			Where("id = ? AND user_id = ? AND status = ?", in.PaymentRecordID, in.UserID, PaymentPending).
			Updates(map[string]interface{}{
				"status":         PaymentCompleted,
				"transaction_id": in.PaymentID,
				"payment_method": string(env),
				"completed_at":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("mark payment completed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("mark payment completed: %w", errPaymentNotPending)
		}

		res = tx.Model(&users.User{}).
			Where("id = ?", in.UserID).
			Updates(map[string]interface{}{
				"has_paid":     true,
				"payment_date": gorm.Expr("COALESCE(payment_date, ?)", now),
			})
		if res.Error != nil {
			return fmt.Errorf("mark user paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("mark user paid: %w", gorm.ErrRecordNotFound)
		}

		entry := rewards.LedgerEntry{
			UserID:        in.UserID,
			Amount:        in.BonusAmount,
			Reason:        rewards.ReasonWelcomeBonus,
			ReferenceType: rewards.ReferencePayment,
			ReferenceID:   in.PaymentRecordID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append reward ledger entry: %w", err)
		}

		if _, err := rewards.SyncBalance(ctx, tx, in.UserID); err != nil {
			return err
		}

		return tx.Model(&PaymentCommit{}).
			Where("payment_id = ?", in.PaymentID).
			Updates(map[string]interface{}{
				"state":        CommitCommitted,
				"committed_at": now,
			}).Error
	})

	return replayed, err
}

// commitSequential is the legacy write path: four independent writes with
// no idempotency key and no rollback. A failed step is reported and the
// next step still runs. Step (d) overwrites the balance with the bonus
// instead of deriving it from the ledger, so replays reset the balance
// and earlier credits are lost until reconciliation.
func (c *Committer) commitSequential(ctx context.Context, in CommitInput, env payments.Environment, now time.Time) []error {
	db := c.DB.WithContext(ctx)
	var warnings []error
	warn := func(step string, err error) {
		warnings = append(warnings, payments.Wrap(payments.CodePersistenceWarning, step, err))
	}

	res := db.Model(&Payment{}).
		Where("id = ?", in.PaymentRecordID).
		Updates(map[string]interface{}{
			"status":         PaymentCompleted,
			"transaction_id": in.PaymentID,
			"payment_method": string(env),
			"completed_at":   now,
		})
	switch {
	case res.Error != nil:
		warn("mark payment completed", res.Error)
	case res.RowsAffected == 0:
		warn("mark payment completed", gorm.ErrRecordNotFound)
	}

	res = db.Model(&users.User{}).
		Where("id = ?", in.UserID).
		Updates(map[string]interface{}{
			"has_paid":     true,
			"payment_date": now,
		})
	switch {
	case res.Error != nil:
		warn("mark user paid", res.Error)
	case res.RowsAffected == 0:
		warn("mark user paid", gorm.ErrRecordNotFound)
	}

	entry := rewards.LedgerEntry{
		UserID:        in.UserID,
		Amount:        in.BonusAmount,
		Reason:        rewards.ReasonWelcomeBonus,
		ReferenceType: rewards.ReferencePayment,
		ReferenceID:   in.PaymentRecordID,
	}
	if err := db.Create(&entry).Error; err != nil {
		warn("append reward ledger entry", err)
	}

	c.Logger.Warn("reward balance overwritten with bonus amount, ledger sum not consulted",
		"user_id", in.UserID,
		"bonus", in.BonusAmount)
	res = db.Model(&users.User{}).
		Where("id = ?", in.UserID).
		Update("reward_balance", in.BonusAmount)
	switch {
	case res.Error != nil:
		warn("set reward balance", res.Error)
	case res.RowsAffected == 0:
		warn("set reward balance", gorm.ErrRecordNotFound)
	}

	return warnings
}

func (c *Committer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
