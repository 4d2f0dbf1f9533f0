package billing

import (
	"fmt"
	"time"
)

// CommitState tracks one paymentId through the entitlement commit.
//
//	pending -> verifying -> committing -> committed
//
// committed is reachable at most once per paymentId; the payment_commits
// primary key enforces that across processes.
type CommitState string

const (
	CommitPending    CommitState = "pending"
	CommitVerifying  CommitState = "verifying"
	CommitCommitting CommitState = "committing"
	CommitCommitted  CommitState = "committed"
)

var commitTransitions = map[CommitState]CommitState{
	CommitPending:    CommitVerifying,
	CommitVerifying:  CommitCommitting,
	CommitCommitting: CommitCommitted,
}

// CanTransition reports whether to directly follows s.
func (s CommitState) CanTransition(to CommitState) bool {
	next, ok := commitTransitions[s]
	return ok && next == to
}

// PaymentCommit is the idempotency key for a gateway payment id.
type PaymentCommit struct {
	PaymentID       string      `gorm:"primaryKey;type:varchar(64)"`
	PaymentRecordID string      `gorm:"type:varchar(36);not null;index"`
	UserID          string      `gorm:"type:varchar(36);not null;index"`
	Environment     string      `gorm:"type:varchar(10)"`
	State           CommitState `gorm:"type:varchar(20);not null"`
	CommittedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type commitFlow struct {
	state CommitState
}

func newCommitFlow() *commitFlow {
	return &commitFlow{state: CommitPending}
}

func (f *commitFlow) advance(to CommitState) error {
	if !f.state.CanTransition(to) {
		return fmt.Errorf("illegal commit transition %s -> %s", f.state, to)
	}
	f.state = to
	return nil
}
