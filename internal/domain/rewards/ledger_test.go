package rewards_test

import (
	"context"
	"testing"

	"entitlement-app/internal/domain/rewards"
	"entitlement-app/internal/domain/users"
	"entitlement-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceAndSync(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	u := users.User{Name: "Ravi", Email: "ravi@example.com", RewardBalance: 100}
	require.NoError(t, db.Create(&u).Error)

	balance, err := rewards.Balance(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	for _, e := range []rewards.LedgerEntry{
		{UserID: u.ID, Amount: 100, Reason: rewards.ReasonWelcomeBonus, ReferenceType: rewards.ReferencePayment, ReferenceID: "rec-1"},
		{UserID: u.ID, Amount: 100, Reason: rewards.ReasonWelcomeBonus, ReferenceType: rewards.ReferencePayment, ReferenceID: "rec-2"},
		{UserID: u.ID, Amount: -30, Reason: "redeemed", ReferenceType: "redemption", ReferenceID: "r-1"},
	} {
		require.NoError(t, db.Create(&e).Error)
	}

	balance, err = rewards.Balance(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(170), balance)

	synced, err := rewards.SyncBalance(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(170), synced)

	var got users.User
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, int64(170), got.RewardBalance)

	entries, err := rewards.Entries(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	sums, err := rewards.Sums(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{u.ID: 170}, sums)
}

func TestLedger_ReferenceIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	u := users.User{Name: "Ravi", Email: "ravi@example.com"}
	require.NoError(t, db.Create(&u).Error)

	entry := func() *rewards.LedgerEntry {
		return &rewards.LedgerEntry{
			UserID: u.ID, Amount: 100, Reason: rewards.ReasonWelcomeBonus,
			ReferenceType: rewards.ReferencePayment, ReferenceID: "rec-1",
		}
	}
	require.NoError(t, db.Create(entry()).Error)
	assert.Error(t, db.Create(entry()).Error)
}

func TestSyncBalance_UnknownUser(t *testing.T) {
	_, err := rewards.SyncBalance(context.Background(), testutil.NewDB(t), "missing")
	assert.Error(t, err)
}
