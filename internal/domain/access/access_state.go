package access

import "entitlement-app/internal/domain/users"

// StateFor snapshots a user's entitlement.
func StateFor(u users.User) EntitlementState {
	return EntitlementState{
		HasPaid:       u.HasPaid,
		PaymentDate:   u.PaymentDate,
		RewardBalance: u.RewardBalance,
	}
}

func TierFromState(state EntitlementState) Tier {
	if state.HasPaid {
		return TierPaid
	}
	return TierFree
}
