package access

import "entitlement-app/internal/domain/users"

// CanAccess is the feature gate: paid users get everything, everyone else
// only the free catalog. Unknown features are denied to unpaid users.
func CanAccess(featureID string, state EntitlementState) bool {
	if state.HasPaid {
		return true
	}
	return IsFree(Feature(featureID))
}

type Policy struct {
	Tier         Tier
	State        EntitlementState
	Capabilities []Feature
}

func ComputePolicy(u users.User) Policy {
	state := StateFor(u)

	return Policy{
		Tier:         TierFromState(state),
		State:        state,
		Capabilities: CapabilitiesFor(state),
	}
}
