package users

import (
	"entitlement-app/internal/domain/access"
	"entitlement-app/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Lastname:     u.Lastname,
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
	}
}

func BuildEntitlementDTO(state access.EntitlementState) EntitlementDTO {
	return EntitlementDTO{
		HasPaid:       state.HasPaid,
		PaymentDate:   state.PaymentDate,
		RewardBalance: state.RewardBalance,
	}
}

func BuildAccessDTO(policy access.Policy) AccessDTO {
	caps := make([]string, 0, len(policy.Capabilities))
	for _, f := range policy.Capabilities {
		caps = append(caps, string(f))
	}
	return AccessDTO{
		Tier:         string(policy.Tier),
		Capabilities: caps,
	}
}

func BuildFeatureDTO(feature string, state access.EntitlementState) FeatureDTO {
	f := access.Feature(feature)
	return FeatureDTO{
		Feature: feature,
		Known:   access.Known(f),
		Free:    access.IsFree(f),
		Allowed: access.CanAccess(feature, state),
	}
}
