package users

import "time"

type MeResponse struct {
	User        UserDTO        `json:"user"`
	Entitlement EntitlementDTO `json:"entitlement"`
	Access      AccessDTO      `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Lastname     string `json:"lastname"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
}

/* ---------- ENTITLEMENT ---------- */

type EntitlementDTO struct {
	HasPaid       bool       `json:"has_paid"`
	PaymentDate   *time.Time `json:"payment_date"`
	RewardBalance int64      `json:"reward_balance"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	Tier         string   `json:"tier"` // free|paid
	Capabilities []string `json:"capabilities"`
}

type FeatureDTO struct {
	Feature string `json:"feature"`
	Known   bool   `json:"known"`
	Free    bool   `json:"free"`
	Allowed bool   `json:"allowed"`
}
