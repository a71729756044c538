package domain

import "time"

type Role string

const (
	RoleMaker Role = "maker"
	RoleTaker Role = "taker"
)

type MembershipTier string

const (
	TierFree    MembershipTier = "free"
	TierPremium MembershipTier = "premium"
)

// Profile mirrors the marketplace user row this subsystem needs: provider
// customer linkage for subscription webhooks and a push token for dispatch.
type Profile struct {
	UserID           string         `json:"userId"`
	Role             Role           `json:"role"`
	StripeCustomerID string         `json:"stripeCustomerId,omitempty"`
	Tier             MembershipTier `json:"tier"`
	ExpoPushToken    string         `json:"expoPushToken,omitempty"`
	MetroArea        string         `json:"metroArea,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
