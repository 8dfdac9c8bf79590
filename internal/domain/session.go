package domain

import "time"

// Session represents one authenticated connection between the app and a shop.
// Offline sessions are shop-scoped and long-lived; online sessions are
// user-scoped, carry an expiry, and include the associated user identity.
type Session struct {
	ID               string            `json:"id"`
	Shop             string            `json:"shop"`
	State            string            `json:"state,omitempty"`
	IsOnline         bool              `json:"isOnline"`
	AccessToken      string            `json:"accessToken"`
	Scope            string            `json:"scope"`
	Expires          *time.Time        `json:"expires,omitempty"`
	OnlineAccessInfo *OnlineAccessInfo `json:"onlineAccessInfo,omitempty"`
}

// OnlineAccessInfo is the user payload attached to online sessions.
type OnlineAccessInfo struct {
	ExpiresIn           int             `json:"expires_in,omitempty"`
	AssociatedUserScope string          `json:"associated_user_scope,omitempty"`
	AssociatedUser      *AssociatedUser `json:"associated_user,omitempty"`
}

// AssociatedUser identifies the staff member behind an online session.
type AssociatedUser struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	AccountOwner  bool   `json:"account_owner,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// OfflineSessionID returns the canonical id for a shop's offline session.
func OfflineSessionID(shop string) string {
	return "offline_" + shop
}
