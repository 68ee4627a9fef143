// Package model defines the data structures used throughout the application.
package model

// Account is a local user account, created lazily on first OIDC login.
//
// ID is a service-generated 16-character alphanumeric string. UpstreamID is
// the identity provider's stable subject claim; a UNIQUE constraint in the
// store guarantees one local account per upstream identity.
//
// Username, DisplayName and AvatarURL are snapshots of the upstream profile
// taken at first login. They are never refreshed on later logins and can go
// stale relative to the upstream profile.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	UpstreamID  string `json:"upstream_userid"`
}
