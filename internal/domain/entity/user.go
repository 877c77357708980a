package entity

import "encoding/json"

// User represents an archived Slack user profile.
// Identity is the Slack user ID. A stored record is only overwritten when the
// incoming Updated counter strictly exceeds the stored one, so a stale cached
// copy can never clobber newer persisted data.
type User struct {
	// ID is the Slack user ID.
	ID string

	// TeamID is the Slack workspace the user belongs to.
	TeamID string

	// Name is the user's handle.
	Name string

	// RealName is the user's full name.
	RealName string

	// DisplayName is the profile display name, may differ from Name.
	DisplayName string

	// Email from the user profile, empty if not visible to the bot.
	Email string

	// Deleted marks a deactivated account.
	Deleted bool

	// IsBot marks bot users.
	IsBot bool

	// IsAdmin marks workspace admins.
	IsAdmin bool

	// IsOwner marks workspace owners.
	IsOwner bool

	// Updated is Slack's monotonic profile-update counter (unix seconds).
	Updated int64

	// Raw is the user payload as returned by Slack.
	Raw json.RawMessage
}

// BestName returns the most presentable name available for the user.
func (u *User) BestName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.RealName != "" {
		return u.RealName
	}
	return u.Name
}
