package entity

// Channel describes a Slack conversation container for the duration of a run.
// Channels are not persisted; access classification is resolved fresh each run.
type Channel struct {
	// ID is the Slack channel ID (C..., G...).
	ID string

	// Name is the channel's display name.
	Name string

	// IsPrivate marks private channels, which cannot be self-joined.
	IsPrivate bool

	// IsMember reports whether the bot is already a member.
	IsMember bool

	// IsArchived marks archived channels.
	IsArchived bool
}

// ChannelAccess is the closed classification of a join attempt.
// The mapping from raw Slack API errors happens once at the platform adapter
// boundary; nothing downstream matches on error strings.
type ChannelAccess int

const (
	// AccessJoined means the join succeeded and history can be fetched.
	AccessJoined ChannelAccess = iota

	// AccessAlreadyMember means the bot was already in the channel.
	AccessAlreadyMember

	// AccessPrivateManual means the channel is private and requires a
	// manual invite before it can be archived.
	AccessPrivateManual

	// AccessNotFound means the channel does not exist or is archived.
	AccessNotFound

	// AccessDenied covers any other join failure.
	AccessDenied
)

// String returns the access class as a log-friendly label.
func (a ChannelAccess) String() string {
	switch a {
	case AccessJoined:
		return "joined"
	case AccessAlreadyMember:
		return "already_member"
	case AccessPrivateManual:
		return "private_manual_invite"
	case AccessNotFound:
		return "not_found"
	default:
		return "denied"
	}
}

// CanFetch reports whether the classification permits fetching history.
func (a ChannelAccess) CanFetch() bool {
	return a == AccessJoined || a == AccessAlreadyMember
}
