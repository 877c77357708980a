package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message represents a single archived Slack message.
// Identity is the composite key (ChannelID, TS); the Slack-assigned timestamp
// is immutable for the lifetime of a message, so re-upserting the same key
// replaces field values (capturing edits) without duplicating rows.
type Message struct {
	// ChannelID is the Slack channel the message belongs to.
	ChannelID string

	// ChannelName is the channel's human-readable name at archive time.
	ChannelName string

	// UserID is the Slack ID of the author.
	UserID string

	// Username is a denormalized snapshot of the author's name at archive time.
	Username string

	// Text is the message body.
	Text string

	// TS is the Slack message timestamp ("1714000000.123456").
	// Together with ChannelID it forms the message identity.
	TS string

	// ThreadTS is the parent message's timestamp when this message is a
	// thread reply. Empty for top-level messages. Slack sets ThreadTS equal
	// to TS on thread parents.
	ThreadTS string

	// EditedTS is the timestamp of the last edit, empty if never edited.
	EditedTS string

	// ReplyCount is the number of thread replies Slack reports for this
	// message. A non-zero count on a top-level message signals a thread.
	ReplyCount int

	// Raw is the message payload as returned by Slack, retained for
	// forward compatibility.
	Raw json.RawMessage
}

// Time returns the message timestamp as wall-clock time.
// Returns the zero time if TS is malformed.
func (m *Message) Time() time.Time {
	t, err := ParseTS(m.TS)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsThreadParent reports whether this message heads a thread with replies.
func (m *Message) IsThreadParent() bool {
	return m.ReplyCount > 0 && (m.ThreadTS == "" || m.ThreadTS == m.TS)
}

// IsEdited reports whether Slack has recorded an edit for this message.
func (m *Message) IsEdited() bool {
	return m.EditedTS != ""
}

// ParseTS converts a Slack timestamp string to time.Time.
// Slack timestamps are seconds since epoch with a 6-digit fractional part.
func ParseTS(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slack timestamp %q: %w", ts, err)
	}

	var micros int64
	if fracPart != "" {
		// Pad/truncate to microsecond precision.
		for len(fracPart) < 6 {
			fracPart += "0"
		}
		micros, err = strconv.ParseInt(fracPart[:6], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid slack timestamp %q: %w", ts, err)
		}
	}

	return time.Unix(sec, micros*1000).UTC(), nil
}

// FormatTS converts wall-clock time to a Slack timestamp string.
func FormatTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
