package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/usecase/archive"
)

// Client wraps the Slack API client with archive-specific operations.
// Implements the archive.Platform interface. Raw Slack error strings are
// classified into entity.ChannelAccess here and nowhere else; rate-limited
// calls are retried before any error surfaces upstream.
type Client struct {
	api   *slack.Client
	retry RetryPolicy
}

// NewClient creates a new Slack client.
func NewClient(botToken string, apiURL ...string) *Client {
	var api *slack.Client
	if len(apiURL) > 0 && apiURL[0] != "" {
		// Use custom API URL (for testing against a mock)
		api = slack.New(botToken, slack.OptionAPIURL(apiURL[0]))
	} else {
		api = slack.New(botToken)
	}

	return &Client{api: api, retry: DefaultRetryPolicy()}
}

// ListChannels returns all non-archived channels visible to the bot,
// following conversations.list pagination to the end.
func (c *Client) ListChannels(ctx context.Context) ([]entity.Channel, error) {
	var channels []entity.Channel
	cursor := ""

	for {
		var page []slack.Channel
		var nextCursor string
		err := c.withRetry(ctx, func() error {
			var err error
			page, nextCursor, err = c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
				Cursor:          cursor,
				ExcludeArchived: true,
				Limit:           200,
				Types:           []string{"public_channel", "private_channel"},
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing conversations: %w", err)
		}

		for _, ch := range page {
			channels = append(channels, entity.Channel{
				ID:         ch.ID,
				Name:       ch.Name,
				IsPrivate:  ch.IsPrivate,
				IsMember:   ch.IsMember,
				IsArchived: ch.IsArchived,
			})
		}

		if nextCursor == "" {
			return channels, nil
		}
		cursor = nextCursor
	}
}

// JoinChannel attempts to join a channel and classifies the outcome.
func (c *Client) JoinChannel(ctx context.Context, channelID string) (entity.ChannelAccess, error) {
	var warning string
	var warnings []string
	err := c.withRetry(ctx, func() error {
		var err error
		_, warning, warnings, err = c.api.JoinConversationContext(ctx, channelID)
		return err
	})
	if err == nil {
		if warning == "already_in_channel" || contains(warnings, "already_in_channel") {
			return entity.AccessAlreadyMember, nil
		}
		return entity.AccessJoined, nil
	}

	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		switch slackErr.Err {
		case "already_in_channel":
			return entity.AccessAlreadyMember, nil
		case "method_not_supported_for_channel_type", "is_private":
			return entity.AccessPrivateManual, nil
		case "channel_not_found", "is_archived":
			return entity.AccessNotFound, nil
		default:
			return entity.AccessDenied, nil
		}
	}

	// Transport-level failure, not an access classification.
	return entity.AccessDenied, fmt.Errorf("joining conversation: %w", err)
}

// FetchHistory retrieves one page of channel history.
func (c *Client) FetchHistory(ctx context.Context, req archive.HistoryRequest) (*archive.Page, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: req.ChannelID,
		Cursor:    req.Cursor,
		Limit:     req.Limit,
	}
	if !req.Oldest.IsZero() {
		params.Oldest = entity.FormatTS(req.Oldest)
	}
	if !req.Latest.IsZero() {
		params.Latest = entity.FormatTS(req.Latest)
	}

	var resp *slack.GetConversationHistoryResponse
	err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.api.GetConversationHistoryContext(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}

	return &archive.Page{
		Messages:   convertMessages(resp.Messages),
		HasMore:    resp.HasMore,
		NextCursor: resp.ResponseMetaData.NextCursor,
	}, nil
}

// FetchReplies retrieves one page of a message thread. Slack includes the
// parent message in the reply stream; the fetcher filters it out.
func (c *Client) FetchReplies(ctx context.Context, req archive.RepliesRequest) (*archive.Page, error) {
	var msgs []slack.Message
	var hasMore bool
	var nextCursor string
	err := c.withRetry(ctx, func() error {
		var err error
		msgs, hasMore, nextCursor, err = c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: req.ChannelID,
			Timestamp: req.ParentTS,
			Cursor:    req.Cursor,
			Limit:     req.Limit,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching thread replies: %w", err)
	}

	return &archive.Page{
		Messages:   convertMessages(msgs),
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}

// FetchUserProfile retrieves a user profile by ID.
func (c *Client) FetchUserProfile(ctx context.Context, userID string) (*entity.User, error) {
	var user *slack.User
	err := c.withRetry(ctx, func() error {
		var err error
		user, err = c.api.GetUserInfoContext(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		raw = nil
	}

	return &entity.User{
		ID:          user.ID,
		TeamID:      user.TeamID,
		Name:        user.Name,
		RealName:    user.RealName,
		DisplayName: user.Profile.DisplayName,
		Email:       user.Profile.Email,
		Deleted:     user.Deleted,
		IsBot:       user.IsBot,
		IsAdmin:     user.IsAdmin,
		IsOwner:     user.IsOwner,
		Updated:     int64(user.Updated),
		Raw:         raw,
	}, nil
}

// convertMessages maps Slack messages to archive entities.
func convertMessages(msgs []slack.Message) []*entity.Message {
	out := make([]*entity.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, convertMessage(&msgs[i]))
	}
	return out
}

func convertMessage(msg *slack.Message) *entity.Message {
	raw, err := json.Marshal(msg)
	if err != nil {
		raw = nil
	}

	editedTS := ""
	if msg.Edited != nil {
		editedTS = msg.Edited.Timestamp
	}

	userID := msg.User
	if userID == "" {
		// Bot messages carry no user ID; keep the bot ID for attribution.
		userID = msg.BotID
	}

	return &entity.Message{
		UserID:     userID,
		Username:   msg.Username,
		Text:       msg.Text,
		TS:         msg.Timestamp,
		ThreadTS:   msg.ThreadTimestamp,
		EditedTS:   editedTS,
		ReplyCount: msg.ReplyCount,
		Raw:        raw,
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
