// README: Poll-based group chat on Redis lists. No push channel: clients
// poll with the last sequence number they have seen.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tripmate/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("not a group member")
)

const (
	chatKeyPrefix = "chat:group:%s"
	// maxMessageLen caps a single chat message.
	maxMessageLen = 2000
	// historyTTL expires idle conversations.
	historyTTL = 30 * 24 * time.Hour
)

type Message struct {
	Seq     int64     `json:"seq"`
	GroupID types.ID  `json:"group_id"`
	UserID  types.ID  `json:"user_id"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

// Membership answers whether a user may read or post in a group.
type Membership interface {
	RequireMember(ctx context.Context, groupID, userID types.ID) error
}

type Service struct {
	redis      *redis.Client
	membership Membership
	now        func() time.Time
}

func NewService(redis *redis.Client, membership Membership) *Service {
	return &Service{redis: redis, membership: membership, now: time.Now}
}

// Post appends a message to the group's conversation and returns it with
// its assigned sequence number.
func (s *Service) Post(ctx context.Context, groupID, userID types.ID, text string) (*Message, error) {
	if text == "" || len(text) > maxMessageLen {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", ErrBadRequest, maxMessageLen)
	}
	if err := s.membership.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	msg := Message{
		GroupID: groupID,
		UserID:  userID,
		Text:    text,
		SentAt:  s.now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	key := chatKey(groupID)
	length, err := s.redis.RPush(ctx, key, body).Result()
	if err != nil {
		return nil, fmt.Errorf("chat: post: %w", err)
	}
	_ = s.redis.Expire(ctx, key, historyTTL).Err()

	msg.Seq = length - 1
	return &msg, nil
}

// ListSince returns every message with a sequence number greater than
// afterSeq, oldest first. Pass -1 for the full history.
func (s *Service) ListSince(ctx context.Context, groupID, userID types.ID, afterSeq int64) ([]Message, error) {
	if err := s.membership.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	start := afterSeq + 1
	raw, err := s.redis.LRange(ctx, chatKey(groupID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("chat: list: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for i, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		msg.Seq = start + int64(i)
		out = append(out, msg)
	}
	return out, nil
}

func chatKey(groupID types.ID) string {
	return fmt.Sprintf(chatKeyPrefix, string(groupID))
}
