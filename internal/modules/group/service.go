// README: Group service: creation and membership management.
package group

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripmate/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("group not found")
	ErrForbidden  = errors.New("not a group member")
)

type Store interface {
	Create(ctx context.Context, g *Group, members []Member) error
	Get(ctx context.Context, id types.ID) (*Group, error)
	AddMember(ctx context.Context, m Member) error
	IsMember(ctx context.Context, groupID, userID types.ID) (bool, error)
	ListMembers(ctx context.Context, groupID types.ID) ([]Member, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create opens a group with the creator plus the given members.
func (s *Service) Create(ctx context.Context, name string, creatorID types.ID, memberIDs []types.ID) (*Group, error) {
	if name == "" || creatorID == "" {
		return nil, fmt.Errorf("%w: name and creator are required", ErrBadRequest)
	}
	now := s.now().UTC()
	g := &Group{
		ID:        types.NewID(),
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: now,
	}
	seen := map[types.ID]bool{creatorID: true}
	members := []Member{{GroupID: g.ID, UserID: creatorID, JoinedAt: now}}
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, Member{GroupID: g.ID, UserID: id, JoinedAt: now})
	}
	if err := s.store.Create(ctx, g, members); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Group, error) {
	return s.store.Get(ctx, id)
}

// Join adds a user to an existing group. Joining twice is a no-op at the
// store level.
func (s *Service) Join(ctx context.Context, groupID, userID types.ID) error {
	if _, err := s.store.Get(ctx, groupID); err != nil {
		return err
	}
	return s.store.AddMember(ctx, Member{GroupID: groupID, UserID: userID, JoinedAt: s.now().UTC()})
}

// RequireMember returns ErrForbidden unless userID belongs to the group.
func (s *Service) RequireMember(ctx context.Context, groupID, userID types.ID) error {
	ok, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// MemberIDs lists the user ids of all group members in join order.
func (s *Service) MemberIDs(ctx context.Context, groupID types.ID) ([]types.ID, error) {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]types.ID, len(members))
	for i, m := range members {
		out[i] = m.UserID
	}
	return out, nil
}
