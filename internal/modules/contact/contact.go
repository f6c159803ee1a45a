// README: Emergency contact records and CRUD service.
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripmate/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("contact not found")
	ErrForbidden  = errors.New("not the contact owner")
)

type Contact struct {
	ID        types.ID
	OwnerID   types.ID
	Name      string
	Phone     string
	CreatedAt time.Time
}

type Store interface {
	Create(ctx context.Context, c *Contact) error
	Get(ctx context.Context, id types.ID) (*Contact, error)
	ListByOwner(ctx context.Context, ownerID types.ID) ([]Contact, error)
	Delete(ctx context.Context, id types.ID) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ownerID types.ID, name, phone string) (*Contact, error) {
	phone = normalizePhone(phone)
	if ownerID == "" || name == "" {
		return nil, fmt.Errorf("%w: owner and name are required", ErrBadRequest)
	}
	if !validPhone(phone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrBadRequest)
	}
	c := &Contact{
		ID:        types.NewID(),
		OwnerID:   ownerID,
		Name:      name,
		Phone:     phone,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID types.ID) ([]Contact, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, id, ownerID types.ID) error {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != ownerID {
		return ErrForbidden
	}
	return s.store.Delete(ctx, id)
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// validPhone accepts E.164-ish numbers: optional +, then 7-15 digits.
func validPhone(phone string) bool {
	if strings.HasPrefix(phone, "+") {
		phone = phone[1:]
	}
	if len(phone) < 7 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
