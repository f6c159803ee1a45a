// README: SOS alerts: record first, then fan out notifications. Delivery
// failure never loses the alert.
package sos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripmate/internal/modules/contact"
	"tripmate/internal/notify"
	"tripmate/internal/observability"
	"tripmate/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNoContacts = errors.New("no emergency contacts configured")
)

type Alert struct {
	ID           types.ID
	UserID       types.ID
	Message      string
	Position     *types.Point
	SuccessCount int
	FailureCount int
	CreatedAt    time.Time
}

type Store interface {
	Create(ctx context.Context, a *Alert) error
	UpdateDelivery(ctx context.Context, id types.ID, success, failure int) error
}

// ContactSource lists the emergency contacts to notify.
type ContactSource interface {
	ListByOwner(ctx context.Context, ownerID types.ID) ([]contact.Contact, error)
}

type Service struct {
	store    Store
	contacts ContactSource
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, contacts ContactSource, notifier notify.Notifier, log *slog.Logger) *Service {
	return &Service{store: store, contacts: contacts, notifier: notifier, log: log, now: time.Now}
}

// Trigger records an SOS alert and dispatches it to every emergency contact
// concurrently. The alert row is written before any send is attempted, and
// is kept even when every send fails.
func (s *Service) Trigger(ctx context.Context, userID types.ID, message string, position *types.Point) (*Alert, notify.Report, error) {
	if userID == "" {
		return nil, notify.Report{}, fmt.Errorf("%w: user is required", ErrBadRequest)
	}
	if message == "" {
		message = "SOS - I need help"
	}

	contacts, err := s.contacts.ListByOwner(ctx, userID)
	if err != nil {
		return nil, notify.Report{}, err
	}
	if len(contacts) == 0 {
		return nil, notify.Report{}, ErrNoContacts
	}

	alert := &Alert{
		ID:        types.NewID(),
		UserID:    userID,
		Message:   message,
		Position:  position,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, alert); err != nil {
		return nil, notify.Report{}, err
	}
	observability.SOSAlertsTotal.Inc()

	text := message
	if position != nil {
		text = fmt.Sprintf("%s (last known position: %.5f,%.5f)", message, position.Lat, position.Lng)
	}
	recipients := make([]notify.Recipient, len(contacts))
	for i, c := range contacts {
		recipients[i] = notify.Recipient{Phone: c.Phone, Message: text}
	}

	report := s.notifier.SendBulk(ctx, recipients)
	alert.SuccessCount = report.SuccessCount
	alert.FailureCount = report.FailureCount
	if report.FailureCount > 0 {
		observability.SOSSendFailures.Add(float64(report.FailureCount))
		s.log.Warn("sos delivery incomplete",
			"alert_id", string(alert.ID),
			"sent", report.SuccessCount,
			"failed", report.FailureCount,
		)
	}
	if err := s.store.UpdateDelivery(ctx, alert.ID, report.SuccessCount, report.FailureCount); err != nil {
		s.log.Error("sos delivery bookkeeping failed", "alert_id", string(alert.ID), "err", err)
	}
	return alert, report, nil
}
