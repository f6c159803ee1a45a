package sos

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/modules/contact"
	"tripmate/internal/notify"
	"tripmate/internal/types"
)

type mockStore struct {
	created   []*Alert
	createErr error
	delivery  map[types.ID][2]int
}

func (m *mockStore) Create(_ context.Context, a *Alert) error {
	m.created = append(m.created, a)
	return m.createErr
}

func (m *mockStore) UpdateDelivery(_ context.Context, id types.ID, success, failure int) error {
	if m.delivery == nil {
		m.delivery = map[types.ID][2]int{}
	}
	m.delivery[id] = [2]int{success, failure}
	return nil
}

type mockContacts struct {
	contacts []contact.Contact
	err      error
}

func (m *mockContacts) ListByOwner(context.Context, types.ID) ([]contact.Contact, error) {
	return m.contacts, m.err
}

type mockNotifier struct {
	report notify.Report
	got    []notify.Recipient
}

func (m *mockNotifier) SendBulk(_ context.Context, recipients []notify.Recipient) notify.Report {
	m.got = recipients
	return m.report
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoContacts() *mockContacts {
	return &mockContacts{contacts: []contact.Contact{
		{ID: "c1", OwnerID: "u1", Name: "Ada", Phone: "+4912345678"},
		{ID: "c2", OwnerID: "u1", Name: "Ben", Phone: "+4987654321"},
	}}
}

func TestTrigger_SendsToAllContacts(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{report: notify.Report{SuccessCount: 2}}
	svc := NewService(store, twoContacts(), notifier, discardLogger())

	alert, report, err := svc.Trigger(context.Background(), "u1", "help", &types.Point{Lat: 52.5, Lng: 13.4})

	require.NoError(t, err)
	assert.Equal(t, 2, report.SuccessCount)
	require.Len(t, notifier.got, 2)
	assert.Equal(t, "+4912345678", notifier.got[0].Phone)
	assert.Contains(t, notifier.got[0].Message, "help")
	assert.Contains(t, notifier.got[0].Message, "52.5", "position is embedded in the text")
	require.Len(t, store.created, 1)
	assert.Equal(t, [2]int{2, 0}, store.delivery[alert.ID])
}

func TestTrigger_AllSendsFailingStillRecordsAlert(t *testing.T) {
	store := &mockStore{}
	notifier := &mockNotifier{report: notify.Report{FailureCount: 2, Results: []notify.RecipientResult{
		{Phone: "+4912345678", Error: "unreachable"},
		{Phone: "+4987654321", Error: "unreachable"},
	}}}
	svc := NewService(store, twoContacts(), notifier, discardLogger())

	alert, report, err := svc.Trigger(context.Background(), "u1", "", nil)

	require.NoError(t, err, "delivery failure must not fail the alert")
	assert.Equal(t, 2, report.FailureCount)
	require.Len(t, store.created, 1)
	assert.Equal(t, 2, alert.FailureCount)
	assert.Equal(t, "SOS - I need help", alert.Message, "default message applied")
}

func TestTrigger_NoContactsConfigured(t *testing.T) {
	svc := NewService(&mockStore{}, &mockContacts{}, &mockNotifier{}, discardLogger())
	_, _, err := svc.Trigger(context.Background(), "u1", "help", nil)
	assert.ErrorIs(t, err, ErrNoContacts)
}

func TestTrigger_StoreFailureAbortsBeforeSending(t *testing.T) {
	store := &mockStore{createErr: errors.New("db down")}
	notifier := &mockNotifier{}
	svc := NewService(store, twoContacts(), notifier, discardLogger())

	_, _, err := svc.Trigger(context.Background(), "u1", "help", nil)

	assert.Error(t, err)
	assert.Nil(t, notifier.got, "no sends before the alert is recorded")
}

func TestTrigger_MissingUser(t *testing.T) {
	svc := NewService(&mockStore{}, twoContacts(), &mockNotifier{}, discardLogger())
	_, _, err := svc.Trigger(context.Background(), "", "help", nil)
	assert.ErrorIs(t, err, ErrBadRequest)
}
