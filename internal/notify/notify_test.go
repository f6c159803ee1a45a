package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeSender) Send(_ context.Context, r Recipient) error {
	f.mu.Lock()
	f.calls = append(f.calls, r.Phone)
	f.mu.Unlock()
	return f.fail[r.Phone]
}

func TestSendBulk_AggregatesPerRecipient(t *testing.T) {
	sender := &fakeSender{fail: map[string]error{"+200": errors.New("unreachable")}}
	n := NewBulkNotifier(sender)

	report := n.SendBulk(context.Background(), []Recipient{
		{Phone: "+100", Message: "hi"},
		{Phone: "+200", Message: "hi"},
		{Phone: "+300", Message: "hi"},
	})

	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	require.Len(t, report.Results, 3)
	// results keep input order regardless of goroutine completion order
	assert.Equal(t, "+100", report.Results[0].Phone)
	assert.True(t, report.Results[0].OK)
	assert.Equal(t, "+200", report.Results[1].Phone)
	assert.False(t, report.Results[1].OK)
	assert.Equal(t, "unreachable", report.Results[1].Error)
	assert.Len(t, sender.calls, 3)
}

func TestSendBulk_EmptyBatch(t *testing.T) {
	n := NewBulkNotifier(&fakeSender{})
	report := n.SendBulk(context.Background(), nil)
	assert.Zero(t, report.SuccessCount)
	assert.Zero(t, report.FailureCount)
	assert.Empty(t, report.Results)
}

func TestSendBulk_AllFailuresStillReturnReport(t *testing.T) {
	sender := &fakeSender{fail: map[string]error{
		"+1": errors.New("nope"),
		"+2": errors.New("nope"),
	}}
	n := NewBulkNotifier(sender)
	report := n.SendBulk(context.Background(), []Recipient{{Phone: "+1"}, {Phone: "+2"}})
	assert.Equal(t, 0, report.SuccessCount)
	assert.Equal(t, 2, report.FailureCount)
}
