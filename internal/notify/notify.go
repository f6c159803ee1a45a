// Package notify delivers SMS/WhatsApp messages through an external gateway.
package notify

import (
	"context"
	"sync"
)

type Recipient struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type RecipientResult struct {
	Phone string `json:"phone"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Report aggregates a bulk send. Individual failures never fail the batch.
type Report struct {
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Results      []RecipientResult `json:"results"`
}

// Notifier is the external messaging provider.
type Notifier interface {
	SendBulk(ctx context.Context, recipients []Recipient) Report
}

// Sender delivers one message; bulk fan-out and aggregation live in SendBulk
// so gateway implementations stay single-message.
type Sender interface {
	Send(ctx context.Context, r Recipient) error
}

// BulkNotifier fans a batch out concurrently over a single-message Sender
// and aggregates per-recipient results in input order.
type BulkNotifier struct {
	sender Sender
}

func NewBulkNotifier(sender Sender) *BulkNotifier {
	return &BulkNotifier{sender: sender}
}

func (b *BulkNotifier) SendBulk(ctx context.Context, recipients []Recipient) Report {
	results := make([]RecipientResult, len(recipients))

	var wg sync.WaitGroup
	for i, r := range recipients {
		wg.Add(1)
		go func(i int, r Recipient) {
			defer wg.Done()
			res := RecipientResult{Phone: r.Phone, OK: true}
			if err := b.sender.Send(ctx, r); err != nil {
				res.OK = false
				res.Error = err.Error()
			}
			results[i] = res
		}(i, r)
	}
	wg.Wait()

	report := Report{Results: results}
	for _, res := range results {
		if res.OK {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}
	return report
}
