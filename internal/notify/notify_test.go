package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/models"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	fail bool
}

func (r *recordingSender) Send(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, m)
	return nil
}

func TestNotifierDeliversAll(t *testing.T) {
	t.Parallel()

	s := &recordingSender{}
	n, err := NewNotifier(2, 8, s, []string{"ops@example.com"}, slog.Default())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Notify("subject", "body"))
	}
	n.Close()

	require.Len(t, s.sent, 5)
	assert.Equal(t, []string{"ops@example.com"}, s.sent[0].To)
}

func TestNotifierSwallowsSendErrors(t *testing.T) {
	t.Parallel()

	n, err := NewNotifier(1, 1, &recordingSender{fail: true}, []string{"x@example.com"}, slog.Default())
	require.NoError(t, err)
	require.NoError(t, n.Notify("s", "b"))
	n.Close()
}

type blockingSender struct {
	release chan struct{}
	mu      sync.Mutex
	sent    int
}

func (b *blockingSender) Send(context.Context, Message) error {
	<-b.release
	b.mu.Lock()
	b.sent++
	b.mu.Unlock()
	return nil
}

func TestNotifyDoesNotWaitOnBusyWorkers(t *testing.T) {
	t.Parallel()

	s := &blockingSender{release: make(chan struct{})}
	n, err := NewNotifier(1, 1, s, []string{"ops@example.com"}, slog.Default())
	require.NoError(t, err)

	var accepted, rejected int
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 10; i++ {
			switch err := n.Notify("s", "b"); {
			case err == nil:
				accepted++
			case errors.Is(err, ErrQueueFull):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked while the worker was busy")
	}
	// one sending, one held for submit, one buffered
	assert.LessOrEqual(t, accepted, 3)
	assert.Equal(t, 10, accepted+rejected)

	close(s.release)
	n.Close()
	assert.Equal(t, accepted, s.sent)
	require.ErrorIs(t, n.Notify("s", "b"), ErrClosed)
}

func TestLeadMail(t *testing.T) {
	t.Parallel()

	subject, body := LeadMail(models.Lead{
		Reference: "QTE-1",
		Kind:      models.LeadKindQuote,
		Name:      "Asha",
		Email:     "asha@example.com",
		Quote: models.Quote{Items: []models.QuoteItem{
			{Product: models.QuoteProduct{Name: "Kraft", Category: "Kraft", Type: "reel"}, Quantity: 3, Weight: 120},
		}},
	})
	assert.Equal(t, "New quote request QTE-1 from Asha", subject)
	assert.Contains(t, body, "- Kraft (Kraft, reel): qty 3, weight 120 kg")

	subject, _ = LeadMail(models.Lead{Reference: "ENQ-2", Kind: models.LeadKindEnquiry, Name: "Ravi"})
	assert.Equal(t, "New enquiry ENQ-2 from Ravi", subject)
}

func TestLowStockMail(t *testing.T) {
	t.Parallel()

	subject, body := LowStockMail([]LowStockLine{{Name: "Kraft", Category: "Kraft", Quantity: 3, Status: models.StockLow}}, 50)
	assert.Equal(t, "Low stock: 1 products below 50", subject)
	assert.Contains(t, body, "Kraft [Kraft]: 3 (Low Stock)")
}
