// Package notify sends operator emails on a bounded worker pool.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (s *SMTPSender) Send(_ context.Context, m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

var (
	ErrQueueFull = errors.New("mail queue full")
	ErrClosed    = errors.New("notifier closed")
)

// Notifier queues mails to a fixed recipient list. Notify never waits on
// the SMTP workers: a full queue rejects the mail instead.
type Notifier struct {
	pool   *ants.Pool
	sender Sender
	to     []string
	log    *slog.Logger

	queue  chan Message
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewNotifier(workers, queueSize int, sender Sender, to []string, l *slog.Logger) (*Notifier, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("notify pool: %w", err)
	}
	if queueSize < 0 {
		queueSize = 0
	}
	n := &Notifier{
		pool:   pool,
		sender: sender,
		to:     to,
		log:    l.With("component", "notify"),
		queue:  make(chan Message, queueSize),
		done:   make(chan struct{}),
	}
	go n.dispatch()
	return n, nil
}

// Notify queues a mail; delivery errors are logged, not returned.
func (n *Notifier) Notify(subject, body string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrClosed
	}
	select {
	case n.queue <- Message{To: n.to, Subject: subject, Body: body}:
		return nil
	default:
		return fmt.Errorf("queue mail: %w", ErrQueueFull)
	}
}

func (n *Notifier) dispatch() {
	defer close(n.done)
	for m := range n.queue {
		m := m
		n.wg.Add(1)
		err := n.pool.Submit(func() {
			defer n.wg.Done()
			n.deliver(m)
		})
		if err != nil {
			n.wg.Done()
			n.log.Warn("mail_dropped", "subject", m.Subject, "error", err)
		}
	}
}

func (n *Notifier) deliver(m Message) {
	if err := n.sender.Send(context.Background(), m); err != nil {
		n.log.Warn("mail_failed", "subject", m.Subject, "error", err)
		return
	}
	n.log.Info("mail_sent", "subject", m.Subject)
}

// Close stops accepting mail, drains the queue and releases the pool.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	<-n.done
	n.wg.Wait()
	n.pool.Release()
}
