package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"eventscape/internal/domain"
)

// StatsSubscriber opens LISTEN connections for change notifications. Every
// subscription dials its own connection outside the sql.DB pool because a
// pooled connection can be handed to another query at any time.
type StatsSubscriber struct {
	dsn string
}

func NewStatsSubscriber(dsn string) *StatsSubscriber {
	return &StatsSubscriber{dsn: dsn}
}

var _ domain.ChangeSubscriber = (*StatsSubscriber)(nil)

func (s *StatsSubscriber) Subscribe(ctx context.Context, channel string) (domain.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := make(chan *pq.Notification, 32)
	lc, err := pq.NewListenerConn(s.dsn, raw)
	if err != nil {
		return nil, fmt.Errorf("dial listener: %w", err)
	}
	if _, err := lc.Listen(channel); err != nil {
		lc.Close()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	return newSubscription(lc, raw), nil
}

// listenerConn is the part of *pq.ListenerConn a subscription drives.
type listenerConn interface {
	Close() error
	Err() error
}

type subscription struct {
	conn listenerConn
	out  chan string
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newSubscription(conn listenerConn, raw <-chan *pq.Notification) *subscription {
	s := &subscription{
		conn: conn,
		out:  make(chan string, cap(raw)),
		done: make(chan struct{}),
	}
	go s.pump(raw)
	return s
}

// pump forwards payloads until the driver closes raw, which it does when the
// connection is lost or closed.
func (s *subscription) pump(raw <-chan *pq.Notification) {
	defer close(s.out)
	for n := range raw {
		if n == nil {
			continue
		}
		select {
		case s.out <- n.Extra:
		case <-s.done:
			return
		}
	}
}

func (s *subscription) Notifications() <-chan string {
	return s.out
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.conn.Err()
}

func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	return s.conn.Close()
}
