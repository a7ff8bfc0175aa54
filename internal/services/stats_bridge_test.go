package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventscape/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscription struct {
	ch   chan string
	once sync.Once

	mu  sync.Mutex
	err error
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{ch: make(chan string, 8)}
}

func (s *fakeSubscription) Notifications() <-chan string { return s.ch }

func (s *fakeSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeSubscription) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}

// drop simulates the server closing the connection.
func (s *fakeSubscription) drop(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.Close()
}

// fakeSubscriber fails the attempts listed in failOn and succeeds otherwise.
type fakeSubscriber struct {
	mu       sync.Mutex
	attempts int
	failOn   func(attempt int) bool
	subs     []*fakeSubscription
	channels []string
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, channel string) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	f.channels = append(f.channels, channel)
	if f.failOn != nil && f.failOn(f.attempts) {
		return nil, errors.New("connection refused")
	}
	sub := newFakeSubscription()
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeSubscriber) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeSubscriber) latest() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

func (f *fakeSubscriber) subCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type countingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *countingBroadcaster) Broadcast(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *countingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *countingBroadcaster) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func testBridgeConfig() StatsBridgeConfig {
	return StatsBridgeConfig{
		Channel:              "stats_channel",
		ConnectRetries:       5,
		ConnectDelay:         time.Millisecond,
		ReconnectMaxTries:    3,
		ReconnectMaxInterval: 5 * time.Millisecond,
	}
}

const waitFor = 2 * time.Second

func TestStatsBridge_RetriesThenBroadcasts(t *testing.T) {
	sub := &fakeSubscriber{failOn: func(n int) bool { return n <= 3 }}
	bc := &countingBroadcaster{}
	bridge := NewStatsBridge(sub, bc, testBridgeConfig(), discardLogger())
	assert.Equal(t, BridgeDisconnected, bridge.State())

	bridge.Start(context.Background())
	defer bridge.Stop()

	require.Eventually(t, func() bool { return bridge.State() == BridgeListening }, waitFor, time.Millisecond)
	assert.Equal(t, 4, sub.attemptCount())
	assert.Equal(t, "stats_channel", sub.channels[0])

	live := sub.latest()
	live.ch <- "rsvps"
	live.ch <- "events"
	require.Eventually(t, func() bool { return bc.count() == 2 }, waitFor, time.Millisecond)
	assert.Equal(t, []string{domain.StatsChangedEvent, domain.StatsChangedEvent}, bc.snapshot())
}

func TestStatsBridge_StartupExhaustionDisablesBridge(t *testing.T) {
	sub := &fakeSubscriber{failOn: func(int) bool { return true }}
	bc := &countingBroadcaster{}
	cfg := testBridgeConfig()
	bridge := NewStatsBridge(sub, bc, cfg, discardLogger())

	bridge.Start(context.Background())
	require.Eventually(t, func() bool {
		return sub.attemptCount() == int(cfg.ConnectRetries) && bridge.State() == BridgeDisconnected
	}, waitFor, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int(cfg.ConnectRetries), sub.attemptCount())
	assert.Zero(t, bc.count())
	bridge.Stop()
}

func TestStatsBridge_ReconnectsAfterConnectionLoss(t *testing.T) {
	sub := &fakeSubscriber{failOn: func(n int) bool { return n == 2 }}
	bc := &countingBroadcaster{}
	bridge := NewStatsBridge(sub, bc, testBridgeConfig(), discardLogger())

	bridge.Start(context.Background())
	defer bridge.Stop()
	require.Eventually(t, func() bool { return bridge.State() == BridgeListening }, waitFor, time.Millisecond)

	first := sub.latest()
	first.drop(errors.New("server closed the connection unexpectedly"))

	require.Eventually(t, func() bool {
		return sub.subCount() == 2 && bridge.State() == BridgeListening
	}, waitFor, time.Millisecond)
	assert.Equal(t, 3, sub.attemptCount())

	sub.latest().ch <- "notifications"
	require.Eventually(t, func() bool { return bc.count() == 1 }, waitFor, time.Millisecond)
}

func TestStatsBridge_ReconnectExhaustionDisablesBridge(t *testing.T) {
	sub := &fakeSubscriber{failOn: func(n int) bool { return n > 1 }}
	cfg := testBridgeConfig()
	bridge := NewStatsBridge(sub, &countingBroadcaster{}, cfg, discardLogger())

	bridge.Start(context.Background())
	defer bridge.Stop()
	require.Eventually(t, func() bool { return bridge.State() == BridgeListening }, waitFor, time.Millisecond)

	sub.latest().drop(errors.New("terminating connection due to administrator command"))
	require.Eventually(t, func() bool {
		return sub.attemptCount() == 1+int(cfg.ReconnectMaxTries) && bridge.State() == BridgeDisconnected
	}, waitFor, time.Millisecond)
}

func TestStatsBridge_StopClosesSubscription(t *testing.T) {
	sub := &fakeSubscriber{}
	bridge := NewStatsBridge(sub, &countingBroadcaster{}, testBridgeConfig(), discardLogger())

	bridge.Start(context.Background())
	bridge.Start(context.Background())
	require.Eventually(t, func() bool { return bridge.State() == BridgeListening }, waitFor, time.Millisecond)

	bridge.Stop()
	assert.Equal(t, BridgeDisconnected, bridge.State())
	assert.Equal(t, 1, sub.attemptCount())
	_, open := <-sub.latest().ch
	assert.False(t, open)

	bridge.Stop()
}

func TestBridgeState_String(t *testing.T) {
	assert.Equal(t, "disconnected", BridgeDisconnected.String())
	assert.Equal(t, "connecting", BridgeConnecting.String())
	assert.Equal(t, "listening", BridgeListening.String())
	assert.Equal(t, "errored", BridgeErrored.String())
}
