package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"eventscape/internal/domain"
)

// BridgeState is the connection state of a StatsBridge.
type BridgeState int32

const (
	BridgeDisconnected BridgeState = iota
	BridgeConnecting
	BridgeListening
	BridgeErrored
)

func (s BridgeState) String() string {
	switch s {
	case BridgeConnecting:
		return "connecting"
	case BridgeListening:
		return "listening"
	case BridgeErrored:
		return "errored"
	}
	return "disconnected"
}

// StatsBridgeConfig bounds how the bridge connects and reconnects.
type StatsBridgeConfig struct {
	Channel string
	// ConnectRetries and ConnectDelay bound the startup connection: a fixed
	// delay between at most ConnectRetries attempts.
	ConnectRetries uint
	ConnectDelay   time.Duration
	// ReconnectMaxTries bounds reconnection after a live connection is lost.
	// The delay starts at ConnectDelay and grows up to ReconnectMaxInterval.
	ReconnectMaxTries    uint
	ReconnectMaxInterval time.Duration
}

// StatsBridge turns change notifications from the database into
// StatsChangedEvent broadcasts. It holds a single subscription at a time.
type StatsBridge struct {
	subscriber  domain.ChangeSubscriber
	broadcaster domain.Broadcaster
	cfg         StatsBridgeConfig
	logger      *slog.Logger

	state atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStatsBridge(subscriber domain.ChangeSubscriber, broadcaster domain.Broadcaster, cfg StatsBridgeConfig, logger *slog.Logger) *StatsBridge {
	return &StatsBridge{
		subscriber:  subscriber,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger.With("component", "stats_bridge", "channel", cfg.Channel),
	}
}

// State returns the current connection state.
func (b *StatsBridge) State() BridgeState {
	return BridgeState(b.state.Load())
}

func (b *StatsBridge) setState(s BridgeState) {
	if prev := BridgeState(b.state.Swap(int32(s))); prev != s {
		b.logger.Info("stats bridge state changed", "from", prev.String(), "to", s.String())
	}
}

// Start connects in the background and returns immediately. Calling Start on
// a running bridge does nothing.
func (b *StatsBridge) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.run(ctx, b.done)
}

// Stop closes the subscription and waits for the bridge to settle in
// BridgeDisconnected. The bridge may be started again afterwards.
func (b *StatsBridge) Stop() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (b *StatsBridge) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer b.setState(BridgeDisconnected)

	sub, err := b.connect(ctx, backoff.NewConstantBackOff(b.cfg.ConnectDelay), b.cfg.ConnectRetries)
	if err != nil {
		if ctx.Err() == nil {
			b.logger.Error("stats bridge disabled: could not connect", "attempts", b.cfg.ConnectRetries, "error", err)
		}
		return
	}

	for {
		err := b.listen(ctx, sub)
		sub.Close()
		if ctx.Err() != nil {
			return
		}
		b.setState(BridgeErrored)
		b.logger.Warn("stats subscription lost", "error", err)

		reconnect := backoff.NewExponentialBackOff()
		reconnect.InitialInterval = b.cfg.ConnectDelay
		reconnect.MaxInterval = b.cfg.ReconnectMaxInterval
		sub, err = b.connect(ctx, reconnect, b.cfg.ReconnectMaxTries)
		if err != nil {
			if ctx.Err() == nil {
				b.logger.Error("stats bridge disabled: reconnect attempts exhausted", "attempts", b.cfg.ReconnectMaxTries, "error", err)
			}
			return
		}
	}
}

func (b *StatsBridge) connect(ctx context.Context, policy backoff.BackOff, maxTries uint) (domain.Subscription, error) {
	b.setState(BridgeConnecting)
	attempt := 0
	sub, err := backoff.Retry(ctx, func() (domain.Subscription, error) {
		attempt++
		return b.subscriber.Subscribe(ctx, b.cfg.Channel)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(maxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			b.logger.Warn("stats subscribe failed", "attempt", attempt, "retry_in", next, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	b.setState(BridgeListening)
	return sub, nil
}

// listen broadcasts one StatsChangedEvent per notification until the
// subscription ends or ctx is cancelled.
func (b *StatsBridge) listen(ctx context.Context, sub domain.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-sub.Notifications():
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}
				return errors.New("subscription closed")
			}
			b.logger.Debug("stats change received", "table", payload)
			b.broadcaster.Broadcast(domain.StatsChangedEvent)
		}
	}
}
