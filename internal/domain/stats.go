package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// metricUnavailable is the wire form of a metric that could not be computed.
const metricUnavailable = "-"

// Metric is a count that may be unavailable because computing it failed.
// It encodes to JSON as a number, or as "-" when unavailable.
type Metric struct {
	value     int
	available bool
}

// Available returns a metric holding n.
func Available(n int) Metric { return Metric{value: n, available: true} }

// Unavailable returns a metric that could not be computed.
func Unavailable() Metric { return Metric{} }

// Value returns the count and whether it is available.
func (m Metric) Value() (int, bool) { return m.value, m.available }

func (m Metric) String() string {
	if !m.available {
		return metricUnavailable
	}
	return fmt.Sprint(m.value)
}

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.available {
		return json.Marshal(metricUnavailable)
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metric) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`"`+metricUnavailable+`"`)) {
		*m = Unavailable()
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("metric must be a number or %q: %w", metricUnavailable, err)
	}
	*m = Available(n)
	return nil
}

// DashboardStats are the per-user counts shown on the dashboard.
// swagger:model DashboardStats
type DashboardStats struct {
	Upcoming      Metric `json:"upcoming" swaggertype:"string"`
	Attended      Metric `json:"attended" swaggertype:"string"`
	Notifications Metric `json:"notifications" swaggertype:"string"`
}

// EventBucket splits events by start time relative to an evaluation instant.
type EventBucket int

const (
	// BucketUpcoming holds events starting at or after the instant.
	BucketUpcoming EventBucket = iota
	// BucketPast holds events starting strictly before the instant.
	BucketPast
)

func (b EventBucket) String() string {
	if b == BucketPast {
		return "past"
	}
	return "upcoming"
}

// StatsRepository reads the rows the dashboard counts are derived from.
type StatsRepository interface {
	HostedEventIDs(ctx context.Context, userID string, bucket EventBucket, at time.Time) ([]string, error)
	GoingEventIDs(ctx context.Context, userID string, bucket EventBucket, at time.Time) ([]string, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
}

// StatsService computes dashboard counts.
type StatsService interface {
	GetDashboardStats(ctx context.Context, userID string) DashboardStats
}

// StatsChangedEvent is the signal broadcast to real-time clients when
// dashboard-relevant rows change.
const StatsChangedEvent = "statsChanged"

// Broadcaster delivers a named signal to every connected real-time client.
type Broadcaster interface {
	Broadcast(event string)
}

// Subscription is one live change-notification connection.
type Subscription interface {
	// Notifications yields one value per change notification; it is closed when
	// the underlying connection fails or the subscription is closed.
	Notifications() <-chan string
	// Err returns the error that ended the subscription, if any.
	Err() error
	Close() error
}

// ChangeSubscriber opens change-notification subscriptions on a named channel.
// Each subscription holds its own dedicated connection.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}
