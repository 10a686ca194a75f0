// Package notify delivers planner notifications. Delivery is fire-and-forget:
// a failed send is logged and never fails the operation that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Notification types.
const (
	EventInstantiated = "event.instantiated"
	TaskCompleted     = "task.completed"
)

// Message is the payload sent to recipients.
type Message struct {
	Type       string            `json:"type"`
	Recipients []string          `json:"recipients"`
	EventID    string            `json:"event_id"`
	TaskID     string            `json:"task_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	SentAt     time.Time         `json:"sent_at"`
}

// Notifier sends messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) {}

// Log writes each message to a logger.
type Log struct {
	Logger *logrus.Logger
}

func (l Log) Notify(_ context.Context, msg Message) {
	l.Logger.WithFields(logrus.Fields{
		"type":       msg.Type,
		"event_id":   msg.EventID,
		"task_id":    msg.TaskID,
		"recipients": msg.Recipients,
	}).Info("notification")
}

// Redis publishes each message as JSON on a channel.
type Redis struct {
	client  redis.UniversalClient
	channel string
	logger  *logrus.Logger
	timeout time.Duration
}

// NewRedis returns a notifier publishing on channel.
func NewRedis(client redis.UniversalClient, channel string, logger *logrus.Logger) *Redis {
	return &Redis{client: client, channel: channel, logger: logger, timeout: 2 * time.Second}
}

func (r *Redis) Notify(ctx context.Context, msg Message) {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.WithError(err).WithField("type", msg.Type).Warn("encode notification")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.WithError(err).WithField("type", msg.Type).Warn("publish notification")
	}
}

// Dial connects to the Redis server at url (a redis:// URL or host:port)
// and checks it with a ping.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.MaxRetries = 3
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
