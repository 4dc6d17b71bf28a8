package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier fans document versions out to listeners.
type Notifier interface {
	Publish(ctx context.Context, snap Snapshot) error
	// Listen returns a channel of snapshots for one document, closed when ctx ends.
	Listen(ctx context.Context, collection, id string) (<-chan Snapshot, error)
}

// Subscription delivers document snapshots until Close is called.
type Subscription struct {
	updates chan Snapshot
	cancel  context.CancelFunc
	once    sync.Once
}

func newSubscription(ctx context.Context) (*Subscription, context.Context) {
	sctx, cancel := context.WithCancel(ctx)
	return &Subscription{updates: make(chan Snapshot, 16), cancel: cancel}, sctx
}

// Updates is closed once the subscription has been torn down.
func (s *Subscription) Updates() <-chan Snapshot { return s.updates }

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

func (s *Subscription) send(ctx context.Context, snap Snapshot) bool {
	select {
	case s.updates <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// Channel is the pub/sub channel carrying versions of one document.
func Channel(collection, id string) string {
	return fmt.Sprintf("docs:%s:%s", collection, id)
}

// RedisNotifier publishes snapshots as JSON on Redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisNotifier(client *redis.Client, log *zap.Logger) *RedisNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisNotifier{client: client, log: log}
}

func (n *RedisNotifier) Publish(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, Channel(snap.Collection, snap.ID), payload).Err()
}

func (n *RedisNotifier) Listen(ctx context.Context, collection, id string) (<-chan Snapshot, error) {
	ps := n.client.Subscribe(ctx, Channel(collection, id))
	// wait for the subscription to be confirmed so no publish after return is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan Snapshot, 16)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var snap Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					n.log.Warn("dropping malformed snapshot", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
