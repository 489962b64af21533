package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/henhouse-foods/storefront/internal/kafka"
	"github.com/henhouse-foods/storefront/internal/kv"
	"github.com/henhouse-foods/storefront/internal/notify"
	"github.com/henhouse-foods/storefront/internal/remote"
)

// Deduper remembers which degraded-order events were already replayed.
type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

// RedisDedup keys by event id with a TTL, same scheme the storefront uses
// for its other dedup keys.
type RedisDedup struct {
	Client  *redis.Client
	Service string
}

func (d *RedisDedup) Seen(ctx context.Context, id string) (bool, error) {
	return kv.Exists(ctx, d.Client, fmt.Sprintf(kv.KeyDedup, d.Service, id))
}

func (d *RedisDedup) Mark(ctx context.Context, id string) error {
	return d.Client.Set(ctx, fmt.Sprintf(kv.KeyDedup, d.Service, id), "1", kv.TTLDedup).Err()
}

// Service replays degraded orders against the order service. A degraded
// order is one the storefront synthesized locally when order creation
// failed mid-checkout; the customer already saw a confirmation, so the only
// job left is getting the backend to agree.
type Service struct {
	Orders remote.OrderService
	Dedup  Deduper
	Sink   notify.Sink
}

// HandleOrderDegraded is mounted as the consumer handler for the degraded
// orders topic. Returning an error leaves the message uncommitted so the
// replay is retried.
func (s *Service) HandleOrderDegraded(ctx context.Context, m kafkago.Message) error {
	var env notify.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != notify.EventOrderDegraded {
		return nil // ignore
	}

	seen, err := s.Dedup.Seen(ctx, env.EventID)
	if err != nil {
		log.Printf("reconcile: dedup check %s: %v", env.EventID, err)
	}
	if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[notify.OrderDegradedPayload](env.Payload)
	if err != nil {
		return err
	}

	// the local id rides as external_ref so the order service can dedup
	// a replay that actually landed the first time
	payload := p.Payload
	payload.ExternalRef = p.LocalID

	created, err := s.Orders.Create(ctx, payload)
	if err != nil {
		return fmt.Errorf("replay order %s: %w", p.LocalID, err)
	}

	if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
		log.Printf("reconcile: dedup mark %s: %v", env.EventID, err)
	}

	log.Printf("reconcile: %s replayed as %s", p.LocalID, created.ID)
	s.Sink.Publish(notify.EventOrderReconciled, created.ID, notify.OrderReconciledPayload{
		LocalID: p.LocalID,
		OrderID: created.ID,
	})
	return nil
}
