package notify

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/henhouse-foods/storefront/internal/kafka"
)

// Sink is fire-and-forget feedback: correctness never depends on a publish
// landing. Payload must be JSON-serializable.
type Sink interface {
	Publish(eventType, correlationID string, payload any)
}

// Kafka routes each event type to its topic producer.
type Kafka struct {
	Service    string
	Confirmed  *kafkax.Producer
	Degraded   *kafkax.Producer
	Reconciled *kafkax.Producer
	Payment    *kafkax.Producer
}

func (k *Kafka) Publish(eventType, correlationID string, payload any) {
	p := k.producerFor(eventType)
	if p == nil {
		log.Printf("notify: no producer for event %s", eventType)
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notify: marshal %s payload: %v", eventType, err)
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: correlationID,
		Payload:       raw,
	}
	p.Publish(PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (k *Kafka) producerFor(eventType string) *kafkax.Producer {
	switch eventType {
	case EventOrderConfirmed:
		return k.Confirmed
	case EventOrderDegraded:
		return k.Degraded
	case EventOrderReconciled:
		return k.Reconciled
	case EventPaymentLinkIssued:
		return k.Payment
	default:
		return nil
	}
}

// Nop discards every event; used in tests and standalone runs.
type Nop struct{}

func (Nop) Publish(string, string, any) {}
