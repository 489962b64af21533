package notify

import (
	"encoding/json"
	"time"

	"github.com/henhouse-foods/storefront/internal/remote"
)

const (
	EventOrderConfirmed    = "OrderConfirmed"
	EventOrderDegraded     = "OrderDegraded"
	EventOrderReconciled   = "OrderReconciled"
	EventPaymentLinkIssued = "PaymentLinkIssued"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderConfirmedPayload struct {
	OrderID       string  `json:"order_id"`
	PaymentMethod string  `json:"payment_method"`
	TotalAmount   float64 `json:"total_amount"`
}

// OrderDegradedPayload carries the full submitted payload so the
// reconciler can replay the order creation without any other state.
type OrderDegradedPayload struct {
	LocalID  string              `json:"local_id"`
	FailedAt time.Time           `json:"failed_at"`
	Payload  remote.OrderPayload `json:"payload"`
}

type OrderReconciledPayload struct {
	LocalID string `json:"local_id"`
	OrderID string `json:"order_id"`
}

type PaymentLinkPayload struct {
	OrderID     string `json:"order_id"`
	PaymentLink string `json:"payment_link"`
}
