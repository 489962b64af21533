package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds every collaborator call; a timeout is handled the
// same way as any other remote failure.
const DefaultTimeout = 15 * time.Second

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderPayload is the order creation request handed to the order service.
// ExternalRef carries the locally generated id when a degraded order is
// re-submitted, so the order service can dedup retries.
type OrderPayload struct {
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	CompanyName     string      `json:"company_name,omitempty"`
	Email           string      `json:"email"`
	PhoneNumber     string      `json:"phone_number"`
	DeliveryAddress string      `json:"delivery_address"`
	Country         string      `json:"country"`
	State           string      `json:"state"`
	Zipcode         string      `json:"zipcode,omitempty"`
	DeliveryFee     float64     `json:"delivery_fee"`
	PaymentMethod   string      `json:"payment_method"`
	Note            string      `json:"note,omitempty"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	ExternalRef     string      `json:"external_ref,omitempty"`
}

type CreatedOrder struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
}

// OrderService is the remote order creation collaborator.
type OrderService interface {
	Create(ctx context.Context, payload OrderPayload) (CreatedOrder, error)
}

type OrderClient struct {
	base    string
	hc      *http.Client
	timeout time.Duration
}

func NewOrderClient(base string) *OrderClient {
	return &OrderClient{
		base:    base,
		hc:      &http.Client{Timeout: DefaultTimeout},
		timeout: DefaultTimeout,
	}
}

func (c *OrderClient) Create(ctx context.Context, payload OrderPayload) (CreatedOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return CreatedOrder{}, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/orders", bytes.NewReader(body))
	if err != nil {
		return CreatedOrder{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return CreatedOrder{}, fmt.Errorf("order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CreatedOrder{}, fmt.Errorf("order service: status %d", resp.StatusCode)
	}

	var out CreatedOrder
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CreatedOrder{}, fmt.Errorf("order service: decode response: %w", err)
	}
	return out, nil
}
