package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PaymentService issues a redirect link for an order awaiting payment.
type PaymentService interface {
	Initialize(ctx context.Context, orderID, method string, amount float64) (string, error)
}

type PaymentClient struct {
	base    string
	hc      *http.Client
	timeout time.Duration
}

func NewPaymentClient(base string) *PaymentClient {
	return &PaymentClient{
		base:    base,
		hc:      &http.Client{Timeout: DefaultTimeout},
		timeout: DefaultTimeout,
	}
}

type initPaymentReq struct {
	OrderID       string  `json:"order_id"`
	PaymentMethod string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
}

type initPaymentResp struct {
	PaymentLink string `json:"payment_link"`
}

func (c *PaymentClient) Initialize(ctx context.Context, orderID, method string, amount float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(initPaymentReq{OrderID: orderID, PaymentMethod: method, Amount: amount})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/payments/initialize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("payment service: status %d", resp.StatusCode)
	}

	var out initPaymentResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("payment service: decode response: %w", err)
	}
	if out.PaymentLink == "" {
		return "", fmt.Errorf("payment service: empty payment link")
	}
	return out.PaymentLink, nil
}
