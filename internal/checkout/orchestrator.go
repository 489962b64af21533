package checkout

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/henhouse-foods/storefront/internal/cart"
	"github.com/henhouse-foods/storefront/internal/notify"
	"github.com/henhouse-foods/storefront/internal/remote"
)

// Order is the confirmation handed to the user. Local marks an order that
// was synthesized here because the order service was unreachable; such an
// order is Unverified until the reconciler replays it.
type Order struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	TotalAmount float64             `json:"total_amount"`
	Local       bool                `json:"local"`
	Unverified  bool                `json:"unverified"`
	Payload     remote.OrderPayload `json:"payload"`
}

// Result is what the confirmation view renders.
type Result struct {
	Order           Order  `json:"order"`
	Degraded        bool   `json:"degraded"`
	PaymentRequired bool   `json:"payment_required"`
	PaymentLink     string `json:"payment_link,omitempty"`
}

// Orchestrator drives one session's checkout:
//
//	Draft -> Validating -> Submitting -> {AwaitingPayment | Confirmed} -> Completed
//
// A failing order service never blocks the flow: the cash path still reaches
// Confirmed with a degraded order, the mobile-money path still reaches the
// payment step. That trade (uninterrupted checkout over strict backend
// consistency) is the point of this type.
type Orchestrator struct {
	mu       sync.Mutex
	state    State
	inFlight bool

	cart        *cart.Store
	orders      remote.OrderService
	payments    remote.PaymentService
	sink        notify.Sink
	deliveryFee float64

	current *Result
}

func NewOrchestrator(c *cart.Store, orders remote.OrderService, payments remote.PaymentService, sink notify.Sink, deliveryFee float64) *Orchestrator {
	return &Orchestrator{
		state:       StateDraft,
		cart:        c,
		orders:      orders,
		payments:    payments,
		sink:        sink,
		deliveryFee: deliveryFee,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the result of the last submission, nil before any.
func (o *Orchestrator) Current() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Submit validates the billing form, builds the order payload from the cart
// snapshot and submits it. Validation failures keep the machine in Draft and
// are returned as FieldErrors. Remote failures never surface: they take the
// degraded branch for the selected payment method.
func (o *Orchestrator) Submit(ctx context.Context, billing BillingDetails, method PaymentMethod) (*Result, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if o.state == StateCompleted {
		o.state = StateDraft // start the next checkout
	}
	if o.state != StateDraft {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: submit from %s", ErrIllegalTransition, o.state)
	}
	o.inFlight = true
	o.state = StateValidating
	o.mu.Unlock()

	done := func(next State, res *Result) {
		o.mu.Lock()
		o.state = next
		o.inFlight = false
		if res != nil {
			o.current = res
		}
		o.mu.Unlock()
	}

	if !method.Valid() {
		done(StateDraft, nil)
		return nil, FieldErrors{"payment_method": "must be cash or mobile_money"}
	}
	if errs := billing.Validate(); errs != nil {
		done(StateDraft, nil)
		return nil, errs
	}

	items := o.cart.Items()
	if len(items) == 0 {
		done(StateDraft, nil)
		return nil, ErrEmptyCart
	}

	o.mu.Lock()
	o.state = StateSubmitting
	o.mu.Unlock()

	payload := o.buildPayload(billing, method, items)

	created, err := o.orders.Create(ctx, payload)
	if err != nil {
		log.Printf("checkout: order create failed, degrading: %v", err)
		return o.degrade(ctx, payload, method, done), nil
	}

	order := Order{
		ID:          created.ID,
		Status:      created.Status,
		TotalAmount: created.TotalAmount,
		Payload:     payload,
	}
	o.sink.Publish(notify.EventOrderConfirmed, order.ID, notify.OrderConfirmedPayload{
		OrderID:       order.ID,
		PaymentMethod: string(method),
		TotalAmount:   order.TotalAmount,
	})

	if method == PaymentMobileMoney {
		// cart survives until the payment actually goes through
		res := &Result{Order: order, PaymentRequired: true}
		done(StateAwaitingPayment, res)
		return res, nil
	}

	o.cart.Clear(ctx)
	res := &Result{Order: order}
	done(StateConfirmed, res)
	return res, nil
}

// degrade synthesizes a local order so the customer still reaches a
// confirmation state. The full payload rides along for reconciliation.
func (o *Orchestrator) degrade(ctx context.Context, payload remote.OrderPayload, method PaymentMethod, done func(State, *Result)) *Result {
	order := Order{
		ID:          "local-" + uuid.NewString(),
		Status:      "pending",
		TotalAmount: payload.TotalAmount,
		Local:       true,
		Unverified:  true,
		Payload:     payload,
	}
	o.sink.Publish(notify.EventOrderDegraded, order.ID, notify.OrderDegradedPayload{
		LocalID:  order.ID,
		FailedAt: time.Now().UTC(),
		Payload:  payload,
	})

	if method == PaymentMobileMoney {
		res := &Result{Order: order, Degraded: true, PaymentRequired: true}
		done(StateAwaitingPayment, res)
		return res
	}

	o.cart.Clear(ctx)
	res := &Result{Order: order, Degraded: true}
	done(StateConfirmed, res)
	return res
}

// Pay runs the mobile-money payment step. On success the cart is cleared and
// the redirect link returned; on failure everything stays intact so the user
// can retry.
func (o *Orchestrator) Pay(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	if o.state != StateAwaitingPayment || o.current == nil {
		o.mu.Unlock()
		return "", fmt.Errorf("%w: pay from %s", ErrIllegalTransition, o.state)
	}
	o.inFlight = true
	order := o.current.Order
	o.mu.Unlock()

	link, err := o.payments.Initialize(ctx, order.ID, string(PaymentMobileMoney), order.TotalAmount)
	if err != nil {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
		log.Printf("checkout: payment init for %s failed: %v", order.ID, err)
		return "", fmt.Errorf("%w: %v", ErrPaymentInit, err)
	}

	o.cart.Clear(ctx)
	o.sink.Publish(notify.EventPaymentLinkIssued, order.ID, notify.PaymentLinkPayload{
		OrderID:     order.ID,
		PaymentLink: link,
	})

	o.mu.Lock()
	o.state = StateCompleted
	o.inFlight = false
	o.current.PaymentLink = link
	o.mu.Unlock()
	return link, nil
}

// ConfirmReceipt is the explicit user action that finalizes a cash checkout.
func (o *Orchestrator) ConfirmReceipt() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !CanTransition(o.state, StateCompleted) || o.state != StateConfirmed {
		return fmt.Errorf("%w: confirm from %s", ErrIllegalTransition, o.state)
	}
	o.state = StateCompleted
	return nil
}

func (o *Orchestrator) buildPayload(b BillingDetails, method PaymentMethod, items []cart.LineItem) remote.OrderPayload {
	out := make([]remote.OrderItem, 0, len(items))
	var itemsTotal float64
	for _, it := range items {
		out = append(out, remote.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
		itemsTotal += it.Price * float64(it.Quantity)
	}
	return remote.OrderPayload{
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		CompanyName:     b.CompanyName,
		Email:           b.Email,
		PhoneNumber:     b.PhoneNumber,
		DeliveryAddress: b.DeliveryAddress,
		Country:         b.Country,
		State:           b.State,
		Zipcode:         b.Zipcode,
		DeliveryFee:     o.deliveryFee,
		PaymentMethod:   string(method),
		Note:            b.Note,
		Items:           out,
		TotalAmount:     round2(itemsTotal + o.deliveryFee),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
