package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrSubmitInFlight    = errors.New("checkout submission already in flight")
	ErrIllegalTransition = errors.New("illegal checkout state transition")

	// ErrPaymentInit marks a failed payment-link retrieval. The cart and
	// order stay intact; the caller may retry.
	ErrPaymentInit = errors.New("payment initialization failed")
)
