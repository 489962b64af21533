package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henhouse-foods/storefront/internal/cart"
	"github.com/henhouse-foods/storefront/internal/catalog"
	"github.com/henhouse-foods/storefront/internal/checkout"
	"github.com/henhouse-foods/storefront/internal/kv"
	"github.com/henhouse-foods/storefront/internal/notify"
	"github.com/henhouse-foods/storefront/internal/remote"
	"github.com/henhouse-foods/storefront/internal/wishlist"
)

type mockOrderService struct {
	created remote.CreatedOrder
	err     error
}

func (m *mockOrderService) Create(context.Context, remote.OrderPayload) (remote.CreatedOrder, error) {
	if m.err != nil {
		return remote.CreatedOrder{}, m.err
	}
	return m.created, nil
}

type mockPaymentService struct {
	link string
	err  error
}

func (m *mockPaymentService) Initialize(context.Context, string, string, float64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.link, nil
}

func testServer(t *testing.T, orders remote.OrderService, payments remote.PaymentService) *httptest.Server {
	t.Helper()
	resolver := catalog.NewStatic(
		catalog.Product{ID: "A", Name: "Whole Chicken", Price: 5.00, InStock: true},
		catalog.Product{ID: "B", Name: "Chicken Wings", Price: 3.50, InStock: true},
	)
	storage := kv.NewMemory()

	factory := func(ctx context.Context, session string) *Engine {
		c := cart.New(ctx, storage, kv.CartKey(session), resolver)
		w := wishlist.New(ctx, storage, kv.WishlistKey(session), resolver)
		return &Engine{
			Cart:     c,
			Wishlist: w,
			Checkout: checkout.NewOrchestrator(c, orders, payments, notify.Nop{}, 0),
		}
	}

	router := NewRouter()
	NewStorefrontHandler(factory, resolver).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestCartEndpoints(t *testing.T) {
	srv := testServer(t, &mockOrderService{}, &mockPaymentService{})

	resp, body := do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"A","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total_items"])

	resp, body = do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"B"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["total_items"])
	assert.Equal(t, 13.50, body["total_price"])

	// stepper writes go through update, zero removes
	resp, body = do(t, http.MethodPut, srv.URL+"/cart/items/A", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_items"])
	assert.Equal(t, 3.50, body["total_price"])

	resp, body = do(t, http.MethodDelete, srv.URL+"/cart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total_items"])
}

func TestCart_AddUnknownProductIs404(t *testing.T) {
	srv := testServer(t, &mockOrderService{}, &mockPaymentService{})

	resp, body := do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"nope"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "unknown product", body["error"])
}

func TestWishlistEndpoints_IdempotentAdd(t *testing.T) {
	srv := testServer(t, &mockOrderService{}, &mockPaymentService{})

	resp, body := do(t, http.MethodPost, srv.URL+"/wishlist/items", `{"product_id":"A"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, body = do(t, http.MethodPost, srv.URL+"/wishlist/items", `{"product_id":"A"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"], "double add keeps a single entry")

	resp, body = do(t, http.MethodDelete, srv.URL+"/wishlist/items/A", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
}

func TestCheckout_ValidationErrorsAreFieldLevel(t *testing.T) {
	srv := testServer(t, &mockOrderService{}, &mockPaymentService{})

	_, _ = do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"A"}`)

	resp, body := do(t, http.MethodPost, srv.URL+"/checkout", `{"first_name":"Ama","payment_method":"cash"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "last_name")
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "first_name")
}

const validCheckoutBody = `{
	"first_name":"Ama","last_name":"Mensah","email":"ama@example.com",
	"phone_number":"+233200000000","delivery_address":"12 Ring Road",
	"country":"Ghana","state":"Greater Accra","payment_method":"%s"
}`

func TestCheckout_CashDegradedStillConfirms(t *testing.T) {
	srv := testServer(t, &mockOrderService{err: assertableErr("order service down")}, &mockPaymentService{})

	_, _ = do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"A","quantity":2}`)

	resp, body := do(t, http.MethodPost, srv.URL+"/checkout", strings.Replace(validCheckoutBody, "%s", "cash", 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["degraded"])

	order, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, order["unverified"])

	// cart was cleared even though the backend was down
	resp, cartBody := do(t, http.MethodGet, srv.URL+"/cart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), cartBody["total_items"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/checkout/confirm", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckout_MobileMoneyFlow(t *testing.T) {
	orders := &mockOrderService{created: remote.CreatedOrder{ID: "ord-1", Status: "pending", TotalAmount: 10}}
	payments := &mockPaymentService{link: "https://pay.example/abc"}
	srv := testServer(t, orders, payments)

	_, _ = do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"A","quantity":2}`)

	resp, body := do(t, http.MethodPost, srv.URL+"/checkout", strings.Replace(validCheckoutBody, "%s", "mobile_money", 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["payment_required"])

	// cart untouched before payment
	_, cartBody := do(t, http.MethodGet, srv.URL+"/cart", "")
	assert.Equal(t, float64(2), cartBody["total_items"])

	resp, payBody := do(t, http.MethodPost, srv.URL+"/checkout/pay", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://pay.example/abc", payBody["payment_link"])

	// cleared only after the payment service succeeded
	_, cartBody = do(t, http.MethodGet, srv.URL+"/cart", "")
	assert.Equal(t, float64(0), cartBody["total_items"])
}

func TestCheckout_PaymentFailureIsRetryable(t *testing.T) {
	orders := &mockOrderService{created: remote.CreatedOrder{ID: "ord-2", TotalAmount: 10}}
	payments := &mockPaymentService{err: assertableErr("gateway down")}
	srv := testServer(t, orders, payments)

	_, _ = do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":"A"}`)
	resp, _ := do(t, http.MethodPost, srv.URL+"/checkout", strings.Replace(validCheckoutBody, "%s", "mobile_money", 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodPost, srv.URL+"/checkout/pay", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, true, body["retryable"])

	// cart survived the failed attempt
	_, cartBody := do(t, http.MethodGet, srv.URL+"/cart", "")
	assert.Equal(t, float64(1), cartBody["total_items"])
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	srv := testServer(t, &mockOrderService{}, &mockPaymentService{})

	resp, body := do(t, http.MethodPost, srv.URL+"/checkout", strings.Replace(validCheckoutBody, "%s", "cash", 1))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cart is empty", body["error"])
}

func TestSessions_AreIsolated(t *testing.T) {
	srv := testServer(t, &mockOrderService{}, &mockPaymentService{})

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/cart/items", strings.NewReader(`{"product_id":"A"}`))
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the default session sees an empty cart
	_, body := do(t, http.MethodGet, srv.URL+"/cart", "")
	assert.Equal(t, float64(0), body["total_items"])
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
