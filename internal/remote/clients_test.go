package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderClient_Create(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		var in OrderPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "cash", in.PaymentMethod)
		assert.Len(t, in.Items, 1)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreatedOrder{ID: "ord-1", Status: "pending", TotalAmount: in.TotalAmount})
	}))
	defer srv.Close()

	sut := NewOrderClient(srv.URL)
	out, err := sut.Create(context.Background(), OrderPayload{
		FirstName:     "Ama",
		PaymentMethod: "cash",
		TotalAmount:   13.50,
		Items:         []OrderItem{{ProductID: "A", Name: "Whole Chicken", Price: 5, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", out.ID)
	assert.Equal(t, 13.50, out.TotalAmount)
}

func TestOrderClient_Create_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sut := NewOrderClient(srv.URL)
	_, err := sut.Create(context.Background(), OrderPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOrderClient_Create_ConnectionRefusedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	sut := NewOrderClient(srv.URL)
	_, err := sut.Create(context.Background(), OrderPayload{})
	require.Error(t, err)
}

func TestPaymentClient_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/initialize", r.URL.Path)

		var in struct {
			OrderID       string  `json:"order_id"`
			PaymentMethod string  `json:"payment_method"`
			Amount        float64 `json:"amount"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ord-1", in.OrderID)
		assert.Equal(t, "mobile_money", in.PaymentMethod)
		assert.Equal(t, 13.50, in.Amount)

		_ = json.NewEncoder(w).Encode(map[string]string{"payment_link": "https://pay.example/abc"})
	}))
	defer srv.Close()

	sut := NewPaymentClient(srv.URL)
	link, err := sut.Initialize(context.Background(), "ord-1", "mobile_money", 13.50)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", link)
}

func TestPaymentClient_Initialize_EmptyLinkIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	sut := NewPaymentClient(srv.URL)
	_, err := sut.Initialize(context.Background(), "ord-1", "mobile_money", 1)
	require.Error(t, err)
}
