package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/storefront/domain/model"
)

func TestGetProductsBarePayload(t *testing.T) {
	// The legacy backend answers getProducts with a bare array.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getProducts", r.URL.Query().Get("action"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "PROD-OSORNO", "nombre": "Volcán Osorno", "precio": 1500, "stock": 50},
			{"id": "PROD-LAVA", "nombre": "Lava de Chocolate", "precio": 1800, "stock": 30}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	products, err := client.GetProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, model.ProductID("PROD-OSORNO"), products[0].ID)
	assert.Equal(t, int64(1500), products[0].PriceCents)
}

func TestGetProductsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "data": [{"id": "PROD-OSORNO", "nombre": "Volcán Osorno", "precio": 1500, "stock": 50}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	products, err := client.GetProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
}

func TestErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "no such order"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetOrders(context.Background(), "some-token")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "no such order")
}

func TestNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetProducts(context.Background())

	assert.ErrorIs(t, err, ErrRemote)
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "createOrder", r.URL.Query().Get("action"))

		var payload struct {
			Token string `json:"token"`
			Items []struct {
				ID       string `json:"id"`
				Quantity int    `json:"quantity"`
			} `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "user-token", payload.Token)
		require.Len(t, payload.Items, 1)
		assert.Equal(t, 2, payload.Items[0].Quantity)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "data": {
			"id": "ORD-1",
			"items": [{"id": "PROD-OSORNO", "nombre": "Volcán Osorno", "quantity": 2, "precio": 1500}],
			"total": 3000,
			"status": "Pendiente",
			"cliente": {"nombre": "Ana", "email": "a@b.cl"}
		}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	lines := []model.CartLine{
		{Product: model.Product{ID: "PROD-OSORNO", Name: "Volcán Osorno", PriceCents: 1500, Stock: 50}, Quantity: 2},
	}
	order, err := client.CreateOrder(context.Background(), "user-token", lines, 3000)

	require.NoError(t, err)
	assert.Equal(t, model.OrderID("ORD-1"), order.ID)
	assert.Equal(t, int64(3000), order.TotalCents)
	assert.Equal(t, model.StatusPending, order.Status)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "a@b.cl", order.Customer.Email)
}

func TestGetAllOrdersUnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "data": [{"id": "ORD-1", "status": "Perdido"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetAllOrders(context.Background(), "admin-token")

	assert.ErrorIs(t, err, ErrRemote)
}
