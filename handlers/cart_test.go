package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"shawarma-sheesh-api/handlers"
	"shawarma-sheesh-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartResponse struct {
	Cart  handlers.CartView `json:"cart"`
	Error string            `json:"error"`
}

func TestCart_AddPricesOnServer(t *testing.T) {
	app := newTestApp(t)
	cat := app.seed(t)
	_, token := app.user(t, models.RoleUser, "0790000000")

	w := app.do(t, http.MethodPost, "/api/cart/items", token, obj{
		"product_id":       cat.shawarma.ID,
		"quantity":         2,
		"selected_protein": "chicken",
		"selected_type":    "sandwich",
		"additions":        []uint{cat.garlic.ID, cat.cheese.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cart := decode[cartResponse](t, w).Cart
	require.Len(t, cart.Items, 1)
	line := cart.Items[0].Pricing
	assert.InDelta(t, 10, line.BasePrice, 1e-9)
	assert.InDelta(t, 8, line.DiscountedBase, 1e-9)
	assert.InDelta(t, 5, line.AdditionsTotal, 1e-9)
	assert.InDelta(t, 13, line.UnitPrice, 1e-9)
	assert.InDelta(t, 26, line.LineTotal, 1e-9)
	assert.Equal(t, 2, cart.Count)
	assert.InDelta(t, 26, cart.Subtotal, 1e-9)
}

func TestCart_MergesIdenticalLines(t *testing.T) {
	app := newTestApp(t)
	cat := app.seed(t)
	_, token := app.user(t, models.RoleUser, "0790000000")

	item := obj{
		"product_id":       cat.shawarma.ID,
		"quantity":         1,
		"selected_protein": "meat",
		"selected_type":    "meal",
		"additions":        []uint{cat.cheese.ID, cat.garlic.ID},
	}
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/cart/items", token, item).Code)

	// same additions in another order
	item["additions"] = []uint{cat.garlic.ID, cat.cheese.ID}
	w := app.do(t, http.MethodPost, "/api/cart/items", token, item)
	require.Equal(t, http.StatusCreated, w.Code)
	cart := decode[cartResponse](t, w).Cart
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	item["is_spicy"] = true
	w = app.do(t, http.MethodPost, "/api/cart/items", token, item)
	require.Equal(t, http.StatusCreated, w.Code)
	cart = decode[cartResponse](t, w).Cart
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Count)
}

func TestCart_MergedQuantityIsBounded(t *testing.T) {
	app := newTestApp(t)
	cat := app.seed(t)
	_, token := app.user(t, models.RoleUser, "0790000000")

	item := obj{"product_id": cat.fries.ID, "quantity": 90}
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/cart/items", token, item).Code)

	w := app.do(t, http.MethodPost, "/api/cart/items", token, item)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	item["quantity"] = 9
	w = app.do(t, http.MethodPost, "/api/cart/items", token, item)
	require.Equal(t, http.StatusCreated, w.Code)
	cart := decode[cartResponse](t, w).Cart
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 99, cart.Items[0].Quantity)

	// the merged line can still be ordered as is
	w = app.do(t, http.MethodPost, "/api/orders", token, obj{
		"delivery_type":  "pickup",
		"payment_method": "cliq",
		"items":          []obj{{"product_id": cat.fries.ID, "quantity": cart.Items[0].Quantity}},
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCart_RejectsBadInput(t *testing.T) {
	app := newTestApp(t)
	cat := app.seed(t)
	_, token := app.user(t, models.RoleUser, "0790000000")

	tests := []struct {
		name string
		body obj
		code int
	}{
		{"missing protein", obj{"product_id": cat.shawarma.ID, "quantity": 1, "selected_type": "meal"}, http.StatusBadRequest},
		{"unknown type", obj{"product_id": cat.shawarma.ID, "quantity": 1, "selected_protein": "meat", "selected_type": "plate"}, http.StatusBadRequest},
		{"out of stock", obj{"product_id": cat.soldOut.ID, "quantity": 1}, http.StatusBadRequest},
		{"zero quantity", obj{"product_id": cat.fries.ID, "quantity": 0}, http.StatusBadRequest},
		{"unknown addition", obj{"product_id": cat.fries.ID, "quantity": 1, "additions": []uint{999}}, http.StatusBadRequest},
		{"unknown product", obj{"product_id": 999, "quantity": 1}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/cart/items", token, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	w := app.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cartResponse](t, w).Cart.Items)
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	app := newTestApp(t)
	cat := app.seed(t)
	_, token := app.user(t, models.RoleUser, "0790000000")
	_, other := app.user(t, models.RoleUser, "0790000001")

	w := app.do(t, http.MethodPost, "/api/cart/items", token, obj{"product_id": cat.fries.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	fries := decode[cartResponse](t, w).Cart.Items[0].ID
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/cart/items", token, obj{
		"product_id": cat.shawarma.ID, "quantity": 1, "selected_protein": "chicken", "selected_type": "meal",
	}).Code)

	path := fmt.Sprintf("/api/cart/items/%d", fries)
	w = app.do(t, http.MethodPut, path, token, obj{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[cartResponse](t, w).Cart
	assert.Equal(t, 5, cart.Count)
	assert.InDelta(t, 7+9.6, cart.Subtotal, 1e-9)

	// lines of another customer's cart are invisible
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, path, other, nil).Code)

	w = app.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[cartResponse](t, w).Cart.Items, 1)

	w = app.do(t, http.MethodDelete, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cartResponse](t, w).Cart.Items)
}

func TestCart_StaffCannotUseCart(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user(t, models.RoleEmployee, "cook")
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/cart", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/cart", "", nil).Code)
}
