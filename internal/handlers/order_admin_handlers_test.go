package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandoni/retail-ordering/internal/models"
)

func TestListOrders(t *testing.T) {
	db := initTestDB(t)
	h := &OrderAdminHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/admin/orders", nil)
	require.NoError(t, h.ListOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &orders))
	assert.Empty(t, orders)

	require.NoError(t, db.Create(&models.Order{
		UserID:      1,
		TotalAmount: decimal.RequireFromString("42.00"),
		Status:      models.OrderStatusPending,
	}).Error)

	rec2, c2 := doJSONRequest(t, http.MethodGet, "/admin/orders", nil)
	require.NoError(t, h.ListOrders(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec2).Data, &orders))
	require.Len(t, orders, 1)
}

func TestGetOrder(t *testing.T) {
	db := initTestDB(t)
	h := &OrderAdminHandler{DB: db}

	order := models.Order{
		UserID:      1,
		TotalAmount: decimal.RequireFromString("42.00"),
		Status:      models.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID:    order.ID,
		ProductID:  1,
		Quantity:   2,
		TotalPrice: decimal.RequireFromString("42.00"),
	}).Error)

	rec, c := doJSONRequest(t, http.MethodGet, "/admin/get-order/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Order models.Order       `json:"order"`
		Items []models.OrderItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, order.ID, data.Order.ID)
	require.Len(t, data.Items, 1)
	assert.Equal(t, 2, data.Items[0].Quantity)
}

func TestGetOrder_Unknown(t *testing.T) {
	db := initTestDB(t)
	h := &OrderAdminHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/admin/get-order/7", nil)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.GetOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decodeEnvelope(t, rec).Message)
}
