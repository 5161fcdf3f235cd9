package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestPlaceOrder_Success(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	a := seedProduct(t, db, "A", "10.0", 5)
	b := seedProduct(t, db, "B", "20.0", 2)

	order, items, err := svc.PlaceOrder(context.Background(), 1, []OrderItemRequest{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("60.0")),
		"total_amount = %s", order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, uint(1), order.UserID)

	require.Len(t, items, 2)
	assert.True(t, items[0].TotalPrice.Equal(decimal.RequireFromString("20.0")))
	assert.True(t, items[1].TotalPrice.Equal(decimal.RequireFromString("40.0")))

	var gotA, gotB models.Product
	require.NoError(t, db.First(&gotA, a.ID).Error)
	require.NoError(t, db.First(&gotB, b.ID).Error)
	assert.Equal(t, 3, gotA.Stock)
	assert.Equal(t, 0, gotB.Stock)

	var sum decimal.Decimal
	var stored []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&stored).Error)
	for _, it := range stored {
		sum = sum.Add(it.TotalPrice)
	}
	assert.True(t, sum.Equal(order.TotalAmount), "line items must sum to the order total")
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	p := seedProduct(t, db, "scarce", "5.0", 1)

	_, _, err := svc.PlaceOrder(context.Background(), 1, []OrderItemRequest{
		{ProductID: p.ID, Quantity: 2},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "scarce")

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 1, got.Stock)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	good := seedProduct(t, db, "good", "3.0", 10)

	_, _, err := svc.PlaceOrder(context.Background(), 1, []OrderItemRequest{
		{ProductID: good.ID, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "999")

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var got models.Product
	require.NoError(t, db.First(&got, good.ID).Error)
	assert.Equal(t, 10, got.Stock, "no partial stock change on failed order")
}

func TestPlaceOrder_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	p := seedProduct(t, db, "p", "1.0", 10)

	tests := []struct {
		name  string
		items []OrderItemRequest
	}{
		{name: "empty items", items: nil},
		{name: "zero quantity", items: []OrderItemRequest{{ProductID: p.ID, Quantity: 0}}},
		{name: "negative quantity", items: []OrderItemRequest{{ProductID: p.ID, Quantity: -3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.PlaceOrder(context.Background(), 1, tt.items)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPlaceOrder_SameProductTwice(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	p := seedProduct(t, db, "p", "2.5", 4)

	order, items, err := svc.PlaceOrder(context.Background(), 7, []OrderItemRequest{
		{ProductID: p.ID, Quantity: 1},
		{ProductID: p.ID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("10.0")))

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 0, got.Stock)
}
