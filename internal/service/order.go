package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/models"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type OrderItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type OrderService struct {
	DB *gorm.DB
}

// PlaceOrder turns a basket of (product, quantity) pairs into an order
// with its line items, decrementing stock. Validation and writes run in
// one transaction; the decrement is conditional on remaining stock, so
// concurrent orders can never drive stock negative.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, items []OrderItemRequest) (*models.Order, []models.OrderItem, error) {
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
	}

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		lineTotals := make([]decimal.Decimal, len(items))
		names := make([]string, len(items))

		for i, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product with id %d not found", ErrNotFound, it.ProductID)
				}
				return err
			}
			if p.Stock < it.Quantity {
				return fmt.Errorf("%w: not enough stock for product %s", ErrInsufficientStock, p.Name)
			}
			lineTotals[i] = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			names[i] = p.Name
			total = total.Add(lineTotals[i])
		}

		order = models.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderItems = make([]models.OrderItem, 0, len(items))
		for i, it := range items {
			oi := models.OrderItem{
				OrderID:    order.ID,
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
				TotalPrice: lineTotals[i],
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			orderItems = append(orderItems, oi)

			// Re-checked at write time: the guard in the WHERE clause
			// is what actually prevents overselling.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: not enough stock for product %s", ErrInsufficientStock, names[i])
			}
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}
	return &order, orderItems, nil
}
