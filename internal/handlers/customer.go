package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/events"
	"github.com/mandoni/retail-ordering/internal/middleware/auth"
	"github.com/mandoni/retail-ordering/internal/models"
	"github.com/mandoni/retail-ordering/internal/response"
	"github.com/mandoni/retail-ordering/internal/service"
)

type CustomerHandler struct {
	DB       *gorm.DB
	Orders   *service.OrderService
	Producer *events.Producer
}

func (h *CustomerHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), "order_events", key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *CustomerHandler) ListProducts(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("id ASC").Find(&products).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}
	if len(products) == 0 {
		return response.Error(c, http.StatusNotFound, "No products found")
	}
	return response.OK(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *CustomerHandler) MakeOrder(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return response.Error(c, http.StatusUnauthorized, "enter valid token")
	}

	var req struct {
		Items []service.OrderItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid body")
	}

	order, items, err := h.Orders.PlaceOrder(c.Request().Context(), user.ID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return response.Error(c, http.StatusNotFound, detail(err))
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInsufficientStock):
			return response.Error(c, http.StatusBadRequest, detail(err))
		default:
			return response.Error(c, http.StatusInternalServerError, "internal server error")
		}
	}

	h.publish(c, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  user.ID,
		"items":    items,
	})

	return response.OK(c, http.StatusCreated, "Order created successfully", echo.Map{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
}

func (h *CustomerHandler) GetCustomerOrders(c echo.Context) error {
	customerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", customerID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}
	if len(orders) == 0 {
		return response.Error(c, http.StatusNotFound, "No orders found for this customer")
	}

	return response.OK(c, http.StatusOK, "Customer orders retrieved successfully", orders)
}

func (h *CustomerHandler) GetOrderStatus(c echo.Context) error {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, http.StatusNotFound, "Order not found")
		}
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	return response.OK(c, http.StatusOK, "Order status retrieved successfully", echo.Map{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// detail returns the readable part of a wrapped sentinel error,
// e.g. "not found: product with id 7 not found" -> the suffix.
func detail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{service.ErrValidation, service.ErrNotFound, service.ErrInsufficientStock} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
