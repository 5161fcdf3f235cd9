package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/models"
	"github.com/mandoni/retail-ordering/internal/response"
)

type OrderAdminHandler struct {
	DB *gorm.DB
}

func (h *OrderAdminHandler) ListOrders(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Order("created_at DESC").Find(&orders).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}
	return response.OK(c, http.StatusOK, "", orders)
}

func (h *OrderAdminHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, http.StatusNotFound, "Order not found")
		}
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	var items []models.OrderItem
	if err := h.DB.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	return response.OK(c, http.StatusOK, "", echo.Map{
		"order": order,
		"items": items,
	})
}
