package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mandoni/retail-ordering/internal/events"
	"github.com/mandoni/retail-ordering/internal/models"
	"github.com/mandoni/retail-ordering/internal/response"
	"github.com/mandoni/retail-ordering/internal/service/search"
	"github.com/mandoni/retail-ordering/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	Search   *search.Service
}

type productCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}

// productUpdateRequest uses pointer fields so a partial update touches
// only the fields present in the payload.
type productUpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	if err := h.Producer.PublishEvent(c.Request().Context(), "product_events", key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if err := h.Search.IndexProduct(c.Request().Context(), p); err != nil {
		c.Logger().Errorf("es index error: %v", err)
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productCreateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return response.Error(c, http.StatusBadRequest, "name is required")
	}
	if req.Price.IsNegative() || req.Stock < 0 {
		return response.Error(c, http.StatusBadRequest, "price and stock must be non-negative")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	h.index(c, &prod)
	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_created",
		"product_id": prod.ID,
		"name":       prod.Name,
	})

	return response.OK(c, http.StatusCreated, "Product added successfully", prod)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	var products []models.Product
	if err := h.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}
	if len(products) == 0 {
		return response.Error(c, http.StatusNotFound, "No products found")
	}

	return response.OK(c, http.StatusOK, "Products retrieved successfully", echo.Map{
		"products": products,
		"total":    total,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, http.StatusNotFound, "Product not found")
		}
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	return response.OK(c, http.StatusOK, "", prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var req productUpdateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid body")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, http.StatusNotFound, "Product not found")
		}
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return response.Error(c, http.StatusBadRequest, "price must be non-negative")
		}
		prod.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return response.Error(c, http.StatusBadRequest, "stock must be non-negative")
		}
		prod.Stock = *req.Stock
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	h.index(c, &prod)
	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})

	return response.OK(c, http.StatusOK, "Product updated successfully", prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid id")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, http.StatusNotFound, "Product not found")
		}
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.DB.Delete(&prod).Error; err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal server error")
	}

	if err := h.Search.DeleteProduct(c.Request().Context(), prod.ID); err != nil {
		c.Logger().Errorf("es delete error: %v", err)
	}
	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_deleted",
		"product_id": prod.ID,
	})

	return response.OK(c, http.StatusOK, "Product deleted successfully", nil)
}
