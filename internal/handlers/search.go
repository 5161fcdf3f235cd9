package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mandoni/retail-ordering/internal/response"
	"github.com/mandoni/retail-ordering/internal/service/search"
	"github.com/mandoni/retail-ordering/internal/util"
)

type SearchHandler struct {
	Search *search.Service
}

func (h *SearchHandler) SearchProducts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return response.Error(c, http.StatusBadRequest, "query parameter q is required")
	}
	if h.Search == nil || h.Search.ES == nil {
		return response.Error(c, http.StatusServiceUnavailable, "search is not available")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, products, err := h.Search.Search(c.Request().Context(), q, from, limit)
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "search failed")
	}

	return response.OK(c, http.StatusOK, "", echo.Map{
		"total":    total,
		"products": products,
	})
}
