package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopzone/ecommerce-api/internal/logging"
	"github.com/shopzone/ecommerce-api/internal/respond"
	"github.com/shopzone/ecommerce-api/internal/search"
)

// SearchHandler serves full-text product search from Elasticsearch.
type SearchHandler struct {
	Index *search.Index
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.query")

	q := c.QueryParam("q")
	if q == "" {
		return respond.Error(c, http.StatusBadRequest, "query parameter q is required")
	}
	from := parseIntDefault(c.QueryParam("from"), 0)
	size := parseIntDefault(c.QueryParam("size"), 10)

	total, products, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			return respond.Error(c, http.StatusServiceUnavailable, "Search is unavailable")
		}
		l.Error("search_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while searching")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"products": products,
	})
}
