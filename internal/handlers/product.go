package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopzone/ecommerce-api/internal/events"
	"github.com/shopzone/ecommerce-api/internal/logging"
	"github.com/shopzone/ecommerce-api/internal/models"
	"github.com/shopzone/ecommerce-api/internal/repo"
	"github.com/shopzone/ecommerce-api/internal/respond"
	"github.com/shopzone/ecommerce-api/internal/search"
	"github.com/shopzone/ecommerce-api/internal/storage"
)

type ProductHandler struct {
	Products   *repo.ProductRepo
	Categories *repo.CategoryRepo
	Images     *storage.ImageStore
	Producer   *events.Producer
	Index      *search.Index
}

// Price and Quantity are pointers so an omitted field fails required
// validation while an explicit zero passes.
type productForm struct {
	Name        string   `json:"name" form:"name" validate:"required"`
	Description string   `json:"description" form:"description" validate:"required"`
	Price       *float64 `json:"price" form:"price" validate:"required,gte=0"`
	Quantity    *int     `json:"quantity" form:"quantity" validate:"required,gte=0"`
	Shipping    *bool    `json:"shipping" form:"shipping"`
	CategoryID  *uint    `json:"category_id" form:"category_id"`
}

type productSearchRequest struct {
	SortBy  string            `json:"sortBy"`
	Order   string            `json:"order"`
	Limit   int               `json:"limit"`
	Skip    int               `json:"skip"`
	Filters map[string]string `json:"filters"`
}

// categoryExists reports whether a referenced category is present. A nil
// id is fine, products may live without a category.
func (h *ProductHandler) categoryExists(c echo.Context, id *uint) (bool, error) {
	if id == nil {
		return true, nil
	}
	if _, err := h.Categories.ByID(c.Request().Context(), *id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// index mirrors a product write into the search index best-effort.
func (h *ProductHandler) index(c echo.Context, product *models.Product) {
	if err := h.Index.IndexProduct(c.Request().Context(), product); err != nil {
		logging.FromContext(c.Request().Context()).Error("index_failed",
			"product_id", product.ID, "error", err)
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	sortBy := c.QueryParam("sortBy")
	order := c.QueryParam("order")
	limit := parseIntDefault(c.QueryParam("limit"), 0)

	products, err := h.Products.List(ctx, sortBy, order, limit)
	if err != nil {
		l.Error("product_list_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while retrieving products")
	}
	return respond.Success(c, http.StatusOK, products, "Products retrieved successfully")
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req productForm
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Error(c, http.StatusUnprocessableEntity, err.Error())
	}
	if ok, err := h.categoryExists(c, req.CategoryID); err != nil {
		l.Error("product_create_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the product")
	} else if !ok {
		return respond.Error(c, http.StatusUnprocessableEntity, "category_id is invalid")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return respond.Error(c, http.StatusUnprocessableEntity, "photo is required")
	}

	// The photo lands on disk before the row exists. A crash in between
	// orphans the file; the record never points at a missing photo.
	photoPath, err := h.Images.Upload(file, "products")
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrTooLarge) {
			return respond.Error(c, http.StatusUnprocessableEntity, err.Error())
		}
		l.Error("product_create_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the product")
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Photo:       photoPath,
		Shipping:    req.Shipping,
		CategoryID:  req.CategoryID,
	}
	if err := h.Products.Create(ctx, &product); err != nil {
		l.Error("product_create_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the product")
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]interface{}{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	h.index(c, &product)

	l.Info("product_create_success", "product_id", product.ID)
	return respond.Success(c, http.StatusCreated, product, "Product created successfully")
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Product not found")
	}
	product, err := h.Products.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Product not found")
		}
		logging.FromContext(ctx).Error("product_get_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while retrieving the product")
	}
	return respond.Success(c, http.StatusOK, product, "Product details retrieved successfully")
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Product not found")
	}
	product, err := h.Products.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Product not found")
		}
		l.Error("product_update_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the product")
	}

	var req productForm
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Error(c, http.StatusUnprocessableEntity, err.Error())
	}
	if ok, err := h.categoryExists(c, req.CategoryID); err != nil {
		l.Error("product_update_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the product")
	} else if !ok {
		return respond.Error(c, http.StatusUnprocessableEntity, "category_id is invalid")
	}

	oldPhoto := product.Photo
	newPhoto := ""
	if file, ferr := c.FormFile("photo"); ferr == nil {
		newPhoto, err = h.Images.Upload(file, "products")
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrTooLarge) {
				return respond.Error(c, http.StatusUnprocessableEntity, err.Error())
			}
			l.Error("product_update_failed", "status", 500, "error", err)
			return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the product")
		}
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = *req.Price
	product.Quantity = *req.Quantity
	// Optional fields left out of the form keep their stored values.
	if req.Shipping != nil {
		product.Shipping = req.Shipping
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if newPhoto != "" {
		product.Photo = newPhoto
	}

	if err := h.Products.Update(ctx, product); err != nil {
		l.Error("product_update_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the product")
	}

	// The old photo goes only after the row is confirmed written; a failed
	// update must not cost us both files.
	if newPhoto != "" && oldPhoto != newPhoto {
		if err := h.Images.Delete(oldPhoto); err != nil {
			l.Warn("old_photo_delete_failed", "path", oldPhoto, "error", err)
		}
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]interface{}{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	h.index(c, product)

	l.Info("product_update_success", "product_id", product.ID)
	return respond.Success(c, http.StatusOK, product, "Product updated successfully")
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Product not found")
	}
	product, err := h.Products.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Product not found")
		}
		l.Error("product_delete_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while deleting the product")
	}

	if err := h.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Product not found")
		}
		l.Error("product_delete_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while deleting the product")
	}

	// Record first, photo second. A failed file delete orphans the photo,
	// never the other way round.
	if err := h.Images.Delete(product.Photo); err != nil {
		l.Warn("photo_delete_failed", "path", product.Photo, "error", err)
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(id), map[string]interface{}{
		"type":       "product_deleted",
		"product_id": id,
	})
	if err := h.Index.DeleteProduct(ctx, id); err != nil {
		l.Error("index_delete_failed", "product_id", id, "error", err)
	}

	l.Info("product_delete_success", "product_id", id)
	return respond.Success(c, http.StatusOK, nil, "Product deleted successfully")
}

func (h *ProductHandler) Related(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.related")

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Product not found")
	}
	product, err := h.Products.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Product not found")
		}
		l.Error("product_related_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while retrieving related products")
	}

	limit := parseIntDefault(c.QueryParam("limit"), 0)
	related, err := h.Products.Related(ctx, product, limit)
	if err != nil {
		l.Error("product_related_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while retrieving related products")
	}
	return respond.Success(c, http.StatusOK, related, "Related products retrieved successfully")
}

// SearchProducts is the filtered DB search. It answers with a bare
// {size, data} body, the one read path that skips the envelope.
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	var req productSearchRequest
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}

	products, err := h.Products.Search(ctx, repo.SearchQuery{
		Filters: req.Filters,
		SortBy:  req.SortBy,
		Order:   req.Order,
		Limit:   req.Limit,
		Skip:    req.Skip,
	})
	if err != nil {
		l.Error("product_search_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while searching products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"size": len(products),
		"data": products,
	})
}
