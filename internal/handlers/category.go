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
)

type CategoryHandler struct {
	Categories *repo.CategoryRepo
	Producer   *events.Producer
}

type categoryRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=255"`
	IsActive *bool  `json:"is_active" form:"is_active"`
}

// List keeps the inherited quirk: an empty category table is a 404, not a
// 200 with an empty array.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	categories, err := h.Categories.List(ctx)
	if err != nil {
		l.Error("category_list_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while retrieving categories")
	}
	if len(categories) == 0 {
		return respond.Error(c, http.StatusNotFound, "No categories found")
	}
	return respond.Success(c, http.StatusOK, categories, "Categories retrieved successfully")
}

func (h *CategoryHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Error(c, http.StatusUnprocessableEntity, err.Error())
	}

	taken, err := h.Categories.NameTaken(ctx, req.Name, 0)
	if err != nil {
		l.Error("category_create_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the category")
	}
	if taken {
		return respond.Error(c, http.StatusUnprocessableEntity, "name has already been taken")
	}

	category := models.Category{Name: req.Name, IsActive: req.IsActive}
	if err := h.Categories.Create(ctx, &category); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return respond.Error(c, http.StatusUnprocessableEntity, "name has already been taken")
		}
		l.Error("category_create_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the category")
	}

	publish(c, h.Producer, "category_events", fmt.Sprint(category.ID), map[string]interface{}{
		"type":        "category_created",
		"category_id": category.ID,
		"name":        category.Name,
	})

	l.Info("category_create_success", "category_id", category.ID)
	return respond.Success(c, http.StatusOK, category, "Category created successfully")
}

func (h *CategoryHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Category not found")
	}
	category, err := h.Categories.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Category not found")
		}
		logging.FromContext(ctx).Error("category_get_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while retrieving the category")
	}
	return respond.Success(c, http.StatusOK, category, "Category details retrieved successfully")
}

func (h *CategoryHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Category not found")
	}
	category, err := h.Categories.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Category not found")
		}
		l.Error("category_update_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the category")
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Error(c, http.StatusUnprocessableEntity, err.Error())
	}

	taken, err := h.Categories.NameTaken(ctx, req.Name, category.ID)
	if err != nil {
		l.Error("category_update_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the category")
	}
	if taken {
		return respond.Error(c, http.StatusUnprocessableEntity, "name has already been taken")
	}

	category.Name = req.Name
	category.IsActive = req.IsActive
	if err := h.Categories.Update(ctx, category); err != nil {
		l.Error("category_update_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while updating the category")
	}

	publish(c, h.Producer, "category_events", fmt.Sprint(category.ID), map[string]interface{}{
		"type":        "category_updated",
		"category_id": category.ID,
		"name":        category.Name,
	})

	l.Info("category_update_success", "category_id", category.ID)
	return respond.Success(c, http.StatusOK, category, "Category updated successfully")
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, ok := parseID(c)
	if !ok {
		return respond.Error(c, http.StatusNotFound, "Category not found")
	}
	if err := h.Categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "Category not found")
		}
		l.Error("category_delete_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "Failed to delete the category")
	}

	publish(c, h.Producer, "category_events", fmt.Sprint(id), map[string]interface{}{
		"type":        "category_deleted",
		"category_id": id,
	})

	l.Info("category_delete_success", "category_id", id)
	return respond.Success(c, http.StatusOK, nil, "Category deleted successfully")
}
