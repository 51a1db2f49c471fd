package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopzone/ecommerce-api/internal/models"
)

func createCategory(t *testing.T, env *testEnv, tok, name string) models.Category {
	t.Helper()
	rec := env.doJSON(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": name}, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var category models.Category
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &category))
	require.NotZero(t, category.ID)
	return category
}

func TestCategoryListEmptyIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	rec := env.do(http.MethodGet, "/api/categories", "", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "No categories found", decodeEnvelope(t, rec).Message)
}

func TestCategoryCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	books := createCategory(t, env, tok, "Books")
	require.Equal(t, "Books", books.Name)
	createCategory(t, env, tok, "Games")

	rec := env.do(http.MethodGet, "/api/categories", "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []models.Category
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &categories))
	require.Len(t, categories, 2)
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	createCategory(t, env, tok, "Books")

	rec := env.doJSON(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "Books"}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.False(t, decodeEnvelope(t, rec).Success)
}

func TestCategoryCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	rec := env.doJSON(t, http.MethodPost, "/api/categories", map[string]interface{}{}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/categories",
		map[string]interface{}{"name": strings.Repeat("x", 256)}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCategoryGet(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	books := createCategory(t, env, tok, "Books")

	rec := env.do(http.MethodGet, "/api/categories/1", "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var category models.Category
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &category))
	require.Equal(t, books.Name, category.Name)

	rec = env.do(http.MethodGet, "/api/categories/99", "", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryUpdate(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	createCategory(t, env, tok, "Books")
	createCategory(t, env, tok, "Games")

	// Renaming onto itself is allowed, onto a sibling is not.
	rec := env.doJSON(t, http.MethodPut, "/api/categories/1",
		map[string]interface{}{"name": "Books", "is_active": true}, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/api/categories/1",
		map[string]interface{}{"name": "Games"}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/api/categories/1",
		map[string]interface{}{"name": "Novels"}, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/categories/1", "", nil, tok)
	var category models.Category
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &category))
	require.Equal(t, "Novels", category.Name)

	rec = env.doJSON(t, http.MethodPut, "/api/categories/99",
		map[string]interface{}{"name": "Ghost"}, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryDelete(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	createCategory(t, env, tok, "Books")

	rec := env.do(http.MethodDelete, "/api/categories/1", "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Category deleted successfully", decodeEnvelope(t, rec).Message)

	rec = env.do(http.MethodGet, "/api/categories/1", "", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/categories/1", "", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryDeleteDetachesProducts(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	books := createCategory(t, env, tok, "Books")
	product := createProduct(t, env, tok, map[string]string{
		"name":        "Go in Action",
		"description": "a book",
		"price":       "10",
		"quantity":    "1",
		"category_id": fmt.Sprint(books.ID),
	})
	require.NotNil(t, product.CategoryID)

	rec := env.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", books.ID), "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	// The product survives without a category.
	rec = env.do(http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &fetched))
	require.Nil(t, fetched.CategoryID)
}

func TestCategoryRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/categories", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "Books"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
