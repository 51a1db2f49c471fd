package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopzone/ecommerce-api/internal/handlers"
	"github.com/shopzone/ecommerce-api/internal/models"
	"github.com/shopzone/ecommerce-api/internal/repo"
	"github.com/shopzone/ecommerce-api/internal/storage"
	"github.com/shopzone/ecommerce-api/internal/token"
	httpserver "github.com/shopzone/ecommerce-api/internal/transport/http"
	"github.com/shopzone/ecommerce-api/internal/validation"
)

type testEnv struct {
	e      *echo.Echo
	db     *gorm.DB
	tokens *token.Service
	images *storage.ImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Foreign keys are enforced like they are on postgres.
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}))

	tokens := &token.Service{
		Secret:     []byte("test-secret"),
		TTL:        time.Hour,
		Revocation: token.NewMemoryRevocationList(),
	}
	images := &storage.ImageStore{Root: t.TempDir()}

	users := &repo.UserRepo{DB: db}
	categories := &repo.CategoryRepo{DB: db}
	products := &repo.ProductRepo{DB: db}

	e := echo.New()
	e.Validator = validation.New()

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &handlers.AuthHandler{Users: users, Tokens: tokens},
		CategoryHandler: &handlers.CategoryHandler{Categories: categories},
		ProductHandler: &handlers.ProductHandler{
			Products:   products,
			Categories: categories,
			Images:     images,
		},
		SearchHandler: &handlers.SearchHandler{},
		Tokens:        tokens,
		UploadDir:     images.Root,
	})

	return &testEnv{e: e, db: db, tokens: tokens, images: images}
}

func (env *testEnv) do(method, target, contentType string, body io.Reader, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, target string, payload interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return env.do(method, target, echo.MIMEApplicationJSON, body, bearer)
}

// signin registers a user and returns a valid bearer token.
func (env *testEnv) signin(t *testing.T) string {
	t.Helper()

	rec := env.doJSON(t, http.MethodPost, "/api/signup", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/signin", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func multipartForm(t *testing.T, fields map[string]string, photoName string, photo []byte) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photoName != "" {
		fw, err := w.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}
