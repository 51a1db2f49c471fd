package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopzone/ecommerce-api/internal/models"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/signup", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "User created successfully", resp.Message)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "Test User", data["name"])
	require.Equal(t, "test@example.com", data["email"])
	require.NotContains(t, data, "password_hash")
	require.NotContains(t, data, "PasswordHash")
	require.NotContains(t, string(resp.Data), "password")

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "test@example.com").First(&user).Error)
	require.NotEqual(t, "password", user.PasswordHash)
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password",
	}
	rec := env.doJSON(t, http.MethodPost, "/api/signup", payload, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/signup", payload, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"email": "test@example.com", "password": "password"},           // missing name
		{"name": "Test", "password": "password"},                        // missing email
		{"name": "Test", "email": "not-an-email", "password": "secret6"},
		{"name": "Test", "email": "test@example.com", "password": "abc"}, // too short
	}
	for _, payload := range cases {
		rec := env.doJSON(t, http.MethodPost, "/api/signup", payload, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, decodeEnvelope(t, rec).Success)
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	require.Zero(t, count)
}

func TestSignin(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	identity, err := env.tokens.Verify(t.Context(), tok)
	require.NoError(t, err)
	require.NotZero(t, identity.UserID)
}

func TestSigninWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signin(t)

	rec := env.doJSON(t, http.MethodPost, "/api/signin", map[string]string{
		"email":    "test@example.com",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "Login credentials are invalid.", resp.Message)
	require.NotContains(t, rec.Body.String(), "token")
}

func TestSigninUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/api/signin", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Login credentials are invalid.", decodeEnvelope(t, rec).Message)
}

func TestSignout(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	rec := env.do(http.MethodGet, "/api/signout", "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "User has been logged out", decodeEnvelope(t, rec).Message)

	// The token must not authenticate again.
	rec = env.do(http.MethodGet, "/api/profile", "", nil, tok)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/signout", "", nil, tok)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	tok := env.signin(t)

	rec := env.do(http.MethodGet, "/api/profile", "", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	var data struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "test@example.com", data.User.Email)
}

func TestProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/profile", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/profile", "", nil, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
