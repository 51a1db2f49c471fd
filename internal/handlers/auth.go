package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopzone/ecommerce-api/internal/events"
	"github.com/shopzone/ecommerce-api/internal/hash"
	"github.com/shopzone/ecommerce-api/internal/logging"
	"github.com/shopzone/ecommerce-api/internal/middleware"
	"github.com/shopzone/ecommerce-api/internal/models"
	"github.com/shopzone/ecommerce-api/internal/repo"
	"github.com/shopzone/ecommerce-api/internal/respond"
	"github.com/shopzone/ecommerce-api/internal/token"
)

type AuthHandler struct {
	Users    *repo.UserRepo
	Tokens   *token.Service
	Producer *events.Producer
}

type signupRequest struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=50"`
}

type signinRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=50"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, err.Error())
	}

	taken, err := h.Users.EmailTaken(ctx, req.Email)
	if err != nil {
		l.Error("signup_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the user")
	}
	if taken {
		return respond.Error(c, http.StatusBadRequest, "email has already been taken")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the user")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return respond.Error(c, http.StatusBadRequest, "email has already been taken")
		}
		l.Error("signup_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while creating the user")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	l.Info("signup_success", "user_id", user.ID)
	return respond.Success(c, http.StatusOK, user, "User created successfully")
}

func (h *AuthHandler) Signin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respond.Error(c, http.StatusBadRequest, err.Error())
	}

	user, err := h.Users.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusBadRequest, "Login credentials are invalid.")
		}
		l.Error("signin_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while signing in")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return respond.Error(c, http.StatusBadRequest, "Login credentials are invalid.")
	}

	accessToken, err := h.Tokens.Issue(user)
	if err != nil {
		l.Error("signin_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "Could not create a token.")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	l.Info("signin_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   accessToken,
	})
}

func (h *AuthHandler) Signout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signout")

	raw, _ := c.Get(middleware.ContextToken).(string)
	if raw == "" {
		return respond.Error(c, http.StatusBadRequest, "token is required")
	}

	if err := h.Tokens.Invalidate(ctx, raw); err != nil {
		if errors.Is(err, token.ErrInvalidToken) || errors.Is(err, token.ErrTokenRevoked) {
			return respond.Error(c, http.StatusUnauthorized, "Invalid token")
		}
		l.Error("signout_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "Sorry, the user cannot be logged out")
	}

	l.Info("signout_success")
	return respond.Success(c, http.StatusOK, nil, "User has been logged out")
}

func (h *AuthHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	userID, _ := c.Get(middleware.ContextUserID).(uint)
	user, err := h.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return respond.Error(c, http.StatusNotFound, "User not found")
		}
		l.Error("profile_failed", "status", 500, "error", err)
		return respond.Error(c, http.StatusInternalServerError, "An error occurred while loading the profile")
	}

	return respond.Success(c, http.StatusOK, echo.Map{"user": user}, "Success")
}
