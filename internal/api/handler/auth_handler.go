package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/api/metrics"
	"github.com/kata/sweetshop/internal/api/middleware"
	"github.com/kata/sweetshop/internal/api/response"
	"github.com/kata/sweetshop/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func observeAuth(action string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  response.Envelope{data=authResponse}
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	observeAuth("register", err)
	if err != nil {
		return err
	}

	return response.Created(c, "User registered successfully", toAuthResponse(res))
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope{data=authResponse}
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	observeAuth("login", err)
	if err != nil {
		return err
	}

	return response.OK(c, "Login successful", toAuthResponse(res))
}

// Me returns the authenticated user's profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  response.Envelope{data=userResponse}
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return response.OK(c, "", toUserResponse(user))
}

// Logout revokes the token used for this request.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  response.Envelope
// @Failure      401   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(middleware.ContextKeyToken).(string)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return response.OK(c, "Logged out successfully", nil)
}
