package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
	"github.com/pskiad17/FinancialOrganizer/internal/core/ports"
)

// errInvalidPayload is returned when the body cannot be decoded at all.
var errInvalidPayload = domain.NewValidationError(domain.FieldError{Field: "body", Message: "invalid payload"})

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account with the default role and signs it in.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Country = strings.TrimSpace(req.Country)
	req.Email = strings.TrimSpace(req.Email)
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)

	if err := c.Validate(&req); err != nil {
		return err
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return domain.NewValidationError(domain.FieldError{Field: "dateOfBirth", Message: "dateOfBirth must be a past date in YYYY-MM-DD format"})
	}

	session, err := h.authService.Register(c.Request().Context(), ports.RegisterCommand{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DateOfBirth:     dob,
		Country:         req.Country,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newSessionResponse(session))
}

// Login authenticates an account by email and password.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), ports.LoginQuery{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSessionResponse(session))
}

// Refresh issues a fresh token for the caller of a still-valid token.
//
// @Summary      Refresh the session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	session, err := h.authService.Refresh(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSessionResponse(session))
}

// Me returns the identity carried by the caller's token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{UserID: id.UserID, Username: id.Username, Role: id.Role})
}
