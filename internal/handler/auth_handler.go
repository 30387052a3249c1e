package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smuct-dev/studentbase-backend/internal/middleware"
	"github.com/smuct-dev/studentbase-backend/internal/model"
	"github.com/smuct-dev/studentbase-backend/internal/repository"
	"github.com/smuct-dev/studentbase-backend/internal/response"
	"github.com/smuct-dev/studentbase-backend/internal/service"
	"github.com/smuct-dev/studentbase-backend/internal/validator"
)

// AuthHandler handles registration, login, profile, admin delete, and
// admin promotion.
type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account and returns a token plus a credential-free projection.
// Duplicate id or email is reported as a conflict straight from the unique
// constraint; there is no separate existence probe before the write.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateID) || errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateToken(account)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, model.AuthResponse{Token: token, Account: *account})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns a JWT. Unknown email and wrong
// password produce the identical rejection.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account, err := h.accountService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(account.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(account)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.AuthResponse{Token: token, Account: *account})
}

// Profile godoc
// GET /api/v1/auth/profile
// Returns the account of the verified identity. 404 when the account was
// deleted after the token was issued.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"account": account})
}

// Delete godoc
// DELETE /api/v1/auth/:id
// Admin-gated physical deletion of an account.
func (h *AuthHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// Promote godoc
// POST /api/v1/auth/:id/promote
// Admin-gated grant of the admin privilege flag. Registration never sets the
// flag, so this (or the bootstrap CLI) is the only way to mint an admin.
func (h *AuthHandler) Promote(c *gin.Context) {
	id := c.Param("id")

	if err := h.accountService.Promote(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"promoted": id})
}
