package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smuct-dev/studentbase-backend/internal/middleware"
	"github.com/smuct-dev/studentbase-backend/internal/model"
	"github.com/smuct-dev/studentbase-backend/internal/repository"
	"github.com/smuct-dev/studentbase-backend/internal/response"
	"github.com/smuct-dev/studentbase-backend/internal/service"
	"github.com/smuct-dev/studentbase-backend/internal/validator"
)

// AccountHandler handles the student record CRUD surface.
type AccountHandler struct {
	accountService *service.AccountService
	mediaService   *service.MediaService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService, mediaService *service.MediaService) *AccountHandler {
	return &AccountHandler{accountService: accountService, mediaService: mediaService}
}

// List godoc
// GET /api/v1/students?name=&department=&page=&per_page=
func (h *AccountHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	accounts, pagination, err := h.accountService.List(
		c.Request.Context(), c.Query("name"), c.Query("department"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": accounts}, pagination)
}

// Get godoc
// GET /api/v1/students/:id
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accountService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": account})
}

// Create godoc
// POST /api/v1/students
// Admin create with explicit role and status.
func (h *AccountHandler) Create(c *gin.Context) {
	var req model.CreateAccountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateID) || errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": account})
}

// Update godoc
// PUT /api/v1/students/:id
func (h *AccountHandler) Update(c *gin.Context) {
	var req model.UpdateAccountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account, err := h.accountService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrDuplicateEmail):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": account})
}

// UpdateStatus godoc
// PATCH /api/v1/students/:id/status
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accountService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

// UpdateRole godoc
// PATCH /api/v1/students/:id/role
func (h *AccountHandler) UpdateRole(c *gin.Context) {
	var req model.UpdateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accountService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id"), "role": req.Role})
}

// Delete godoc
// DELETE /api/v1/students/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accountService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// BulkDelete godoc
// POST /api/v1/students/bulk-delete
func (h *AccountHandler) BulkDelete(c *gin.Context) {
	var req model.BulkDeleteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	deleted, err := h.accountService.DeleteMany(c.Request.Context(), req.IDs)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted_count": deleted})
}

// UploadAttachment godoc
// POST /api/v1/students/:id/attachment
// Accepts a multipart "file" and persists its stored path on the record.
// Only the record's owner or an admin may attach.
func (h *AccountHandler) UploadAttachment(c *gin.Context) {
	id := c.Param("id")

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if claims.AccountID != id && !claims.IsAdmin {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.mediaService.SaveUpload(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if err := h.accountService.SetAttachment(c.Request.Context(), id, path); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "attachment_path": path})
}
