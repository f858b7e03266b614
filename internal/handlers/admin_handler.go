package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to build dashboard")
		return
	}
	responses.Success(c, http.StatusOK, d, "Dashboard retrieved successfully")
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := h.adminService.Users(c.Request.Context(), services.UserQuery{
		Role:   models.Role(c.Query("role")),
		Search: c.Query("search"),
		Page:   pageOf(c),
	})
	if err != nil {
		fail(c, err, "Failed to retrieve users")
		return
	}
	responses.Success(c, http.StatusOK, page, "Users retrieved successfully")
}

// CreateUser handles POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.AdminUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	p, err := h.adminService.CreateUser(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create user")
		return
	}
	responses.Success(c, http.StatusCreated, gin.H{"user": p, "user_type": p.Role()}, "User created successfully")
}

// GetUser handles GET /api/v1/admin/users/:role/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role := models.Role(c.Param("role"))
	p, err := h.adminService.User(c.Request.Context(), role, id)
	if err != nil {
		fail(c, err, "Failed to retrieve user")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"user": p, "user_type": role}, "User retrieved successfully")
}

// UpdateUser handles PATCH /api/v1/admin/users/:role/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req services.AdminUserPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	role := models.Role(c.Param("role"))
	p, err := h.adminService.UpdateUser(c.Request.Context(), role, id, req)
	if err != nil {
		fail(c, err, "Failed to update user")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"user": p, "user_type": role}, "User updated successfully")
}

// DeleteUser handles DELETE /api/v1/admin/users/:role/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(c.Request.Context(), models.Role(c.Param("role")), id); err != nil {
		fail(c, err, "Failed to delete user")
		return
	}
	responses.Success(c, http.StatusOK, nil, "User deleted successfully")
}
