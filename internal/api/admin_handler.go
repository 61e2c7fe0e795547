package api

import (
	"errors"
	"net/http"
	"strconv"

	"fridman/health-hub/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves platform oversight: the approval queue, account
// status changes and the dashboard.
type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetPendingProfessionals godoc
// @Summary List professionals awaiting approval
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /admin/professionals/pending [get]
func (h *AdminHandler) GetPendingProfessionals(c *gin.Context) {
	pros, err := h.adminService.PendingProfessionals(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve pending professionals")
		return
	}

	resp := make([]UserResponse, len(pros))
	for i := range pros {
		resp[i] = MapUserToResponse(&pros[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfessionals godoc
// @Summary List all professionals
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /admin/professionals [get]
func (h *AdminHandler) GetProfessionals(c *gin.Context) {
	pros, err := h.adminService.Professionals(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve professionals")
		return
	}

	resp := make([]UserResponse, len(pros))
	for i := range pros {
		resp[i] = MapUserToResponse(&pros[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary Activate a pending professional
// @Description The professional passes the approval gate on their next request.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Professional ID"
// @Success 204 "Approved"
// @Failure 404 {object} gin.H "Professional not found"
// @Router /admin/professionals/{id}/approve [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.Approve(c.Request.Context(), userID); err != nil {
		h.statusError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Deactivate godoc
// @Summary Deactivate a professional account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Professional ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} gin.H "Professional not found"
// @Router /admin/professionals/{id}/deactivate [post]
func (h *AdminHandler) Deactivate(c *gin.Context) {
	userID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.Deactivate(c.Request.Context(), userID); err != nil {
		h.statusError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCounts godoc
// @Summary Dashboard headline numbers
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.PlatformCounts
// @Router /admin/counts [get]
func (h *AdminHandler) GetCounts(c *gin.Context) {
	counts, err := h.adminService.Counts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute counts")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetActivity godoc
// @Summary Most recent workouts across the platform
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 10, cap 50)"
// @Success 200 {array} domain.WorkoutLog
// @Router /admin/activity [get]
func (h *AdminHandler) GetActivity(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = v
	}

	logs, err := h.adminService.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve activity")
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *AdminHandler) statusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNotAProfessional):
		abortWithError(c, http.StatusNotFound, "Professional not found")
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to update account status")
	}
}
