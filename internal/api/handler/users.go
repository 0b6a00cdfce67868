package handler

import (
	"net/http"

	"caredesk/backend/internal/faults"
	"caredesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListStaff returns staff members. Admins see every department; managers
// and supervisors see their own.
func (h *Handler) ListStaff(c *gin.Context) {
	user := actor(c)

	var departmentID string
	switch user.Role {
	case models.RoleAdmin:
		departmentID = c.Query("department_id")
	case models.RoleSupervisor, models.RoleManager:
		departmentID = user.DepartmentID
	default:
		h.writeError(c, faults.Forbidden("listing staff requires seniority level 2"))
		return
	}

	staff, err := h.Storage.ListStaff(departmentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// ToggleUserActive flips a staff member's active flag, taking them out of
// (or back into) the assignment pool. Admin only.
func (h *Handler) ToggleUserActive(c *gin.Context) {
	user := actor(c)
	if user.Role != models.RoleAdmin {
		h.writeError(c, faults.Forbidden("managing users requires the admin role"))
		return
	}

	target, err := h.Storage.GetUserByID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	target.Active = !target.Active
	if err := h.Storage.SaveUser(target); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": target})
}
