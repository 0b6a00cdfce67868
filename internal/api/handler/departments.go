package handler

import (
	"net/http"

	"caredesk/backend/internal/faults"
	"caredesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListDepartments is available to every authenticated user; patients need
// it to file a complaint.
func (h *Handler) ListDepartments(c *gin.Context) {
	departments, err := h.Storage.ListDepartments()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

type departmentRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	EscalationHours int    `json:"escalation_hours"`
}

// CreateDepartment adds a department. Admin only.
func (h *Handler) CreateDepartment(c *gin.Context) {
	user := actor(c)
	if user.Role != models.RoleAdmin {
		h.writeError(c, faults.Forbidden("managing departments requires the admin role"))
		return
	}

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept := &models.Department{
		Name:            req.Name,
		Description:     req.Description,
		EscalationHours: req.EscalationHours,
	}
	if err := h.Storage.SaveDepartment(dept); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"department": dept})
}

// UpdateDepartment changes a department's name, description or escalation
// threshold. Admin only.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	user := actor(c)
	if user.Role != models.RoleAdmin {
		h.writeError(c, faults.Forbidden("managing departments requires the admin role"))
		return
	}

	dept, err := h.Storage.GetDepartmentByID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if dept == nil {
		c.JSON(http.StatusNotFound, h.message("department.not_found"))
		return
	}

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept.Name = req.Name
	dept.Description = req.Description
	if req.EscalationHours > 0 {
		dept.EscalationHours = req.EscalationHours
	}
	if err := h.Storage.SaveDepartment(dept); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"department": dept})
}

// DeleteDepartment removes a department that has no complaints. Admin only.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	user := actor(c)
	if user.Role != models.RoleAdmin {
		h.writeError(c, faults.Forbidden("managing departments requires the admin role"))
		return
	}

	if err := h.Storage.DeleteDepartment(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
