package handler

import (
	"net/http"
	"strconv"

	"caredesk/backend/internal/authz"
	"caredesk/backend/internal/config"
	"caredesk/backend/internal/models"
	"caredesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type createComplaintRequest struct {
	DepartmentID string   `json:"department_id" binding:"required"`
	Subject      string   `json:"subject" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Priority     string   `json:"priority"`
	Tags         []string `json:"tags"`
}

// CreateComplaint files a new complaint on behalf of the acting patient.
func (h *Handler) CreateComplaint(c *gin.Context) {
	user := actor(c)

	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Guard.Authorize(user, authz.ActionCreate, &models.Complaint{PatientID: user.ID}); err != nil {
		h.writeError(c, err)
		return
	}

	complaint, err := h.Lifecycle.Create(user.ID, req.DepartmentID, req.Subject, req.Description, models.Priority(req.Priority), req.Tags)
	if err != nil {
		h.writeError(c, err)
		return
	}

	body := h.message("complaint.created")
	body["complaint"] = complaint
	c.JSON(http.StatusCreated, body)
}

// ListComplaints returns complaints scoped by the actor's role: patients
// see their own, department staff see their department, admins see all.
func (h *Handler) ListComplaints(c *gin.Context) {
	user := actor(c)

	filter := storage.ComplaintFilter{
		Status:   models.Status(c.Query("status")),
		Priority: models.Priority(c.Query("priority")),
		Search:   c.Query("search"),
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		filter.AssigneeID = assignedTo
	}

	switch {
	case user.Role == models.RolePatient:
		filter.PatientID = user.ID
	case user.Role == models.RoleAdmin:
		filter.DepartmentID = c.Query("department_id")
	default:
		filter.DepartmentID = user.DepartmentID
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if filter.Page <= 0 {
		filter.Page = 1
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.DefaultPageSize)))
	if filter.Limit <= 0 {
		filter.Limit = config.DefaultPageSize
	}
	if filter.Limit > config.MaxPageSize {
		filter.Limit = config.MaxPageSize
	}

	complaints, total, err := h.Storage.ListComplaints(filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	totalPages := total / int64(filter.Limit)
	if total%int64(filter.Limit) != 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"pagination": gin.H{
			"current_page":     filter.Page,
			"total_pages":      totalPages,
			"total_complaints": total,
			"per_page":         filter.Limit,
		},
	})
}

// MyComplaints returns the actor's own view: filed complaints for patients,
// assigned complaints for staff.
func (h *Handler) MyComplaints(c *gin.Context) {
	user := actor(c)

	filter := storage.ComplaintFilter{Limit: config.MaxPageSize}
	if user.Role == models.RolePatient {
		filter.PatientID = user.ID
	} else {
		filter.AssigneeID = user.ID
	}

	complaints, _, err := h.Storage.ListComplaints(filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// GetComplaint returns one complaint with its timeline (newest-first) and
// attachments.
func (h *Handler) GetComplaint(c *gin.Context) {
	user := actor(c)
	id := c.Param("id")

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, h.message("complaint.not_found"))
		return
	}
	if err := h.Guard.Authorize(user, authz.ActionRead, complaint); err != nil {
		h.writeError(c, err)
		return
	}

	timeline, err := h.Lifecycle.ListTimeline(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	attachments, err := h.Storage.ListAttachments(id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint":   complaint,
		"timeline":    timeline,
		"attachments": attachments,
	})
}

// GetTimeline returns just the audit trail of a complaint, newest-first.
func (h *Handler) GetTimeline(c *gin.Context) {
	user := actor(c)
	id := c.Param("id")

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, h.message("complaint.not_found"))
		return
	}
	if err := h.Guard.Authorize(user, authz.ActionRead, complaint); err != nil {
		h.writeError(c, err)
		return
	}

	timeline, err := h.Lifecycle.ListTimeline(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": timeline})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateStatus applies a manual status transition. Moving into Escalated is
// routed through the escalation path so the level bump stays paired with a
// resolver call for the new tier.
func (h *Handler) UpdateStatus(c *gin.Context) {
	user := actor(c)
	id := c.Param("id")

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newStatus := models.Status(req.Status)
	if !newStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status", "valid_statuses": []models.Status{
			models.StatusNew, models.StatusUnderReview, models.StatusInProgress,
			models.StatusResolved, models.StatusRejected, models.StatusEscalated,
		}})
		return
	}

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, h.message("complaint.not_found"))
		return
	}
	if err := h.Guard.Authorize(user, authz.ActionTransition, complaint); err != nil {
		h.writeError(c, err)
		return
	}

	if newStatus == models.StatusEscalated {
		if err := h.Sweeper.Escalate(complaint, user.ID, req.Note); err != nil {
			h.writeError(c, err)
			return
		}
		complaint, err = h.Storage.GetComplaintByID(id)
		if err != nil {
			h.writeError(c, err)
			return
		}
	} else {
		complaint, err = h.Lifecycle.Transition(id, user.ID, newStatus, req.Note)
		if err != nil {
			h.writeError(c, err)
			return
		}
	}

	body := h.message("complaint.status_updated")
	body["complaint"] = complaint
	c.JSON(http.StatusOK, body)
}

type assignRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// AssignComplaint sets or clears the complaint's owner.
func (h *Handler) AssignComplaint(c *gin.Context) {
	user := actor(c)
	id := c.Param("id")

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, h.message("complaint.not_found"))
		return
	}
	if err := h.Guard.Authorize(user, authz.ActionReassign, complaint); err != nil {
		h.writeError(c, err)
		return
	}

	complaint, err = h.Lifecycle.Reassign(id, user.ID, req.AssignedTo)
	if err != nil {
		h.writeError(c, err)
		return
	}

	key := "complaint.assigned"
	if req.AssignedTo == nil {
		key = "complaint.unassigned"
	}
	body := h.message(key)
	body["complaint"] = complaint
	c.JSON(http.StatusOK, body)
}

// DeleteComplaint removes a complaint and its audit trail. Admin only.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	user := actor(c)
	id := c.Param("id")

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, h.message("complaint.not_found"))
		return
	}
	if err := h.Guard.Authorize(user, authz.ActionDelete, complaint); err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.Lifecycle.Delete(id, user.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.message("complaint.deleted"))
}

// ComplaintStats returns the dashboard summary, scoped to the actor's
// department unless the actor is an admin.
func (h *Handler) ComplaintStats(c *gin.Context) {
	user := actor(c)
	if !user.Role.IsStaff() {
		h.writeError(c, h.Guard.Authorize(user, authz.ActionTransition, nil))
		return
	}

	departmentID := user.DepartmentID
	if user.Role == models.RoleAdmin {
		departmentID = c.Query("department_id")
	}

	stats, err := h.Lifecycle.Stats(departmentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
