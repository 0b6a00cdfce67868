package models_test

import (
	"testing"

	"caredesk/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook
// generates a valid UUID and derives the seniority level from the role.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{Name: "Sup", Role: models.RoleSupervisor, Active: true}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act
	err := user.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	_, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.Equal(t, 2, user.SeniorityLevel, "supervisor defaults to level 2")
}

// TestUserBeforeCreate_PreservesExplicitLevel verifies an explicitly set
// seniority level survives the hook.
func TestUserBeforeCreate_PreservesExplicitLevel(t *testing.T) {
	user := &models.User{ID: "fixed", Role: models.RoleStaff, SeniorityLevel: 3}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, "fixed", user.ID)
	assert.Equal(t, 3, user.SeniorityLevel)
}

// TestRoleSeniorityLevel checks the role-to-tier mapping used by routing.
func TestRoleSeniorityLevel(t *testing.T) {
	assert.Equal(t, 1, models.RoleStaff.SeniorityLevel())
	assert.Equal(t, 2, models.RoleSupervisor.SeniorityLevel())
	assert.Equal(t, 3, models.RoleManager.SeniorityLevel())
	assert.Equal(t, 4, models.RoleAdmin.SeniorityLevel())
	assert.Equal(t, 0, models.RolePatient.SeniorityLevel(), "patients have no tier")
}

// TestRoleIsStaff verifies patients are excluded from the hierarchy.
func TestRoleIsStaff(t *testing.T) {
	assert.True(t, models.RoleStaff.IsStaff())
	assert.True(t, models.RoleSupervisor.IsStaff())
	assert.True(t, models.RoleManager.IsStaff())
	assert.True(t, models.RoleAdmin.IsStaff())
	assert.False(t, models.RolePatient.IsStaff())
	assert.False(t, models.Role("visitor").IsStaff())
}
