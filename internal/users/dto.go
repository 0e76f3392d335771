package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// UserDTO is the API shape of a user account. Password material never
// leaves the service layer.
type UserDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Username           string             `json:"username"`
	Email              *string            `json:"email,omitempty"`
	Role               enums.UserRole     `json:"role"`
	BranchID           *uuid.UUID         `json:"branch_id,omitempty"`
	BranchName         *string            `json:"branch_name,omitempty"`
	Permissions        models.Permissions `json:"permissions,omitempty"`
	Active             bool               `json:"active"`
	MustChangePassword bool               `json:"must_change_password"`
	LastLoginAt        *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CreatedUserDTO carries the one-time temp password back to the admin.
type CreatedUserDTO struct {
	UserDTO
	TempPassword string `json:"temp_password,omitempty"`
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	dto := &UserDTO{
		ID:                 m.ID,
		Username:           m.Username,
		Email:              m.Email,
		Role:               m.Role,
		BranchID:           m.BranchID,
		Active:             m.Active,
		MustChangePassword: m.MustChangePassword,
		LastLoginAt:        m.LastLoginAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Permissions != nil {
		dto.Permissions = *m.Permissions
	}
	if m.Branch != nil {
		name := m.Branch.Name
		dto.BranchName = &name
	}
	return dto
}
