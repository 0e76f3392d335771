package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ofuentes/wms-bridge/pkg/enums"
)

// User is a warehouse operator account. Permissions holds the per-screen
// overrides layered on top of the role defaults.
type User struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username           string         `gorm:"column:username;not null;uniqueIndex"`
	Email              *string        `gorm:"column:email;uniqueIndex"`
	PasswordHash       string         `gorm:"column:password_hash;not null"`
	Role               enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	BranchID           *uuid.UUID     `gorm:"column:branch_id;type:uuid"`
	Branch             *Branch        `gorm:"foreignKey:BranchID"`
	Permissions        *Permissions   `gorm:"column:permissions;type:jsonb;serializer:json"`
	Active             bool           `gorm:"column:active;not null;default:true"`
	MustChangePassword bool           `gorm:"column:must_change_password;not null;default:false"`
	LastLoginAt        *time.Time     `gorm:"column:last_login_at"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Permissions maps a screen name to whether the user may open it.
type Permissions map[string]bool

// Allows reports whether the screen is enabled, defaulting to false for
// unknown screens when any override is present.
func (p Permissions) Allows(screen string) bool {
	if p == nil {
		return false
	}
	return p[screen]
}
