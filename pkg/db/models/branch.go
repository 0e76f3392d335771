package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical site users and documents are scoped to.
type Branch struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string     `gorm:"column:code;not null;uniqueIndex"`
	Name        string     `gorm:"column:name;not null"`
	WarehouseID *string    `gorm:"column:warehouse_id"`
	Address     *string    `gorm:"column:address"`
	Active      bool       `gorm:"column:active;not null;default:true"`
	IsDefault   bool       `gorm:"column:is_default;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index"`
}

// DocumentSeries allocates sequential document numbers per branch and
// document type.
type DocumentSeries struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID     *uuid.UUID `gorm:"column:branch_id;type:uuid;uniqueIndex:idx_series_branch_doc"`
	DocumentType string     `gorm:"column:document_type;not null;uniqueIndex:idx_series_branch_doc"`
	Prefix       string     `gorm:"column:prefix;not null"`
	NextNumber   int64      `gorm:"column:next_number;not null;default:1"`
	Padding      int        `gorm:"column:padding;not null;default:6"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
