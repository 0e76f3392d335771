package series

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

// Document type keys used by the numbering series.
const (
	DocTypeGoodsReceipt   = "grpo"
	DocTypeTransfer       = "transfer"
	DocTypeInventoryCount = "count"
)

// Allocator hands out sequential document numbers per branch and type.
type Allocator interface {
	Allocate(ctx context.Context, tx *gorm.DB, branchID *uuid.UUID, docType string) (string, error)
}

type allocator struct{}

// NewAllocator returns the default series allocator. Allocation must run
// inside the transaction that creates the document so gaps only appear on
// rollback.
func NewAllocator() Allocator {
	return allocator{}
}

func (allocator) Allocate(ctx context.Context, tx *gorm.DB, branchID *uuid.UUID, docType string) (string, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "transaction required for number allocation")
	}

	var row models.DocumentSeries
	query := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_type = ?", docType)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	} else {
		query = query.Where("branch_id IS NULL")
	}

	if err := query.First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			row = models.DocumentSeries{
				BranchID:     branchID,
				DocumentType: docType,
				Prefix:       defaultPrefix(docType),
				NextNumber:   1,
				Padding:      6,
			}
			if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document series")
			}
		} else {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document series")
		}
	}

	number := fmt.Sprintf("%s-%0*d", row.Prefix, row.Padding, row.NextNumber)
	if err := tx.WithContext(ctx).
		Model(&models.DocumentSeries{}).
		Where("id = ?", row.ID).
		Update("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance document series")
	}

	return number, nil
}

func defaultPrefix(docType string) string {
	switch docType {
	case DocTypeGoodsReceipt:
		return "GRPO"
	case DocTypeTransfer:
		return "TRF"
	case DocTypeInventoryCount:
		return "CNT"
	default:
		return "DOC"
	}
}
