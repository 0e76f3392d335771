package bins

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

const defaultHistoryLimit = 50

// Service defines bin scanning operations.
type Service interface {
	Scan(ctx context.Context, input ScanInput) (*ScanResultDTO, error)
	SyncBin(ctx context.Context, binCode string, actorID uuid.UUID) (*ScanResultDTO, error)
	History(ctx context.Context, userID uuid.UUID) ([]ScanLogDTO, error)
}

// ScanInput is one bin code read off a scanner.
type ScanInput struct {
	BinCode  string
	ActorID  uuid.UUID
	BranchID *uuid.UUID
}

// ScanResultDTO reports what the scanned bin holds. Unresolved scans are
// still logged so floor supervisors can spot mislabeled bins.
type ScanResultDTO struct {
	BinCode     string       `json:"bin_code"`
	Resolved    bool         `json:"resolved"`
	WarehouseID *string      `json:"warehouse_id,omitempty"`
	Items       []BinItemDTO `json:"items"`
	ScannedAt   time.Time    `json:"scanned_at"`
}

// BinItemDTO is the stock of one item in the scanned bin.
type BinItemDTO struct {
	ItemCode  string          `json:"item_code"`
	ItemName  string          `json:"item_name"`
	OnHandQty decimal.Decimal `json:"on_hand_qty"`
}

// ScanLogDTO is one historical scan.
type ScanLogDTO struct {
	ID          uuid.UUID `json:"id"`
	BinCode     string    `json:"bin_code"`
	Resolved    bool      `json:"resolved"`
	WarehouseID *string   `json:"warehouse_id,omitempty"`
	ItemCount   int       `json:"item_count"`
	ScannedAt   time.Time `json:"scanned_at"`
}

type service struct {
	repo Repository
	erp  erpGateway
}

// NewService builds the bin scanning service with required dependencies.
func NewService(repo Repository, gateway erpGateway) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bin scan repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	return &service{repo: repo, erp: gateway}, nil
}

func (s *service) Scan(ctx context.Context, input ScanInput) (*ScanResultDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	binCode := strings.TrimSpace(input.BinCode)
	if binCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bin code required")
	}

	location, err := s.erp.GetBinLocationByCode(ctx, binCode)
	if err != nil {
		return nil, err
	}

	result := &ScanResultDTO{
		BinCode:   binCode,
		ScannedAt: time.Now().UTC(),
		Items:     []BinItemDTO{},
	}
	scan := &models.BinScanLog{
		UserID:   input.ActorID,
		BranchID: input.BranchID,
		BinCode:  binCode,
	}

	if location != nil {
		stock, err := s.erp.GetBinStock(ctx, location.AbsEntry)
		if err != nil {
			return nil, err
		}
		warehouse := location.Warehouse
		result.Resolved = true
		result.WarehouseID = &warehouse
		for _, row := range stock {
			result.Items = append(result.Items, BinItemDTO{
				ItemCode:  row.ItemCode,
				ItemName:  row.ItemName,
				OnHandQty: row.OnHandQty,
			})
		}
		scan.Resolved = true
		scan.WarehouseID = &warehouse
		scan.ItemCount = len(stock)
	}

	if _, err := s.repo.CreateScan(ctx, scan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record bin scan")
	}
	return result, nil
}

// SyncBin refreshes the stock snapshot for a known bin. Unlike Scan it
// treats an unknown bin code as an error rather than an unresolved read.
func (s *service) SyncBin(ctx context.Context, binCode string, actorID uuid.UUID) (*ScanResultDTO, error) {
	result, err := s.Scan(ctx, ScanInput{BinCode: binCode, ActorID: actorID})
	if err != nil {
		return nil, err
	}
	if !result.Resolved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bin location not found").WithDetails(map[string]any{"bin_code": binCode})
	}
	return result, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]ScanLogDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	scans, err := s.repo.ListScansByUser(ctx, userID, defaultHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bin scans")
	}
	out := make([]ScanLogDTO, 0, len(scans))
	for _, scan := range scans {
		out = append(out, ScanLogDTO{
			ID:          scan.ID,
			BinCode:     scan.BinCode,
			Resolved:    scan.Resolved,
			WarehouseID: scan.WarehouseID,
			ItemCount:   scan.ItemCount,
			ScannedAt:   scan.ScannedAt,
		})
	}
	return out, nil
}
