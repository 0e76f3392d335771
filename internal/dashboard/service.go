package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

// Service aggregates the landing-screen figures for a warehouse user.
type Service interface {
	Stats(ctx context.Context, actorID uuid.UUID) (*StatsDTO, error)
}

// StatsDTO is the dashboard payload.
type StatsDTO struct {
	MyReceipts      map[string]int64 `json:"my_receipts"`
	MyTransfers     map[string]int64 `json:"my_transfers"`
	PendingQC       PendingQCDTO     `json:"pending_qc"`
	OpenPickLists   int64            `json:"open_pick_lists"`
	MyPickLists     int64            `json:"my_pick_lists"`
	MyOpenCounts    int64            `json:"my_open_counts"`
	MyScansToday    int64            `json:"my_scans_today"`
	GeneratedAtUnix int64            `json:"generated_at"`
}

// PendingQCDTO counts submitted documents awaiting a QC decision.
type PendingQCDTO struct {
	GoodsReceipts int64 `json:"goods_receipts"`
	Transfers     int64 `json:"transfers"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the dashboard service with required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Stats(ctx context.Context, actorID uuid.UUID) (*StatsDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	receiptRows, err := s.repo.ReceiptCountsByCreator(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count receipts")
	}
	transferRows, err := s.repo.TransferCountsByCreator(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count transfers")
	}
	pendingReceipts, err := s.repo.CountReceiptsByStatus(ctx, enums.GRPOStatusSubmitted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending receipts")
	}
	pendingTransfers, err := s.repo.CountTransfersByStatus(ctx, enums.TransferStatusSubmitted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending transfers")
	}
	openPicks, err := s.repo.CountPickListsByStatus(ctx, enums.PickListStatusOpen)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open pick lists")
	}
	myPicks, err := s.repo.CountPickListsAssignedTo(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assigned pick lists")
	}
	myCounts, err := s.repo.CountOpenCountsByCreator(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open count sheets")
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	myScans, err := s.repo.CountScansSince(ctx, actorID, dayStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count scans")
	}

	return &StatsDTO{
		MyReceipts:  statusMap(receiptRows),
		MyTransfers: statusMap(transferRows),
		PendingQC: PendingQCDTO{
			GoodsReceipts: pendingReceipts,
			Transfers:     pendingTransfers,
		},
		OpenPickLists:   openPicks,
		MyPickLists:     myPicks,
		MyOpenCounts:    myCounts,
		MyScansToday:    myScans,
		GeneratedAtUnix: now.Unix(),
	}, nil
}

func statusMap(rows []StatusCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out
}
