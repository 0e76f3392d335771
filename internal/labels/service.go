package labels

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

// Service defines label generation operations.
type Service interface {
	GenerateQR(ctx context.Context, input GenerateQRInput) (*LabelDTO, error)
	GenerateBarcode(ctx context.Context, input GenerateBarcodeInput) (*LabelDTO, error)
	Reprint(ctx context.Context, id, actorID uuid.UUID) (*LabelDTO, error)
	History(ctx context.Context, userID uuid.UUID) ([]LabelDTO, error)
}

// GenerateQRInput describes one item unit to encode.
type GenerateQRInput struct {
	ItemCode    string
	BatchNumber *string
	SerialNo    *string
	ExpiryDate  *string
	Copies      int
	ActorID     uuid.UUID
	BranchID    *uuid.UUID
}

// GenerateBarcodeInput describes one item to tag with a short code.
type GenerateBarcodeInput struct {
	ItemCode string
	Copies   int
	ActorID  uuid.UUID
	BranchID *uuid.UUID
}

// LabelDTO is the API shape of a generated label.
type LabelDTO struct {
	ID          uuid.UUID       `json:"id"`
	Type        enums.LabelType `json:"type"`
	Payload     string          `json:"payload"`
	ItemCode    string          `json:"item_code"`
	ItemName    *string         `json:"item_name,omitempty"`
	BatchNumber *string         `json:"batch_number,omitempty"`
	SerialNo    *string         `json:"serial_no,omitempty"`
	ExpiryDate  *string         `json:"expiry_date,omitempty"`
	Copies      int             `json:"copies"`
	CreatedAt   time.Time       `json:"created_at"`
}

type service struct {
	repo Repository
	erp  erpGateway
	cfg  config.LabelConfig
	now  func() time.Time
}

// NewService builds the label service with required dependencies.
func NewService(repo Repository, gateway erpGateway, cfg config.LabelConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("label repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	if cfg.BarcodePrefix == "" {
		cfg.BarcodePrefix = "WMS"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	return &service{repo: repo, erp: gateway, cfg: cfg, now: time.Now}, nil
}

func (s *service) GenerateQR(ctx context.Context, input GenerateQRInput) (*LabelDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ItemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}

	item, err := s.erp.GetItem(ctx, input.ItemCode)
	if err != nil {
		return nil, err
	}

	expiry, err := normalizeExpiry(input.ExpiryDate)
	if err != nil {
		return nil, err
	}

	payload := EncodeQRPayload(item.ItemCode, input.BatchNumber, expiry, input.SerialNo, s.now().UTC())
	label := &models.Label{
		Type:        enums.LabelTypeQR,
		Payload:     payload,
		ItemCode:    item.ItemCode,
		BatchNumber: input.BatchNumber,
		SerialNo:    input.SerialNo,
		ExpiryDate:  expiry,
		Copies:      copiesOrDefault(input.Copies),
		GeneratedBy: input.ActorID,
		BranchID:    input.BranchID,
	}
	if item.ItemName != "" {
		name := item.ItemName
		label.ItemName = &name
	}
	created, err := s.repo.Create(ctx, label)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store label")
	}
	return fromModel(created), nil
}

func (s *service) GenerateBarcode(ctx context.Context, input GenerateBarcodeInput) (*LabelDTO, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ItemCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code required")
	}

	item, err := s.erp.GetItem(ctx, input.ItemCode)
	if err != nil {
		return nil, err
	}

	payload, err := EncodeBarcode(s.cfg.BarcodePrefix, item.ItemCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate barcode")
	}
	label := &models.Label{
		Type:        enums.LabelTypeBarcode,
		Payload:     payload,
		ItemCode:    item.ItemCode,
		Copies:      copiesOrDefault(input.Copies),
		GeneratedBy: input.ActorID,
		BranchID:    input.BranchID,
	}
	if item.ItemName != "" {
		name := item.ItemName
		label.ItemName = &name
	}
	created, err := s.repo.Create(ctx, label)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store label")
	}
	return fromModel(created), nil
}

func (s *service) Reprint(ctx context.Context, id, actorID uuid.UUID) (*LabelDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	label, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "label not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load label")
	}
	copies := label.Copies + 1
	if err := s.repo.Update(ctx, label.ID, map[string]any{"copies": copies}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record reprint")
	}
	label.Copies = copies
	return fromModel(label), nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]LabelDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	labels, err := s.repo.ListByUser(ctx, userID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list labels")
	}
	out := make([]LabelDTO, 0, len(labels))
	for i := range labels {
		out = append(out, *fromModel(&labels[i]))
	}
	return out, nil
}

// EncodeQRPayload renders the scannable item text. Field positions are
// fixed; absent batch, expiry, and serial render as empty segments.
func EncodeQRPayload(itemCode string, batch, expiry, serial *string, at time.Time) string {
	segments := []string{
		"ITM",
		itemCode,
		deref(batch),
		deref(expiry),
		deref(serial),
		fmt.Sprintf("%d", at.Unix()),
	}
	return strings.Join(segments, "_")
}

// EncodeBarcode renders a short unique item code of the form
// <prefix>-<itemCode>-<HEX8>.
func EncodeBarcode(prefix, itemCode string) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := strings.ToUpper(hex.EncodeToString(buf))
	return fmt.Sprintf("%s-%s-%s", prefix, itemCode, suffix), nil
}

// normalizeExpiry accepts 2006-01-02 or already-compact YYYYMMDD input and
// returns the compact form used on labels.
func normalizeExpiry(raw *string) (*string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value := strings.ReplaceAll(*raw, "-", "")
	if _, err := time.Parse("20060102", value); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry date must be YYYY-MM-DD")
	}
	return &value, nil
}

func copiesOrDefault(copies int) int {
	if copies <= 0 {
		return 1
	}
	return copies
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func fromModel(m *models.Label) *LabelDTO {
	return &LabelDTO{
		ID:          m.ID,
		Type:        m.Type,
		Payload:     m.Payload,
		ItemCode:    m.ItemCode,
		ItemName:    m.ItemName,
		BatchNumber: m.BatchNumber,
		SerialNo:    m.SerialNo,
		ExpiryDate:  m.ExpiryDate,
		Copies:      m.Copies,
		CreatedAt:   m.CreatedAt,
	}
}
