package branches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

// Service defines branch administration operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BranchDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BranchDTO, error)
	List(ctx context.Context, includeInactive bool) ([]BranchDTO, error)
	Update(ctx context.Context, input UpdateInput) (*BranchDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput registers one physical site. Setting Default moves the
// default marker off whichever branch currently holds it.
type CreateInput struct {
	Code        string
	Name        string
	WarehouseID *string
	Address     *string
	Default     bool
}

// UpdateInput changes branch attributes; nil fields are left untouched.
type UpdateInput struct {
	BranchID    uuid.UUID
	Name        *string
	WarehouseID *string
	Address     *string
	Active      *bool
	Default     *bool
}

// BranchDTO is the API shape of a branch.
type BranchDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	WarehouseID *string   `json:"warehouse_id,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Active      bool      `json:"active"`
	Default     bool      `json:"default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the branch service with required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("branch repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BranchDTO, error) {
	code := strings.TrimSpace(strings.ToUpper(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code and name required")
	}

	var created *models.Branch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByCode(ctx, code); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "branch code already taken")
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check branch code")
		}

		if input.Default {
			if err := repo.ClearDefault(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default branch")
			}
		}

		branch := &models.Branch{
			Code:        code,
			Name:        name,
			WarehouseID: input.WarehouseID,
			Address:     input.Address,
			Active:      true,
			IsDefault:   input.Default,
		}
		var err error
		created, err = repo.Create(ctx, branch)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create branch")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BranchDTO, error) {
	branch, err := s.loadBranch(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromModel(branch), nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]BranchDTO, error) {
	branches, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}
	out := make([]BranchDTO, 0, len(branches))
	for i := range branches {
		out = append(out, *fromModel(&branches[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*BranchDTO, error) {
	branch, err := s.loadBranch(ctx, input.BranchID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
		branch.Name = name
	}
	if input.WarehouseID != nil {
		updates["warehouse_id"] = input.WarehouseID
		branch.WarehouseID = input.WarehouseID
	}
	if input.Address != nil {
		updates["address"] = input.Address
		branch.Address = input.Address
	}
	if input.Active != nil {
		updates["active"] = *input.Active
		branch.Active = *input.Active
	}
	if input.Default != nil {
		updates["is_default"] = *input.Default
		branch.IsDefault = *input.Default
	}
	if len(updates) == 0 {
		return fromModel(branch), nil
	}

	// Promoting a branch to default demotes the current holder in the
	// same transaction.
	if input.Default != nil && *input.Default {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.ClearDefault(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default branch")
			}
			if err := repo.Update(ctx, branch.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return fromModel(branch), nil
	}

	if err := s.repo.Update(ctx, branch.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
	}
	return fromModel(branch), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	branch, err := s.loadBranch(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"active":     false,
		"is_default": false,
		"deleted_at": now,
	}
	if err := s.repo.Update(ctx, branch.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete branch")
	}
	return nil
}

func (s *service) loadBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}

func fromModel(m *models.Branch) *BranchDTO {
	return &BranchDTO{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		WarehouseID: m.WarehouseID,
		Address:     m.Address,
		Active:      m.Active,
		Default:     m.IsDefault,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
