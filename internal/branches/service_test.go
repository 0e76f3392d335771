package branches

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/db/models"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
)

type stubRepo struct {
	byID    map[uuid.UUID]*models.Branch
	updates map[uuid.UUID]map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:    map[uuid.UUID]*models.Branch{},
		updates: map[uuid.UUID]map[string]any{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, branch *models.Branch) (*models.Branch, error) {
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	s.byID[branch.ID] = branch
	return branch, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	if branch, ok := s.byID[id]; ok && branch.DeletedAt == nil {
		return branch, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByCode(ctx context.Context, code string) (*models.Branch, error) {
	for _, branch := range s.byID {
		if branch.Code == code && branch.DeletedAt == nil {
			return branch, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, includeInactive bool) ([]models.Branch, error) {
	var out []models.Branch
	for _, branch := range s.byID {
		if branch.DeletedAt != nil {
			continue
		}
		if !includeInactive && !branch.Active {
			continue
		}
		out = append(out, *branch)
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates[id] = updates
	if branch, ok := s.byID[id]; ok {
		if v, ok := updates["is_default"].(bool); ok {
			branch.IsDefault = v
		}
	}
	return nil
}

func (s *stubRepo) ClearDefault(ctx context.Context) error {
	for _, branch := range s.byID {
		branch.IsDefault = false
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateNormalizesCode(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	dto, err := svc.Create(context.Background(), CreateInput{Code: " main ", Name: "Main Site"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Code != "MAIN" {
		t.Fatalf("code not normalized got %q", dto.Code)
	}
	if !dto.Active {
		t.Fatal("new branch should be active")
	}
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Code: "MAIN", Name: "Main Site"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, CreateInput{Code: "main", Name: "Main Again"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestUpdateRejectsEmptyName(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateInput{Code: "MAIN", Name: "Main Site"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	empty := "  "
	_, err = svc.Update(ctx, UpdateInput{BranchID: dto.ID, Name: &empty})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestDeleteSoftDeletes(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateInput{Code: "MAIN", Name: "Main Site"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	updates := repo.updates[dto.ID]
	if updates["active"] != false {
		t.Fatalf("branch not deactivated %+v", updates)
	}
	if _, ok := updates["deleted_at"]; !ok {
		t.Fatalf("deleted_at not stamped %+v", updates)
	}
}

func TestDefaultMovesBetweenBranches(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Code: "MAIN", Name: "Main Site", Default: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.Default {
		t.Fatal("first branch should hold the default")
	}

	second, err := svc.Create(ctx, CreateInput{Code: "WEST", Name: "West Site", Default: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !second.Default {
		t.Fatal("second branch should take over the default")
	}
	if repo.byID[first.ID].IsDefault {
		t.Fatal("first branch should have lost the default")
	}
}

func TestUpdatePromotesDefault(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Code: "MAIN", Name: "Main Site", Default: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, CreateInput{Code: "WEST", Name: "West Site"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	makeDefault := true
	dto, err := svc.Update(ctx, UpdateInput{BranchID: second.ID, Default: &makeDefault})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !dto.Default {
		t.Fatal("updated branch should hold the default")
	}
	if repo.byID[first.ID].IsDefault {
		t.Fatal("previous default should have been demoted")
	}
}

func TestGetUnknownBranchIsNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
