package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/security"
)

type stubRepo struct {
	byID       map[uuid.UUID]*models.User
	byUsername map[string]*models.User
	updates    map[uuid.UUID]map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:       map[uuid.UUID]*models.User{},
		byUsername: map[string]*models.User{},
		updates:    map[uuid.UUID]map[string]any{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.byID[user.ID] = user
	s.byUsername[user.Username] = user
	return user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := s.byUsername[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	for _, user := range s.byID {
		out = append(out, *user)
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates[id] = updates
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateGeneratesTempPassword(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		Username: "JDoe",
		Role:     enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Username != "jdoe" {
		t.Fatalf("username not normalized got %q", created.Username)
	}
	if created.TempPassword == "" {
		t.Fatal("expected temp password for generated credentials")
	}
	if !created.MustChangePassword {
		t.Fatal("temp credentials should require a password change")
	}

	stored := repo.byUsername["jdoe"]
	ok, err := security.VerifyPassword(created.TempPassword, stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("temp password does not verify: %v", err)
	}
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "jdoe", Role: enums.UserRoleUser}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, CreateInput{Username: "jdoe", Role: enums.UserRoleUser})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		Username: "jdoe",
		Password: "short",
		Role:     enums.UserRoleUser,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestUpdateChangesRoleAndBranch(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Username: "jdoe", Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	role := enums.UserRoleQC
	branchID := uuid.New()
	dto, err := svc.Update(ctx, UpdateInput{
		UserID:   created.ID,
		Role:     &role,
		BranchID: &branchID,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Role != enums.UserRoleQC {
		t.Fatalf("role not updated got %s", dto.Role)
	}
	if dto.BranchID == nil || *dto.BranchID != branchID {
		t.Fatalf("branch not updated %+v", dto)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Username: "jdoe",
		Password: "correct-horse",
		Role:     enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.ChangePassword(ctx, ChangePasswordInput{
		UserID:          created.ID,
		CurrentPassword: "wrong-guess",
		NewPassword:     "battery-staple",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}

	if err := svc.ChangePassword(ctx, ChangePasswordInput{
		UserID:          created.ID,
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}
}

func TestResetPasswordReturnsNewTemp(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Username: "jdoe", Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	temp, err := svc.ResetPassword(ctx, created.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if temp == "" {
		t.Fatal("expected temp password")
	}
	if _, ok := repo.updates[created.ID]["password_hash"]; !ok {
		t.Fatal("password hash not stored")
	}
	if repo.updates[created.ID]["must_change_password"] != true {
		t.Fatal("reset should flag a forced password change")
	}
}

func TestChangePasswordClearsForcedChange(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Username: "jdoe",
		Password: "correct-horse",
		Role:     enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.ChangePassword(ctx, ChangePasswordInput{
		UserID:          created.ID,
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if repo.updates[created.ID]["must_change_password"] != false {
		t.Fatal("password change should clear the forced-change flag")
	}
}

func TestDeactivateUnknownUserIsNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	err := svc.Deactivate(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
