package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/pagination"
	"github.com/ofuentes/wms-bridge/pkg/security"
)

const tempPasswordLength = 12

// Service defines user administration operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreatedUserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, limit, offset int) ([]UserDTO, error)
	Update(ctx context.Context, input UpdateInput) (*UserDTO, error)
	ResetPassword(ctx context.Context, id uuid.UUID) (string, error)
	ChangePassword(ctx context.Context, input ChangePasswordInput) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CreateInput provisions a new account. When Password is empty a temp
// password is generated and returned once.
type CreateInput struct {
	Username    string
	Email       *string
	Password    string
	Role        enums.UserRole
	BranchID    *uuid.UUID
	Permissions models.Permissions
}

// UpdateInput changes account attributes; nil fields are left untouched.
type UpdateInput struct {
	UserID      uuid.UUID
	Email       *string
	Role        *enums.UserRole
	BranchID    *uuid.UUID
	ClearBranch bool
	Permissions models.Permissions
	Active      *bool
}

// ChangePasswordInput lets a user rotate their own password.
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

type service struct {
	repo     Repository
	tx       txRunner
	password config.PasswordConfig
}

// NewService builds the user service with required dependencies.
func NewService(repo Repository, tx txRunner, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, password: password}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreatedUserDTO, error) {
	username := strings.TrimSpace(strings.ToLower(input.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}

	password := input.Password
	temp := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
		temp = generated
	}
	if len(password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}

		user := &models.User{
			Username:           username,
			Email:              input.Email,
			PasswordHash:       hash,
			Role:               input.Role,
			BranchID:           input.BranchID,
			Active:             true,
			MustChangePassword: temp != "",
		}
		if input.Permissions != nil {
			perms := input.Permissions
			user.Permissions = &perms
		}
		created, err = repo.Create(ctx, user)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreatedUserDTO{UserDTO: *FromModel(created), TempPassword: temp}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]UserDTO, error) {
	page := pagination.Normalize(pagination.Params{Limit: limit, Offset: offset})
	users, err := s.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *FromModel(&users[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Email != nil {
		updates["email"] = input.Email
		user.Email = input.Email
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
		}
		updates["role"] = *input.Role
		user.Role = *input.Role
	}
	if input.ClearBranch {
		updates["branch_id"] = nil
		user.BranchID = nil
		user.Branch = nil
	} else if input.BranchID != nil {
		updates["branch_id"] = input.BranchID
		user.BranchID = input.BranchID
	}
	if input.Permissions != nil {
		perms := input.Permissions
		updates["permissions"] = &perms
		user.Permissions = &perms
	}
	if input.Active != nil {
		updates["active"] = *input.Active
		user.Active = *input.Active
	}
	if len(updates) == 0 {
		return FromModel(user), nil
	}

	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) ResetPassword(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return "", err
	}
	temp, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(temp, s.password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	updates := map[string]any{
		"password_hash":        hash,
		"must_change_password": true,
	}
	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store password")
	}
	return temp, nil
}

func (s *service) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if len(input.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	user, err := s.loadUser(ctx, input.UserID)
	if err != nil {
		return err
	}
	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password does not match")
	}
	hash, err := security.HashPassword(input.NewPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	updates := map[string]any{
		"password_hash":        hash,
		"must_change_password": false,
	}
	if err := s.repo.Update(ctx, user.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store password")
	}
	return nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, user.ID, map[string]any{"active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
