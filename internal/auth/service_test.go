package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/ofuentes/wms-bridge/pkg/auth"
	"github.com/ofuentes/wms-bridge/pkg/auth/session"
	"github.com/ofuentes/wms-bridge/pkg/config"
	"github.com/ofuentes/wms-bridge/pkg/db/models"
	"github.com/ofuentes/wms-bridge/pkg/enums"
	pkgerrors "github.com/ofuentes/wms-bridge/pkg/errors"
	"github.com/ofuentes/wms-bridge/pkg/security"
)

type stubRepo struct {
	user    *models.User
	updates map[string]any
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

type stubSessions struct {
	refresh   string
	rotateErr error
	revoked   []string
	active    map[string]bool
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	if s.active == nil {
		s.active = map[string]bool{}
	}
	s.active[accessID] = true
	return s.refresh, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if s.active == nil {
		s.active = map[string]bool{}
	}
	delete(s.active, oldAccessID)
	newAccessID := session.NewAccessID()
	s.active[newAccessID] = true
	return newAccessID, "rotated-" + s.refresh, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.active, accessID)
	return nil
}

func (s *stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.active[accessID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-please-rotate",
		Issuer:            "wms-bridge-test",
		ExpirationMinutes: 15,
	}
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Username:     "jdoe",
		PasswordHash: hash,
		Role:         enums.UserRoleUser,
		Active:       true,
	}
}

func newTestService(t *testing.T, repo *stubRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(repo, sessions, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	svc := newTestService(t, repo, &stubSessions{refresh: "refresh-1"})

	pair, err := svc.Login(context.Background(), LoginInput{Username: "JDoe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken != "refresh-1" {
		t.Fatalf("token pair malformed %+v", pair)
	}
	if pair.User.Username != "jdoe" {
		t.Fatalf("user not attached %+v", pair.User)
	}
	if _, ok := repo.updates["last_login_at"]; !ok {
		t.Fatal("last login not recorded")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != repo.user.ID {
		t.Fatalf("claims carry wrong user %+v", claims)
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	svc := newTestService(t, repo, &stubSessions{refresh: "refresh-1"})

	_, err := svc.Login(context.Background(), LoginInput{Username: "jdoe", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestLoginUnknownUserIsUnauthorized(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubSessions{refresh: "refresh-1"})

	_, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestLoginInactiveUserIsUnauthorized(t *testing.T) {
	user := testUser(t, "correct-horse")
	user.Active = false
	svc := newTestService(t, &stubRepo{user: user}, &stubSessions{refresh: "refresh-1"})

	_, err := svc.Login(context.Background(), LoginInput{Username: "jdoe", Password: "correct-horse"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	sessions := &stubSessions{refresh: "refresh-1"}
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	pair, err := svc.Login(ctx, LoginInput{Username: "jdoe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken != "rotated-refresh-1" {
		t.Fatalf("refresh token not rotated %+v", rotated)
	}
	if rotated.AccessToken == pair.AccessToken {
		t.Fatal("access token not reissued")
	}
}

func TestRefreshInvalidTokenIsUnauthorized(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	sessions := &stubSessions{refresh: "refresh-1", rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	pair, err := svc.Login(ctx, LoginInput{Username: "jdoe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(ctx, RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: "stolen",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	sessions := &stubSessions{refresh: "refresh-1"}
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	pair, err := svc.Login(ctx, LoginInput{Username: "jdoe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revoked session got %d", len(sessions.revoked))
	}
}

func TestMeReturnsCurrentUser(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	svc := newTestService(t, repo, &stubSessions{refresh: "refresh-1"})
	ctx := context.Background()

	pair, err := svc.Login(ctx, LoginInput{Username: "jdoe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	me, err := svc.Me(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Username != "jdoe" {
		t.Fatalf("wrong user %+v", me)
	}
}

func TestMeRejectsRevokedSession(t *testing.T) {
	repo := &stubRepo{user: testUser(t, "correct-horse")}
	sessions := &stubSessions{refresh: "refresh-1"}
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	pair, err := svc.Login(ctx, LoginInput{Username: "jdoe", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Me(ctx, pair.AccessToken); err != nil {
		t.Fatalf("me before logout: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Me(ctx, pair.AccessToken)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}
