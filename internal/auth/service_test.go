package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/security"
)

var (
	testJWT = config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "pawfinderz",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 60,
	}
	testPassword = config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

func TestLoginIssuesTokensBoundToSession(t *testing.T) {
	user := newUser(t, "login@example.com", "whiskers42", enums.UserRoleAdmin)
	repo := newStubUserRepo(user)
	sessions := newStubSessions()
	svc := buildTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "LOGIN@example.com", Password: "whiskers42"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := sessions.records[claims.ID]; got.userID != user.ID || got.token != resp.RefreshToken {
		t.Fatalf("session not stored for jti %q: %+v", claims.ID, got)
	}
	if repo.lastLogin.IsZero() {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user payload, got %+v", resp.User)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	active := newUser(t, "a@example.com", "whiskers42", enums.UserRoleUser)
	inactive := newUser(t, "b@example.com", "whiskers42", enums.UserRoleUser)
	inactive.IsActive = false
	svc := buildTestService(t, newStubUserRepo(active, inactive), newStubSessions())

	cases := []LoginRequest{
		{Email: "a@example.com", Password: "wrong-pass1"},
		{Email: "missing@example.com", Password: "whiskers42"},
		{Email: "b@example.com", Password: "whiskers42"},
		{Email: "  ", Password: "whiskers42"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %v", req.Email, err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("%s: credential errors must not reveal which check failed: %q", req.Email, typed.Message())
		}
	}
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	weak := testPassword
	weak.ArgonTime = 1
	weak.ArgonMemoryKB = 8
	hash, err := security.HashPassword("whiskers42", weak)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := newUser(t, "old@example.com", "", enums.UserRoleUser)
	user.PasswordHash = hash
	repo := newStubUserRepo(user)
	svc := buildTestService(t, repo, newStubSessions())

	if _, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "whiskers42"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.rehashed == "" || repo.rehashed == hash {
		t.Fatalf("expected password hash to be upgraded")
	}
	if security.NeedsRehash(repo.rehashed, testPassword) {
		t.Fatalf("upgraded hash still weak")
	}
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessions()
	svc := buildTestService(t, repo, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Sam",
		Email:    " Sam@Example.com ",
		Password: "whiskers42",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "sam@example.com" || resp.User.Role != enums.UserRoleUser {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if len(sessions.records) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.records))
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Sam", Email: "sam@example.com", Password: "whiskers42"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegisterEnforcesPasswordPolicy(t *testing.T) {
	svc := buildTestService(t, newStubUserRepo(), newStubSessions())
	for _, pw := range []string{"short1", "lettersonly", "12345678", strings.Repeat("a1", 65)} {
		_, err := svc.Register(context.Background(), RegisterRequest{Name: "Sam", Email: "sam@example.com", Password: pw})
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", pw, err)
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := newUser(t, "r@example.com", "whiskers42", enums.UserRoleUser)
	repo := newStubUserRepo(user)
	sessions := newStubSessions()
	svc := buildTestService(t, repo, sessions)

	first, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "whiskers42"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Role changes made by an admin are picked up on refresh.
	user.Role = enums.UserRoleAdmin

	second, err := svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, second.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected refreshed role admin, got %s", claims.Role)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}

	if _, err := svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	user := newUser(t, "d@example.com", "whiskers42", enums.UserRoleUser)
	sessions := newStubSessions()
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "whiskers42"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user.IsActive = false

	if _, err := svc.Refresh(context.Background(), resp.AccessToken, resp.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(sessions.records) != 0 {
		t.Fatalf("rotated session must be revoked, still have %d", len(sessions.records))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	user := newUser(t, "o@example.com", "whiskers42", enums.UserRoleUser)
	sessions := newStubSessions()
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "whiskers42"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), resp.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.records) != 0 {
		t.Fatalf("expected session removed")
	}
	if err := svc.Logout(context.Background(), "garbage"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad token, got %v", err)
	}
}

func buildTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func newUser(t *testing.T, email, password string, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Name:     "Test",
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	if password != "" {
		hash, err := security.HashPassword(password, testPassword)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		user.PasswordHash = hash
	}
	return user
}

type stubUserRepo struct {
	byID      map[uuid.UUID]*models.User
	lastLogin time.Time
	rehashed  string
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{byID: map[uuid.UUID]*models.User{}}
	for _, u := range seed {
		repo.byID[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	s.lastLogin = at
	return nil
}

func (s *stubUserRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.rehashed = hash
	return nil
}

type stubRecord struct {
	userID uuid.UUID
	token  string
}

type stubSessions struct {
	records map[string]stubRecord
	seq     int
}

func newStubSessions() *stubSessions {
	return &stubSessions{records: map[string]stubRecord{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string, userID uuid.UUID) (string, error) {
	s.seq++
	token := "refresh-" + strings.Repeat("x", s.seq)
	s.records[accessID] = stubRecord{userID: userID, token: token}
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error) {
	rec, ok := s.records[oldAccessID]
	if !ok || rec.token != provided {
		return session.Rotation{}, session.ErrInvalidRefreshToken
	}
	delete(s.records, oldAccessID)
	accessID := session.NewAccessID()
	token, err := s.Generate(ctx, accessID, rec.userID)
	if err != nil {
		return session.Rotation{}, err
	}
	return session.Rotation{AccessID: accessID, RefreshToken: token, UserID: rec.userID}, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	if _, ok := s.records[accessID]; !ok {
		return errors.New("not found")
	}
	delete(s.records, accessID)
	return nil
}
