package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
	"github.com/pskiad17/FinancialOrganizer/internal/core/ports"
	"github.com/pskiad17/FinancialOrganizer/internal/infrastructure/password"
	"github.com/pskiad17/FinancialOrganizer/internal/infrastructure/token"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAccountStore struct {
	byID      map[string]*domain.Account
	createErr error
	creates   int
}

func newStubAccountStore() *stubAccountStore {
	return &stubAccountStore{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountStore) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubAccountStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, a := range r.byID {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountStore) Create(_ context.Context, a *domain.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

type stubRoleStore struct {
	roles       map[string]*domain.Role // by id
	assignments map[string]string       // user id -> role id
	assignErr   error
	byIDCalls   int
}

func newStubRoleStore() *stubRoleStore {
	return &stubRoleStore{
		roles: map[string]*domain.Role{
			"role-user":  {ID: "role-user", Name: domain.RoleUser},
			"role-admin": {ID: "role-admin", Name: domain.RoleAdmin},
		},
		assignments: make(map[string]string),
	}
}

func (r *stubRoleStore) FindAssignment(_ context.Context, userID string) (*domain.RoleAssignment, error) {
	roleID, ok := r.assignments[userID]
	if !ok {
		return nil, domain.ErrRoleAssignmentMissing
	}
	return &domain.RoleAssignment{UserID: userID, RoleID: roleID}, nil
}

func (r *stubRoleStore) FindRoleByID(_ context.Context, roleID string) (*domain.Role, error) {
	r.byIDCalls++
	role, ok := r.roles[roleID]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoleStore) FindRoleByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleStore) Assign(_ context.Context, a domain.RoleAssignment) error {
	if r.assignErr != nil {
		return r.assignErr
	}
	r.assignments[a.UserID] = a.RoleID
	return nil
}

type stubRecorder struct {
	events []domain.AuthEvent
}

func (r *stubRecorder) Record(_ context.Context, e domain.AuthEvent) {
	r.events = append(r.events, e)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testKey = []byte("0123456789abcdef0123456789abcdef")

type authFixture struct {
	svc      *AuthService
	accounts *stubAccountStore
	roles    *stubRoleStore
	signer   *token.Signer
	audit    *stubRecorder
}

func newAuthFixture(t *testing.T, opts AuthOptions) *authFixture {
	t.Helper()
	signer, err := token.NewSigner(testKey, "")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	f := &authFixture{
		accounts: newStubAccountStore(),
		roles:    newStubRoleStore(),
		signer:   signer,
		audit:    &stubRecorder{},
	}
	resolver := NewRoleResolver(f.roles, nil, 0, zerolog.Nop())
	f.svc = NewAuthService(f.accounts, f.roles, resolver, signer, password.NewBcryptHasher(bcrypt.MinCost), f.audit, opts, zerolog.Nop())
	return f
}

func adaCommand() ports.RegisterCommand {
	return ports.RegisterCommand{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		DateOfBirth:     time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC),
		Country:         "UK",
		Email:           "ada@example.com",
		Password:        "abcd1234",
		ConfirmPassword: "abcd1234",
	}
}

func (f *authFixture) mustRegister(t *testing.T, cmd ports.RegisterCommand) *domain.Session {
	t.Helper()
	session, err := f.svc.Register(context.Background(), cmd)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return session
}

func (f *authFixture) mustParse(t *testing.T, raw string) *domain.TokenClaims {
	t.Helper()
	claims, err := f.signer.Parse(raw)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	return claims
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{TokenTTL: time.Hour})

	session := f.mustRegister(t, adaCommand())

	if session.Username != "Ada Lovelace" {
		t.Fatalf("unexpected username: %q", session.Username)
	}
	claims := f.mustParse(t, session.Token)
	if claims.Role != domain.RoleUser {
		t.Fatalf("expected role %s, got %s", domain.RoleUser, claims.Role)
	}
	if claims.Username != "Ada Lovelace" {
		t.Fatalf("unexpected username claim: %q", claims.Username)
	}

	stored, err := f.accounts.FindByID(context.Background(), claims.UserID)
	if err != nil {
		t.Fatalf("account not stored under token subject: %v", err)
	}
	if stored.PasswordHash == "abcd1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("abcd1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.Country != "UK" || stored.DateOfBirth.Year() != 1815 {
		t.Fatalf("profile fields not stored: %+v", stored)
	}
	if stored.CreatedAt.IsZero() || !stored.CreatedAt.Equal(stored.UpdatedAt) {
		t.Fatalf("expected audit timestamps, got %+v", stored)
	}
	if f.roles.assignments[stored.ID] != "role-user" {
		t.Fatalf("expected User role assignment, got %q", f.roles.assignments[stored.ID])
	}
	if remaining := time.Until(claims.ExpiresAt); remaining <= 0 || remaining > time.Hour {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	cmd := adaCommand()
	cmd.Email = "  Ada@Example.COM "
	f.mustRegister(t, cmd)

	if _, err := f.accounts.FindByEmail(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("expected lower-cased email to be stored: %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.mustRegister(t, adaCommand())

	cmd := adaCommand()
	cmd.FirstName = "Augusta"
	_, err := f.svc.Register(context.Background(), cmd)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if f.accounts.creates != 1 {
		t.Fatalf("expected no store mutation, got %d creates", f.accounts.creates)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.mustRegister(t, adaCommand())

	cmd := adaCommand()
	cmd.Email = "ada2@example.com"
	_, err := f.svc.Register(context.Background(), cmd)
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if f.accounts.creates != 1 {
		t.Fatalf("expected no store mutation, got %d creates", f.accounts.creates)
	}
}

func TestAuthService_Register_UniqueConstraintRace(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.accounts.createErr = domain.ErrDuplicateEmail

	_, err := f.svc.Register(context.Background(), adaCommand())
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if errors.Is(err, domain.ErrAccountCreationFailed) {
		t.Fatalf("duplicate must not be reported as creation failure")
	}
}

func TestAuthService_Register_CreateFails(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.accounts.createErr = errors.New("connection reset")

	_, err := f.svc.Register(context.Background(), adaCommand())
	if !errors.Is(err, domain.ErrAccountCreationFailed) {
		t.Fatalf("expected ErrAccountCreationFailed, got %v", err)
	}
}

func TestAuthService_Register_RoleAssignmentFails(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.roles.assignErr = errors.New("write conflict")

	session, err := f.svc.Register(context.Background(), adaCommand())
	if !errors.Is(err, domain.ErrAccountCreationFailed) {
		t.Fatalf("expected ErrAccountCreationFailed, got %v", err)
	}
	if session != nil {
		t.Fatalf("expected no session, got %+v", session)
	}
}

func TestAuthService_Register_DefaultRoleMissing(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	delete(f.roles.roles, "role-user")

	_, err := f.svc.Register(context.Background(), adaCommand())
	if !errors.Is(err, domain.ErrAccountCreationFailed) {
		t.Fatalf("expected ErrAccountCreationFailed, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	registered := f.mustRegister(t, adaCommand())
	userID := f.mustParse(t, registered.Token).UserID

	session, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ada@example.com", Password: "abcd1234"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Username != "Ada Lovelace" {
		t.Fatalf("unexpected username: %q", session.Username)
	}
	claims := f.mustParse(t, session.Token)
	if claims.UserID != userID || claims.Username != "Ada Lovelace" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_ResolvesAssignedRole(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	registered := f.mustRegister(t, adaCommand())
	userID := f.mustParse(t, registered.Token).UserID
	f.roles.assignments[userID] = "role-admin"

	session, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ada@example.com", Password: "abcd1234"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got := f.mustParse(t, session.Token).Role; got != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %s", domain.RoleAdmin, got)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.mustRegister(t, adaCommand())

	_, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ada@example.com", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_AccountNotFound(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.mustRegister(t, adaCommand())

	for _, pwd := range []string{"x", "abcd1234", ""} {
		_, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ghost@example.com", Password: pwd})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("password %q: expected ErrAccountNotFound, got %v", pwd, err)
		}
	}
}

func TestAuthService_Login_MaskUnknownAccount(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{MaskUnknownAccount: true})

	_, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ghost@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("masked error must not reveal account absence")
	}
}

func TestAuthService_Login_RoleAssignmentMissing(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	registered := f.mustRegister(t, adaCommand())
	delete(f.roles.assignments, f.mustParse(t, registered.Token).UserID)

	_, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ada@example.com", Password: "abcd1234"})
	if !errors.Is(err, domain.ErrRoleAssignmentMissing) {
		t.Fatalf("expected ErrRoleAssignmentMissing, got %v", err)
	}
}

func TestAuthService_Login_RoleNotFound(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	registered := f.mustRegister(t, adaCommand())
	f.roles.assignments[f.mustParse(t, registered.Token).UserID] = "role-deleted"

	_, err := f.svc.Login(context.Background(), ports.LoginQuery{Email: "ada@example.com", Password: "abcd1234"})
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestAuthService_Refresh_SameClaims(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	registered := f.mustRegister(t, adaCommand())
	userID := f.mustParse(t, registered.Token).UserID

	first, err := f.svc.Refresh(context.Background(), userID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	second, err := f.svc.Refresh(context.Background(), userID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if first.Token == second.Token {
		t.Fatalf("expected a fresh token per refresh")
	}
	a, b := f.mustParse(t, first.Token), f.mustParse(t, second.Token)
	if a.UserID != b.UserID || a.Username != b.Username || a.Role != b.Role {
		t.Fatalf("claims differ: %+v vs %+v", a, b)
	}
	if a.UserID != userID || a.Role != domain.RoleUser || first.Username != "Ada Lovelace" {
		t.Fatalf("unexpected claims: %+v", a)
	}
}

func TestAuthService_Refresh_AccountNotFound(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})

	_, err := f.svc.Refresh(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Audit trail
// ---------------------------------------------------------------------------

func TestAuthService_RecordsAuditEvents(t *testing.T) {
	f := newAuthFixture(t, AuthOptions{})
	f.mustRegister(t, adaCommand())
	_, _ = f.svc.Login(context.Background(), ports.LoginQuery{Email: "ada@example.com", Password: "wrong"})

	if len(f.audit.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(f.audit.events))
	}
	reg, login := f.audit.events[0], f.audit.events[1]
	if reg.Kind != domain.AuthEventRegister || reg.Outcome != "success" || reg.UserID == "" {
		t.Fatalf("unexpected register event: %+v", reg)
	}
	if login.Kind != domain.AuthEventLogin || login.Outcome != "invalid_credentials" || login.Email != "ada@example.com" {
		t.Fatalf("unexpected login event: %+v", login)
	}
}
