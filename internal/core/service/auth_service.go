package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
	"github.com/pskiad17/FinancialOrganizer/internal/core/ports"
	"github.com/pskiad17/FinancialOrganizer/internal/pkg/metrics"
)

const defaultTokenTTL = 24 * time.Hour

// AuthOptions tunes AuthService behaviour.
type AuthOptions struct {
	TokenTTL time.Duration
	// MaskUnknownAccount reports an unknown login email as
	// domain.ErrInvalidCredentials instead of domain.ErrAccountNotFound, so
	// Login does not reveal which emails are registered.
	MaskUnknownAccount bool
}

// AuthService implements login, registration and token refresh.
type AuthService struct {
	accounts ports.CredentialStore
	roles    ports.RoleStore
	resolver ports.RoleResolver
	signer   ports.TokenSigner
	hasher   ports.PasswordHasher
	audit    ports.AuthEventRecorder
	opts     AuthOptions
	now      func() time.Time
	log      zerolog.Logger
}

// NewAuthService wires an AuthService. audit may be nil.
func NewAuthService(
	accounts ports.CredentialStore,
	roles ports.RoleStore,
	resolver ports.RoleResolver,
	signer ports.TokenSigner,
	hasher ports.PasswordHasher,
	audit ports.AuthEventRecorder,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	return &AuthService{
		accounts: accounts,
		roles:    roles,
		resolver: resolver,
		signer:   signer,
		hasher:   hasher,
		audit:    audit,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Login verifies the credentials of an account and issues a token for it.
func (s *AuthService) Login(ctx context.Context, query ports.LoginQuery) (*domain.Session, error) {
	email := normalizeEmail(query.Email)
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) && s.opts.MaskUnknownAccount {
			err = domain.ErrInvalidCredentials
		}
		return nil, s.fail(ctx, domain.AuthEventLogin, "", email, fmt.Errorf("login: %w", err))
	}

	role, err := s.resolver.ResolveRole(ctx, account.ID)
	if err != nil {
		return nil, s.fail(ctx, domain.AuthEventLogin, account.ID, email, fmt.Errorf("login: %w", err))
	}

	if !s.hasher.Verify(account.PasswordHash, query.Password) {
		return nil, s.fail(ctx, domain.AuthEventLogin, account.ID, email, domain.ErrInvalidCredentials)
	}

	return s.issue(ctx, domain.AuthEventLogin, account, role)
}

// Register creates an account with the default role and issues a token for it.
func (s *AuthService) Register(ctx context.Context, cmd ports.RegisterCommand) (*domain.Session, error) {
	email := normalizeEmail(cmd.Email)

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(ctx, domain.AuthEventRegister, "", email, fmt.Errorf("register: check email: %w", err))
	}
	if exists {
		return nil, s.fail(ctx, domain.AuthEventRegister, "", email, domain.ErrDuplicateEmail)
	}

	username := domain.UsernameFor(cmd.FirstName, cmd.LastName)
	exists, err = s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, s.fail(ctx, domain.AuthEventRegister, "", email, fmt.Errorf("register: check username: %w", err))
	}
	if exists {
		return nil, s.fail(ctx, domain.AuthEventRegister, "", email, domain.ErrDuplicateUsername)
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, s.fail(ctx, domain.AuthEventRegister, "", email, fmt.Errorf("register: hash password: %w", err))
	}

	now := s.now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		DateOfBirth:  cmd.DateOfBirth,
		Country:      strings.TrimSpace(cmd.Country),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The existence checks above race with concurrent registrations; the
	// store's unique constraints are authoritative.
	if err := s.accounts.Create(ctx, account); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) && !errors.Is(err, domain.ErrDuplicateUsername) {
			err = fmt.Errorf("%w: %w", domain.ErrAccountCreationFailed, err)
		}
		return nil, s.fail(ctx, domain.AuthEventRegister, "", email, fmt.Errorf("register: %w", err))
	}

	if err := s.assignDefaultRole(ctx, account.ID); err != nil {
		s.log.Error().Err(err).
			Str("user_id", account.ID).
			Str("role", domain.DefaultRole).
			Msg("account created without role assignment")
		return nil, s.fail(ctx, domain.AuthEventRegister, account.ID, email,
			fmt.Errorf("register: %w: %w", domain.ErrAccountCreationFailed, err))
	}

	s.log.Info().Str("user_id", account.ID).Str("username", username).Msg("account registered")
	return s.issue(ctx, domain.AuthEventRegister, account, domain.DefaultRole)
}

// Refresh issues a new token for an already authenticated user id.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*domain.Session, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, domain.AuthEventRefresh, userID, "", fmt.Errorf("refresh: %w", err))
	}

	role, err := s.resolver.ResolveRole(ctx, account.ID)
	if err != nil {
		return nil, s.fail(ctx, domain.AuthEventRefresh, account.ID, account.Email, fmt.Errorf("refresh: %w", err))
	}

	return s.issue(ctx, domain.AuthEventRefresh, account, role)
}

func (s *AuthService) assignDefaultRole(ctx context.Context, userID string) error {
	role, err := s.roles.FindRoleByName(ctx, domain.DefaultRole)
	if err != nil {
		return fmt.Errorf("find role %q: %w", domain.DefaultRole, err)
	}
	if err := s.roles.Assign(ctx, domain.RoleAssignment{UserID: userID, RoleID: role.ID}); err != nil {
		return fmt.Errorf("assign role %q: %w", domain.DefaultRole, err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, kind domain.AuthEventKind, account *domain.Account, role string) (*domain.Session, error) {
	claims := domain.TokenClaims{
		UserID:   account.ID,
		Username: account.Username,
		Role:     role,
	}
	token, err := s.signer.Issue(claims, s.now().Add(s.opts.TokenTTL))
	if err != nil {
		return nil, s.fail(ctx, kind, account.ID, account.Email, fmt.Errorf("%s: sign token: %w", kind, err))
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(kind)).Inc()
	s.record(ctx, kind, account.ID, account.Email, nil)

	return &domain.Session{Username: account.Username, Token: token}, nil
}

// fail records the failed operation and returns err unchanged.
func (s *AuthService) fail(ctx context.Context, kind domain.AuthEventKind, userID, email string, err error) error {
	s.record(ctx, kind, userID, email, err)
	return err
}

func (s *AuthService) record(ctx context.Context, kind domain.AuthEventKind, userID, email string, err error) {
	outcome := domain.ErrorKind(err)
	metrics.OperationsTotal.WithLabelValues(string(kind), outcome).Inc()

	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, domain.AuthEvent{
		Kind:       kind,
		UserID:     userID,
		Email:      email,
		Outcome:    outcome,
		OccurredAt: s.now(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
