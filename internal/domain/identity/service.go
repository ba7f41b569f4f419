package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vetbook/vetbook/internal/platform/auth"
)

var (
	ErrPhoneNotVerified   = errors.New("phone number is not verified")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrValidation         = errors.New("validation failed")
)

const minPasswordLen = 8

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// PhoneVerifier reports whether a phone passed code verification recently.
// Implemented by the verification service.
type PhoneVerifier interface {
	IsPhoneVerified(ctx context.Context, phone string) (bool, error)
}

// TxRunner runs fn inside a single database transaction; repository calls
// made with the context handed to fn join it. Satisfied by closing over
// db.WithTx. A nil runner degrades to calling fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	verifier PhoneVerifier
	tokens   *auth.TokenIssuer
	tx       TxRunner
}

func NewService(repo Repository, verifier PhoneVerifier, tokens *auth.TokenIssuer, tx TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, verifier: verifier, tokens: tokens, tx: tx}
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (in *RegisterInput) validate() error {
	if !phoneRe.MatchString(in.Phone) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// Register creates an account for a phone that passed code verification.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	verified, err := s.verifier.IsPhoneVerified(ctx, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("check phone verification: %w", err)
	}
	if !verified {
		return nil, ErrPhoneNotVerified
	}

	// Hash outside the transaction; bcrypt is slow.
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Phone:        in.Phone,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if e := strings.TrimSpace(in.Email); e != "" {
		u.Email = &e
	}

	// Check and insert run in one transaction. The unique index on phone is
	// still authoritative; the PhoneInUse check only produces the friendlier
	// error earlier.
	err = s.tx(ctx, func(ctx context.Context) error {
		inUse, err := s.repo.PhoneInUse(ctx, in.Phone)
		if err != nil {
			return fmt.Errorf("check phone: %w", err)
		}
		if inUse {
			return ErrPhoneTaken
		}
		return s.repo.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and returns a session token with the user.
func (s *Service) Login(ctx context.Context, phone, password string) (string, *User, error) {
	u, err := s.repo.GetByPhone(ctx, phone)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID.String(), u.Phone)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UserExists reports whether a user id is known. Used by the booking service.
func (s *Service) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
