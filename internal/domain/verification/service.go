package verification

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/vetbook/vetbook/internal/platform/notification"
)

const (
	// CodeValidity is how long a verified code counts toward phone
	// verification. The comparison is strictly less-than.
	CodeValidity = 10 * time.Minute
	// ResendCooldown is the minimum gap between issued codes per phone.
	ResendCooldown = 60 * time.Second
	// AttemptWindow and MaxAttempts bound verify attempts: more than
	// MaxAttempts rows inside the window rejects further attempts.
	AttemptWindow = 10 * time.Minute
	MaxAttempts   = 5
	// PurgeAge is the retention horizon of the code log.
	PurgeAge = time.Hour
)

var (
	ErrPhoneInUse      = errors.New("phone number already in use")
	ErrCooldown        = errors.New("a code was requested too recently")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrInvalidPhone    = errors.New("invalid phone number")
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// PhoneDirectory answers whether a phone number already belongs to a
// registered user. Implemented by the identity repository.
type PhoneDirectory interface {
	PhoneInUse(ctx context.Context, phone string) (bool, error)
}

type Service struct {
	repo      Repository
	users     PhoneDirectory
	sms       notification.SMSSender
	templates *notification.TemplateEngine
	logger    zerolog.Logger
	now       func() time.Time
	randInt   func(n int) int
}

func NewService(repo Repository, users PhoneDirectory, sms notification.SMSSender, templates *notification.TemplateEngine, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		sms:       sms,
		templates: templates,
		logger:    logger,
		now:       time.Now,
		randInt:   rand.Intn,
	}
}

// GenerateCode issues a fresh 6-digit code for the phone and delivers it over
// SMS. With isRegistration set, a phone that already belongs to a user is
// rejected with ErrPhoneInUse.
func (s *Service) GenerateCode(ctx context.Context, phone string, isRegistration bool) error {
	if !phoneRe.MatchString(phone) {
		return ErrInvalidPhone
	}

	if isRegistration {
		inUse, err := s.users.PhoneInUse(ctx, phone)
		if err != nil {
			return fmt.Errorf("check phone ownership: %w", err)
		}
		if inUse {
			return ErrPhoneInUse
		}
	}

	latest, err := s.repo.Latest(ctx, phone)
	if err != nil && !errors.Is(err, ErrNoCode) {
		return fmt.Errorf("load latest code: %w", err)
	}
	if latest != nil && s.now().Sub(latest.CreatedAt) < ResendCooldown {
		return ErrCooldown
	}

	code := fmt.Sprintf("%06d", 100000+s.randInt(900000))
	row := &VerificationCode{
		Phone:     phone,
		Code:      code,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("persist code: %w", err)
	}

	_, body, err := s.templates.Render("verification-code", map[string]string{"code": code})
	if err != nil {
		return fmt.Errorf("render code message: %w", err)
	}
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		return fmt.Errorf("deliver code: %w", err)
	}

	return nil
}

// VerifyCode checks a submitted code against the log. A mismatch records a
// failed attempt and returns false without an error; rate-limit and ownership
// violations return errors.
func (s *Service) VerifyCode(ctx context.Context, phone, code string, isRegistration bool) (bool, error) {
	if !phoneRe.MatchString(phone) {
		return false, ErrInvalidPhone
	}

	if isRegistration {
		inUse, err := s.users.PhoneInUse(ctx, phone)
		if err != nil {
			return false, fmt.Errorf("check phone ownership: %w", err)
		}
		if inUse {
			return false, ErrPhoneInUse
		}
	}

	if _, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-PurgeAge)); err != nil {
		return false, fmt.Errorf("purge stale codes: %w", err)
	}

	attempts, err := s.repo.CountSince(ctx, phone, s.now().Add(-AttemptWindow))
	if err != nil {
		return false, fmt.Errorf("count attempts: %w", err)
	}
	if attempts > MaxAttempts {
		return false, ErrTooManyAttempts
	}

	match, err := s.repo.LatestMatching(ctx, phone, code)
	if errors.Is(err, ErrNoCode) {
		// Record the failed attempt so it counts toward the window. The
		// submitted code is stored verbatim, so resubmitting the same wrong
		// code later will match this row and verify.
		failed := &VerificationCode{Phone: phone, Code: code, CreatedAt: s.now()}
		if err := s.repo.Create(ctx, failed); err != nil {
			return false, fmt.Errorf("record failed attempt: %w", err)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up code: %w", err)
	}

	if err := s.repo.MarkVerified(ctx, match.ID.String()); err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}
	return true, nil
}

// IsPhoneVerified reports whether the phone holds a code verified within the
// validity window.
func (s *Service) IsPhoneVerified(ctx context.Context, phone string) (bool, error) {
	if _, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-PurgeAge)); err != nil {
		return false, fmt.Errorf("purge stale codes: %w", err)
	}

	v, err := s.repo.LatestVerified(ctx, phone)
	if errors.Is(err, ErrNoCode) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load verified code: %w", err)
	}

	return s.now().Sub(v.CreatedAt) < CodeValidity, nil
}

// CleanOldCodes drops every row past the retention horizon.
func (s *Service) CleanOldCodes(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-PurgeAge))
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("purged verification codes")
	}
	return n, nil
}

// RunPeriodicPurge sweeps the code log on the given interval until the
// context is cancelled. Errors are logged and the loop keeps going.
func (s *Service) RunPeriodicPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanOldCodes(ctx); err != nil {
				s.logger.Error().Err(err).Msg("periodic code purge failed")
			}
		}
	}
}
