// Package auth implements the identity provider: account creation,
// classified sign-in, session revocation and the mail-delivered token
// flows (verification, password reset). The rest of the application
// consumes it through the Provider interface and never touches identity
// storage directly.
package auth

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/queue"
	"github.com/nanaacademy/academy-server/internal/repository"
	"github.com/nanaacademy/academy-server/internal/utils"
)

// Provider is the identity-provider surface consumed by the session
// controller and the provisioning service.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (model.Identity, error)
	SignIn(ctx context.Context, email, password string) (model.Identity, error)
	SignOut(ctx context.Context, uid string) error
	SendVerificationEmail(ctx context.Context, id model.Identity) error
	SendPasswordReset(ctx context.Context, email string) error
}

// MailPublisher publishes outbound mail events to the broker.
type MailPublisher interface {
	PublishMailRequested(ctx context.Context, ev queue.MailRequestedEvent) error
}

// Sign-in rate limiting and token lifetimes.
const (
	maxSignInAttempts = 5
	attemptWindow     = 15 * time.Minute
	resetTokenTTL     = time.Hour
	verifyTokenTTL    = 24 * time.Hour
)

// Service is the database-backed Provider. Redis is optional: when nil,
// sign-in attempt limiting is disabled.
type Service struct {
	Identities *repository.IdentityRepo
	Sessions   *repository.SessionRepo
	Tokens     *repository.AuthTokenRepo
	Mail       MailPublisher
	Redis      *redis.Client
	BcryptCost int
	BaseURL    string // frontend base URL for links in outbound mail
}

func NewService(ids *repository.IdentityRepo, sessions *repository.SessionRepo, tokens *repository.AuthTokenRepo, mail MailPublisher, rdb *redis.Client, bcryptCost int, baseURL string) *Service {
	return &Service{
		Identities: ids,
		Sessions:   sessions,
		Tokens:     tokens,
		Mail:       mail,
		Redis:      rdb,
		BcryptCost: bcryptCost,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CreateAccount registers a new identity with an unverified email.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (model.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.Identity{}, ErrInvalidEmail
	}
	hash, err := hashPassword(password, s.BcryptCost)
	if err != nil {
		return model.Identity{}, err
	}
	now := time.Now().UTC()
	id := model.Identity{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Identities.Create(ctx, id); err != nil {
		if err == repository.ErrEmailExists {
			return model.Identity{}, ErrEmailExists
		}
		return model.Identity{}, err
	}
	return id, nil
}

// SignIn verifies credentials and returns the identity. Failures are
// classified so the login form can show a precise message. When Redis is
// available, repeated failures per email are counted in a fixed window
// and excess attempts are rejected before touching the database.
func (s *Service) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.Identity{}, ErrInvalidEmail
	}
	if s.tooManyAttempts(ctx, email) {
		return model.Identity{}, ErrTooManyRequests
	}

	id, err := s.Identities.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			s.recordFailure(ctx, email)
			return model.Identity{}, ErrUserNotFound
		}
		return model.Identity{}, err
	}
	if id.Disabled {
		return model.Identity{}, ErrDisabled
	}
	if !verifyPassword(id.PasswordHash, password) {
		s.recordFailure(ctx, email)
		return model.Identity{}, ErrWrongPassword
	}
	s.clearFailures(ctx, email)
	return id, nil
}

// SignOut revokes every active session for the identity. The login flow
// also calls this mid-sign-in to undo a half-authenticated state when the
// role lookup comes back absent or mismatched.
func (s *Service) SignOut(ctx context.Context, uid string) error {
	return s.Sessions.RevokeAllForUID(ctx, uid)
}

// SendVerificationEmail issues a one-time verification token and queues
// the verification message.
func (s *Service) SendVerificationEmail(ctx context.Context, id model.Identity) error {
	tok, err := utils.NewResetToken(verifyTokenTTL)
	if err != nil {
		return err
	}
	if err := s.Tokens.Store(ctx, id.UID, repository.TokenPurposeVerify, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
		return err
	}
	return s.Mail.PublishMailRequested(ctx, queue.MailRequestedEvent{
		Kind:        queue.MailKindVerification,
		To:          id.Email,
		Link:        fmt.Sprintf("%s/verify-email?token=%s", s.BaseURL, tok.Raw),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendPasswordReset issues a one-time reset token for the account with
// this email and queues the reset message. Classified errors mirror the
// sign-in taxonomy so the reset form reuses the same messages.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}
	if s.tooManyAttempts(ctx, email) {
		return ErrTooManyRequests
	}
	id, err := s.Identities.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrUserNotFound
		}
		return err
	}
	tok, err := utils.NewResetToken(resetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.Tokens.Store(ctx, id.UID, repository.TokenPurposeReset, utils.HashTokenRaw(tok.Raw), tok.Exp); err != nil {
		return err
	}
	return s.Mail.PublishMailRequested(ctx, queue.MailRequestedEvent{
		Kind:        queue.MailKindPasswordReset,
		To:          id.Email,
		Link:        fmt.Sprintf("%s/reset-password?token=%s", s.BaseURL, tok.Raw),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ConfirmPasswordReset consumes a reset token and replaces the account
// password. All token failures surface as repository.ErrNotFound.
func (s *Service) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error {
	uid, err := s.Tokens.Consume(ctx, repository.TokenPurposeReset, utils.HashTokenRaw(rawToken))
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Identities.SetPassword(ctx, uid, hash); err != nil {
		return err
	}
	// A successful reset also ends existing sessions.
	return s.Sessions.RevokeAllForUID(ctx, uid)
}

// ConfirmEmail consumes a verification token and marks the address
// verified.
func (s *Service) ConfirmEmail(ctx context.Context, rawToken string) error {
	uid, err := s.Tokens.Consume(ctx, repository.TokenPurposeVerify, utils.HashTokenRaw(rawToken))
	if err != nil {
		return err
	}
	return s.Identities.MarkEmailVerified(ctx, uid)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

func attemptsKey(email string) string { return "auth:attempts:" + email }

// tooManyAttempts reports whether the email has exceeded the failure
// budget in the current window. Disabled when Redis is absent.
func (s *Service) tooManyAttempts(ctx context.Context, email string) bool {
	if s.Redis == nil {
		return false
	}
	n, err := s.Redis.Get(ctx, attemptsKey(email)).Int()
	if err != nil {
		return false
	}
	return n >= maxSignInAttempts
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.Redis == nil {
		return
	}
	key := attemptsKey(email)
	n, err := s.Redis.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("auth: attempt counter incr failed: %v", err)
		return
	}
	if n == 1 {
		if err := s.Redis.Expire(ctx, key, attemptWindow).Err(); err != nil {
			log.Printf("auth: attempt counter expire failed: %v", err)
		}
	}
}

func (s *Service) clearFailures(ctx context.Context, email string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, attemptsKey(email)).Err(); err != nil {
		log.Printf("auth: attempt counter clear failed: %v", err)
	}
}
