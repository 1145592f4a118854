package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/travel-planner-api/internal/application/profile"
	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/randnum"
	"golang.org/x/crypto/bcrypt"
)

type codeStore interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	Consume(ctx context.Context, identifier string, check func(*domain.VerificationCode) error) error
}

type profileStore interface {
	Ensure(ctx context.Context, email string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error)
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type jwtSigner interface {
	Sign(email string) (string, error)
}

// SendCodeResult reports how a code reached the user. When mail delivery
// failed, DevCode carries the plain code so sign-in is not blocked.
type SendCodeResult struct {
	Delivered bool
	DevCode   string
	MailError string
}

type Service interface {
	Issue(ctx context.Context, identifier string) (string, error)
	Verify(ctx context.Context, identifier, code string) error
	SendCode(ctx context.Context, email, name string) (*SendCodeResult, error)
	VerifyCode(ctx context.Context, email, code, name string) (*domain.UserProfile, string, error)
}

type service struct {
	codes       codeStore
	profiles    profileStore
	mailer      mailer
	jwtProvider jwtSigner
	codeTTL     time.Duration
	hashCost    int
	now         func() time.Time
}

// ServiceDeps wires the auth service. Mailer and JWTProvider are optional;
// a zero CodeTTL issues codes that never expire.
type ServiceDeps struct {
	CodeStore   codeStore
	Profiles    profileStore
	Mailer      mailer
	JWTProvider jwtSigner
	CodeTTL     time.Duration
	HashCost    int
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:       deps.CodeStore,
		profiles:    deps.Profiles,
		mailer:      deps.Mailer,
		jwtProvider: deps.JWTProvider,
		codeTTL:     deps.CodeTTL,
		hashCost:    deps.HashCost,
		now:         deps.Now,
	}
	if s.hashCost == 0 {
		s.hashCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Issue creates a fresh code for identifier, replacing any earlier one.
func (s *service) Issue(ctx context.Context, identifier string) (string, error) {
	code, err := randnum.Code()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}
	now := s.now().UTC()
	v := &domain.VerificationCode{
		Identifier: identifier,
		CodeHash:   string(hash),
		IssuedAt:   now,
	}
	if s.codeTTL > 0 {
		v.ExpiresAt = now.Add(s.codeTTL)
	}
	if err := s.codes.Put(ctx, v); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Verify consumes the stored code if it matches. A mismatch leaves the code
// in place for another attempt.
func (s *service) Verify(ctx context.Context, identifier, code string) error {
	code = strings.TrimSpace(code)
	return s.codes.Consume(ctx, identifier, func(v *domain.VerificationCode) error {
		if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
			return domain.ErrCodeMismatch
		}
		return nil
	})
}

func (s *service) SendCode(ctx context.Context, email, name string) (*SendCodeResult, error) {
	email = profile.NormalizeEmail(email)
	code, err := s.Issue(ctx, email)
	if err != nil {
		return nil, err
	}

	if s.mailer == nil {
		slog.Warn("no mailer configured, returning code inline", "email", email)
		return &SendCodeResult{DevCode: code, MailError: "mail delivery not configured"}, nil
	}
	if err := s.mailer.SendEmail(ctx, email, "Your Travel Planner sign-in code", s.codeMessage(name, code)); err != nil {
		slog.Warn("verification mail failed, returning code inline", "email", email, "err", err)
		return &SendCodeResult{DevCode: code, MailError: err.Error()}, nil
	}
	slog.Info("verification code sent", "email", email)
	return &SendCodeResult{Delivered: true}, nil
}

// VerifyCode signs the user in: it consumes the code, makes sure a profile
// exists and, when a signer is configured, issues a session token.
func (s *service) VerifyCode(ctx context.Context, email, code, name string) (*domain.UserProfile, string, error) {
	email = profile.NormalizeEmail(email)
	if err := s.Verify(ctx, email, code); err != nil {
		return nil, "", err
	}

	p, err := s.profiles.Ensure(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if name = strings.TrimSpace(name); name != "" && p.Name == "" {
		if p, err = s.profiles.UpdateProfile(ctx, email, domain.ProfileUpdate{Name: &name}); err != nil {
			return nil, "", err
		}
	}

	if s.jwtProvider == nil {
		return p, "", nil
	}
	token, err := s.jwtProvider.Sign(email)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	return p, token, nil
}

func (s *service) codeMessage(name, code string) string {
	var b strings.Builder
	if name = strings.TrimSpace(name); name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", name)
	}
	fmt.Fprintf(&b, "Your Travel Planner verification code is: %s\n", code)
	if s.codeTTL > 0 {
		fmt.Fprintf(&b, "\nIt expires in %s.\n", humanDuration(s.codeTTL))
	}
	b.WriteString("\nIf you did not request this code, you can ignore this email.\n")
	return b.String()
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
