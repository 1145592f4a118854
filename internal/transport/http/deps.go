package http

import (
	"context"
	"io"

	"github.com/travel-planner-api/internal/domain"
	jwtinfra "github.com/travel-planner-api/internal/infrastructure/jwt"
)

// CodeStore is the minimal interface the router requires from a verification code store.
type CodeStore interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	// Consume deletes the code only when check returns nil, atomically with the check.
	Consume(ctx context.Context, identifier string, check func(*domain.VerificationCode) error) error
}

// SnapshotStore is the minimal interface the router requires from a profile snapshot backend.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Generator produces text completions.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Mailer delivers verification emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	Sign(email string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}
