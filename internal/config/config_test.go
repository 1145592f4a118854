package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("TRUST_PROXY", "")
	cfg := Load()
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, int64(2*1024*1024), cfg.UploadMaxBytes)
	assert.Equal(t, 10*time.Minute, cfg.CodeTTL)
	assert.True(t, cfg.CodeTTLEnabled)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif", "webp"}, cfg.UploadAllowedExtensions)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("CODE_TTL_ENABLED", "false")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("GENERATION_TIMEOUT", "12s")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", " .PNG, pdf ,,")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com/")

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.False(t, cfg.CodeTTLEnabled)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, 12*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, []string{"png", "pdf"}, cfg.UploadAllowedExtensions)
	assert.Equal(t, "https://api.example.com", cfg.PublicBaseURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("MAIL_TIMEOUT", "soon")
	cfg := Load()
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.Equal(t, 10*time.Second, cfg.MailTimeout)
}
