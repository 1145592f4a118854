package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travel-planner-api/internal/application/location"
	"github.com/travel-planner-api/internal/config"
	"github.com/travel-planner-api/internal/domain"
	jwtinfra "github.com/travel-planner-api/internal/infrastructure/jwt"
	"github.com/travel-planner-api/internal/infrastructure/localfs"
	"github.com/travel-planner-api/internal/infrastructure/memory"
	"github.com/travel-planner-api/internal/infrastructure/snapshot"
	"golang.org/x/crypto/bcrypt"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type stubGenerator struct {
	text string
	err  error

	mu      sync.Mutex
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.text, g.err
}

type captureMailer struct {
	mu    sync.Mutex
	to    string
	body  string
	sends int
}

func (m *captureMailer) SendEmail(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to, m.body = to, body
	m.sends++
	return nil
}

type testEnv struct {
	handler   http.Handler
	generator *stubGenerator
	tokens    *jwtinfra.Provider
}

type envOption func(*config.Config, *Deps)

func withJWT(p *jwtinfra.Provider) envOption {
	return func(_ *config.Config, d *Deps) { d.JWTProvider = p }
}

func withTrustProxy() envOption {
	return func(c *config.Config, _ *Deps) { c.TrustProxy = true }
}

func withMailer(m Mailer) envOption {
	return func(_ *config.Config, d *Deps) { d.Mailer = m }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		AllowedOrigins:          []string{"*"},
		PublicBaseURL:           "http://api.test",
		CodeTTL:                 10 * time.Minute,
		CodeTTLEnabled:          true,
		UploadMaxBytes:          1024,
		UploadAllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
	}
	gen := &stubGenerator{text: "Day 1: arrive"}
	deps := &Deps{
		CodeStore:    memory.NewCodeStore(),
		Snapshots:    snapshot.NewFileStore(filepath.Join(dir, "users.json")),
		Uploads:      localfs.NewStore(filepath.Join(dir, "uploads")),
		Generator:    gen,
		CodeHashCost: bcrypt.MinCost,
	}
	for _, opt := range opts {
		opt(cfg, deps)
	}
	env := &testEnv{handler: NewRouter(cfg, deps), generator: gen}
	if p, ok := deps.JWTProvider.(*jwtinfra.Provider); ok {
		env.tokens = p
	}
	return env
}

func newProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwtinfra.NewProviderFromKeys(key, &key.PublicKey, time.Hour)
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) signIn(t *testing.T, email, name string) map[string]interface{} {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": email, "name": name}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	code, _ := decodeBody(t, rec)["devCode"].(string)
	require.Len(t, code, 6)

	rec = e.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"email": email, "code": code}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Travel Itinerary Builder API is running", body["message"])
}

func TestSignIn_InlineCodeWithoutMailer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": "Ada@Example.com", "name": "Ada"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sent := decodeBody(t, rec)
	assert.Equal(t, true, sent["success"])
	code := sent["devCode"].(string)
	assert.NotEmpty(t, sent["mailError"])

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rec = env.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"email": "ada@example.com", "code": wrong}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid verification code", decodeBody(t, rec)["error"])

	// A mismatch keeps the code redeemable.
	rec = env.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"email": "ada@example.com", "code": code}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeBody(t, rec)["profile"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.Equal(t, "Ada", profile["name"])
	assert.Empty(t, profile["itineraries"])

	rec = env.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"email": "ada@example.com", "code": code}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No verification code found. Please request a new code.", decodeBody(t, rec)["error"])
}

func TestSignIn_TrimsPaddedEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": "  pad@example.com "}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	code := decodeBody(t, rec)["devCode"].(string)

	rec = env.do(t, http.MethodPost, "/api/auth/verify-code", map[string]string{"email": " pad@example.com\t", "code": code}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pad@example.com", decodeBody(t, rec)["profile"].(map[string]interface{})["email"])

	rec = env.do(t, http.MethodPost, "/api/user/save-itinerary", map[string]interface{}{"email": " pad@example.com ", "destination": "Rome"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/user/itineraries?email=%20pad@example.com%20", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody(t, rec)["itineraries"], 1)
}

func TestSignIn_MailDelivered(t *testing.T) {
	mailer := &captureMailer{}
	env := newTestEnv(t, withMailer(mailer))

	rec := env.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": "bo@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Verification code sent to your email", body["message"])
	_, hasCode := body["devCode"]
	assert.False(t, hasCode)
	assert.Equal(t, 1, mailer.sends)
	assert.Equal(t, "bo@example.com", mailer.to)
}

func TestSendCode_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/send-code", strings.NewReader("{"))
	out := httptest.NewRecorder()
	env.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
	assert.Equal(t, "invalid request body", decodeBody(t, out)["error"])
}

func TestSignIn_IssuesToken(t *testing.T) {
	env := newTestEnv(t, withJWT(newProvider(t)))

	body := env.signIn(t, "cy@example.com", "Cy")
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := env.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "cy@example.com", claims.Email)
}

func TestSaveItinerary_KeepsTwentyMostRecent(t *testing.T) {
	env := newTestEnv(t)
	const email = "dee@example.com"

	for i := 0; i < 21; i++ {
		rec := env.do(t, http.MethodPost, "/api/user/save-itinerary", map[string]interface{}{
			"email":       email,
			"destination": fmt.Sprintf("City %d", i),
			"days":        2,
		}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/api/user/itineraries?email="+email, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody(t, rec)["itineraries"].([]interface{})
	require.Len(t, items, domain.MaxItineraries)
	assert.Equal(t, "City 20", items[0].(map[string]interface{})["destination"])
	assert.Equal(t, "City 1", items[len(items)-1].(map[string]interface{})["destination"])

	first := items[0].(map[string]interface{})
	assert.Equal(t, "planned", first["status"])
	assert.NotEmpty(t, first["id"])
	assert.NotEmpty(t, first["createdAt"])
}

func TestDeleteItinerary(t *testing.T) {
	env := newTestEnv(t)
	const email = "eve@example.com"

	rec := env.do(t, http.MethodPost, "/api/user/save-itinerary", map[string]interface{}{
		"email": email, "id": "trip-1", "destination": "Kyoto",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/user/delete-itinerary", map[string]string{"email": email, "itineraryId": "missing"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Itinerary not found", decodeBody(t, rec)["error"])

	rec = env.do(t, http.MethodPost, "/api/user/delete-itinerary", map[string]string{"email": email, "itineraryId": "trip-1"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/user/itineraries?email="+email, nil, "")
	assert.Empty(t, decodeBody(t, rec)["itineraries"])
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/user/update-profile", map[string]string{"email": "fay@example.com", "name": "  Fay\n"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeBody(t, rec)["profile"].(map[string]interface{})
	assert.Equal(t, "Fay", profile["name"])

	rec = env.do(t, http.MethodPost, "/api/user/update-profile", map[string]string{"name": "Nobody"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartAvatar(t *testing.T, field, filename string, data []byte, email string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if email != "" {
		require.NoError(t, mw.WriteField("email", email))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/user/upload-avatar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadAvatar_StoresAndServes(t *testing.T) {
	env := newTestEnv(t)
	const email = "gus@example.com"

	body, ct := multipartAvatar(t, "avatar", "me.png", pngHeader, email)
	rec := env.upload(t, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeBody(t, rec)
	name := out["filename"].(string)
	assert.True(t, strings.HasSuffix(name, "_me.png"))
	assert.Equal(t, "http://api.test/static/uploads/"+name, out["avatar_url"])

	rec = env.do(t, http.MethodGet, "/static/uploads/"+name, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = env.do(t, http.MethodPost, "/api/user/update-profile", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody(t, rec)["profile"].(map[string]interface{})
	assert.Equal(t, out["avatar_url"], profile["avatar"])
}

func TestUploadAvatar_Rejections(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartAvatar(t, "", "", nil, "hal@example.com")
	rec := env.upload(t, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part in the request", decodeBody(t, rec)["error"])

	body, ct = multipartAvatar(t, "avatar", "notes.txt", []byte("hello"), "")
	rec = env.upload(t, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File type not allowed", decodeBody(t, rec)["error"])

	body, ct = multipartAvatar(t, "avatar", "big.png", bytes.Repeat([]byte{0}, 2048), "")
	rec = env.upload(t, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large", decodeBody(t, rec)["error"])

	// Larger than the multipart allowance, so the body reader itself stops it.
	body, ct = multipartAvatar(t, "avatar", "huge.png", bytes.Repeat([]byte{0}, 200<<10), "")
	rec = env.upload(t, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large", decodeBody(t, rec)["error"])

	body, ct = multipartAvatar(t, "avatar", "empty.png", nil, "")
	rec = env.upload(t, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file selected", decodeBody(t, rec)["error"])
}

func TestServeUpload_Missing(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/static/uploads/nope.png", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRoutes_TokenChecks(t *testing.T) {
	p := newProvider(t)
	env := newTestEnv(t, withJWT(p))

	token, err := p.Sign("ivy@example.com")
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/user/itineraries?email=ivy@example.com", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/user/itineraries?email=other@example.com", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/user/itineraries?email=ivy@example.com", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/user/itineraries?email=ivy@example.com", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateItinerary(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate-itinerary", map[string]interface{}{
		"destination": "Paris",
		"days":        4,
		"budget":      "luxury",
		"interests":   []string{"food", "art"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "Day 1: arrive", body["itinerary"])
	assert.Equal(t, "Paris", body["destination"])
	assert.EqualValues(t, 4, body["days"])
	assert.Equal(t, "luxury", body["budget"])
	assert.NotEmpty(t, body["image"])

	require.Len(t, env.generator.prompts, 1)
	assert.Contains(t, env.generator.prompts[0], "Paris")
	assert.Contains(t, env.generator.prompts[0], "food, art")
}

func TestGenerateItinerary_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate-itinerary", map[string]interface{}{"days": 3}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.generator.err = fmt.Errorf("%w: status 502", domain.ErrUpstream)
	rec = env.do(t, http.MethodPost, "/api/generate-itinerary", map[string]interface{}{"destination": "Oslo"}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Failed to generate itinerary", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestAskQuestion(t *testing.T) {
	env := newTestEnv(t)
	env.generator.text = "Take the metro."

	rec := env.do(t, http.MethodPost, "/api/ask-question", map[string]string{"question": "How do I get around?", "destination": "Paris"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Take the metro.", decodeBody(t, rec)["answer"])

	rec = env.do(t, http.MethodPost, "/api/ask-question", map[string]string{"destination": "Paris"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocationImage_FallsBackWithoutSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/get-location-image", map[string]string{"location": "Nowhere Special"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Nowhere Special", body["location"])
	assert.Equal(t, location.DefaultImage, body["image"])
}

func TestRateLimit_CodeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	limited := false
	for i := 0; i < 30; i++ {
		rec := env.do(t, http.MethodPost, "/api/auth/send-code", map[string]string{"email": "rl@example.com"}, "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

func sendCodesWithForwardedFor(t *testing.T, env *testEnv, n int) int {
	t.Helper()
	limited := 0
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/send-code", strings.NewReader(`{"email":"xff@example.com"}`))
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	env := newTestEnv(t)
	assert.Greater(t, sendCodesWithForwardedFor(t, env, 40), 0)
}

func TestRateLimit_TrustedProxyKeysOnForwardedFor(t *testing.T) {
	env := newTestEnv(t, withTrustProxy())
	assert.Equal(t, 0, sendCodesWithForwardedFor(t, env, 20))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-itinerary", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

