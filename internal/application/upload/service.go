package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/randnum"
	"github.com/travel-planner-api/internal/pkg/textnorm"
)

// sniffLen is how much of the body is inspected to detect its content type.
const sniffLen = 3072

const publicPath = "/static/uploads/"

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type avatarUpdater interface {
	UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error)
}

type UploadInput struct {
	Reader   io.Reader
	Filename string
	Size     int64
	Email    string // optional; when set the profile avatar points at the upload
}

type Result struct {
	Name string
	URL  string
}

type Service interface {
	Save(ctx context.Context, input UploadInput) (*Result, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

type service struct {
	store         objectStore
	profiles      avatarUpdater
	allowed       []string
	maxBytes      int64
	publicBaseURL string
}

type ServiceDeps struct {
	Store             objectStore
	Profiles          avatarUpdater
	AllowedExtensions []string
	MaxBytes          int64
	PublicBaseURL     string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:         deps.Store,
		profiles:      deps.Profiles,
		allowed:       deps.AllowedExtensions,
		maxBytes:      deps.MaxBytes,
		publicBaseURL: strings.TrimRight(deps.PublicBaseURL, "/"),
	}
}

// Validate applies the upload policy and returns the name the file will be
// stored under.
func Validate(filename string, size int64, allowed []string, maxBytes int64) (string, error) {
	if strings.TrimSpace(filename) == "" || size == 0 {
		return "", domain.ErrEmptyFile
	}
	ext := extension(filename)
	if ext == "" || !slices.Contains(allowed, ext) {
		return "", fmt.Errorf("%w: allowed types are %s", domain.ErrUnsupportedType, strings.Join(allowed, ", "))
	}
	if maxBytes > 0 && size > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", domain.ErrTooLarge, maxBytes)
	}
	prefix, err := randnum.Digits(16)
	if err != nil {
		return "", err
	}
	return prefix + "_" + sanitizeFilename(filename), nil
}

func (s *service) Save(ctx context.Context, input UploadInput) (*Result, error) {
	name, err := Validate(input.Filename, input.Size, s.allowed, s.maxBytes)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(input.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()
	body, err := rewind(input.Reader, head)
	if err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if _, err := s.store.Upload(ctx, name, body, contentType); err != nil {
		slog.Error("store upload", "name", name, "err", err)
		return nil, fmt.Errorf("store upload: %w: %w", domain.ErrPersistence, err)
	}
	res := &Result{Name: name, URL: s.publicBaseURL + publicPath + name}
	slog.Info("upload stored", "name", name, "content_type", contentType)

	if input.Email != "" {
		if _, err := s.profiles.UpdateProfile(ctx, input.Email, domain.ProfileUpdate{Avatar: &res.URL}); err != nil {
			if derr := s.store.Delete(ctx, name); derr != nil {
				slog.Error("remove orphaned upload", "name", name, "err", derr)
			}
			return nil, err
		}
	}
	return res, nil
}

// rewind returns a reader over the whole upload after head was consumed from
// r. Seekable inputs are rewound and passed on as-is so object stores can
// size the body; anything else is re-chained behind head.
func rewind(r io.Reader, head []byte) (io.Reader, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return rs, nil
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

// Open streams a stored upload together with its content type.
func (s *service) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, "", fmt.Errorf("upload %q: %w", name, domain.ErrNotFound)
	}
	rc, err := s.store.Download(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return rc, contentTypeFromName(name), nil
}

// sanitizeFilename drops directories, folds accents and replaces anything
// outside [A-Za-z0-9._-] with '_'.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = textnorm.FoldAccents(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := strings.TrimLeft(b.String(), "."); result != "" {
		return result
	}
	return "_"
}

func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func contentTypeFromName(name string) string {
	if t := mime.TypeByExtension("." + extension(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
