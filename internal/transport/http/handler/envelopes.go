package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/travel-planner-api/internal/application/profile"
	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/validate"
	"github.com/travel-planner-api/internal/transport/http/middleware"
)

// maxJSONBody caps every JSON request body.
const maxJSONBody = 1 << 20

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageEnvelope is the generic success wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type HealthEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ItineraryEnvelope struct {
	Success     bool   `json:"success"`
	Itinerary   string `json:"itinerary"`
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Budget      string `json:"budget"`
	Image       string `json:"image"`
}

type AnswerEnvelope struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
}

type LocationImageEnvelope struct {
	Success  bool   `json:"success"`
	Location string `json:"location"`
	Image    string `json:"image"`
}

// SendCodeEnvelope carries DevCode only when mail delivery failed.
type SendCodeEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	DevCode   string `json:"devCode,omitempty"`
	MailError string `json:"mailError,omitempty"`
}

type ProfileEnvelope struct {
	Success bool                `json:"success"`
	Profile *domain.UserProfile `json:"profile"`
	Token   string              `json:"token,omitempty"`
}

type SavedItineraryEnvelope struct {
	Success   bool              `json:"success"`
	Itinerary *domain.Itinerary `json:"itinerary"`
}

type ItineraryListEnvelope struct {
	Success     bool               `json:"success"`
	Itineraries []domain.Itinerary `json:"itineraries"`
}

type AvatarEnvelope struct {
	Success   bool   `json:"success"`
	AvatarURL string `json:"avatar_url"`
	Filename  string `json:"filename"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}

// writeServiceError maps err onto a status code. fallback names the failed
// operation and is used for 404s and 5xx, where the cause goes in details.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	switch {
	case status >= http.StatusInternalServerError:
		writeJSON(w, status, ErrorEnvelope{Error: fallback, Details: err.Error()})
	case status == http.StatusNotFound:
		writeError(w, status, fallback)
	default:
		writeJSON(w, status, ErrorEnvelope{Error: publicMessage(err), Details: detailsFor(err)})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUploadPolicy), errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPersistence), errors.Is(err, domain.ErrUpstream):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "No verification code found. Please request a new code."
	case errors.Is(err, domain.ErrCodeMismatch):
		return "Invalid verification code"
	case errors.Is(err, domain.ErrEmptyFile):
		return "No file selected"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "File type not allowed"
	case errors.Is(err, domain.ErrTooLarge):
		return "File too large"
	case errors.Is(err, domain.ErrForbidden):
		return "Token does not belong to this account"
	}
	return err.Error()
}

func detailsFor(err error) string {
	if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrTooLarge) {
		return err.Error()
	}
	return ""
}

// requestError is a client mistake whose message is safe to echo back.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return domain.ErrBadRequest }

// decodeJSON reads a size-capped JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &requestError{msg: "invalid request body"}
	}
	return nil
}

// validateRequest runs struct validation, reporting failures as bad requests.
func validateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return &requestError{msg: err.Error()}
	}
	return nil
}

// authorizeEmail rejects a request whose session token belongs to a different
// account than email. Requests without a token are allowed.
func authorizeEmail(r *http.Request, email string) error {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}
	if profile.NormalizeEmail(claims.Email) != profile.NormalizeEmail(email) {
		return domain.ErrForbidden
	}
	return nil
}
