package handler

import (
	"errors"
	"net/http"

	"github.com/travel-planner-api/internal/application/profile"
	"github.com/travel-planner-api/internal/application/upload"
	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/textnorm"
)

// multipartOverhead leaves room for the form fields and part headers around
// the avatar itself.
const multipartOverhead = 64 << 10

// UserHandler handles profile, saved itinerary and avatar endpoints.
type UserHandler struct {
	profiles profile.Service
	uploads  upload.Service
	maxBytes int64
}

func NewUserHandler(profiles profile.Service, uploads upload.Service, maxUploadBytes int64) *UserHandler {
	return &UserHandler{profiles: profiles, uploads: uploads, maxBytes: maxUploadBytes}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "Failed to update profile")
		return
	}
	req.Email = textnorm.CleanSingleLine(req.Email)
	if req.Name != nil {
		name := textnorm.CleanSingleLine(*req.Name)
		req.Name = &name
	}
	if err := h.check(r, req, req.Email); err != nil {
		writeServiceError(w, err, "Failed to update profile")
		return
	}

	p, err := h.profiles.UpdateProfile(r.Context(), req.Email, domain.ProfileUpdate{Name: req.Name, Avatar: req.Avatar})
	if err != nil {
		writeServiceError(w, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Success: true, Profile: p})
}

func (h *UserHandler) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveItineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "Failed to save itinerary")
		return
	}
	req.Email = textnorm.CleanSingleLine(req.Email)
	if err := h.check(r, req, req.Email); err != nil {
		writeServiceError(w, err, "Failed to save itinerary")
		return
	}

	it, err := h.profiles.AddItem(r.Context(), req.Email, req.ToItinerary())
	if err != nil {
		writeServiceError(w, err, "Failed to save itinerary")
		return
	}
	writeJSON(w, http.StatusOK, SavedItineraryEnvelope{Success: true, Itinerary: it})
}

func (h *UserHandler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: textnorm.CleanSingleLine(r.URL.Query().Get("email"))}
	if err := h.check(r, req, req.Email); err != nil {
		writeServiceError(w, err, "Failed to load itineraries")
		return
	}

	items, err := h.profiles.ListItems(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err, "Failed to load itineraries")
		return
	}
	writeJSON(w, http.StatusOK, ItineraryListEnvelope{Success: true, Itineraries: items})
}

func (h *UserHandler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	var req domain.DeleteItineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "Itinerary not found")
		return
	}
	req.Email = textnorm.CleanSingleLine(req.Email)
	if err := h.check(r, req, req.Email); err != nil {
		writeServiceError(w, err, "Itinerary not found")
		return
	}

	if err := h.profiles.DeleteItem(r.Context(), req.Email, req.ItineraryID); err != nil {
		writeServiceError(w, err, "Itinerary not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Itinerary deleted"})
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeServiceError(w, domain.ErrTooLarge, "Failed to upload avatar")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part in the request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part in the request")
		return
	}
	defer file.Close()

	email := textnorm.CleanSingleLine(r.FormValue("email"))
	if email != "" {
		req := struct {
			Email string `json:"email" validate:"email"`
		}{Email: email}
		if err := h.check(r, req, email); err != nil {
			writeServiceError(w, err, "Failed to upload avatar")
			return
		}
	}

	res, err := h.uploads.Save(r.Context(), upload.UploadInput{
		Reader:   file,
		Filename: header.Filename,
		Size:     header.Size,
		Email:    email,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to upload avatar")
		return
	}
	writeJSON(w, http.StatusOK, AvatarEnvelope{Success: true, AvatarURL: res.URL, Filename: res.Name})
}

// check validates req and makes sure any session token matches email.
func (h *UserHandler) check(r *http.Request, req interface{}, email string) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return authorizeEmail(r, email)
}
