package handler

import (
	"net/http"

	"github.com/travel-planner-api/internal/application/planner"
	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/textnorm"
)

// PlannerHandler serves itinerary generation, questions and location images.
type PlannerHandler struct {
	svc planner.Service
}

func NewPlannerHandler(svc planner.Service) *PlannerHandler { return &PlannerHandler{svc: svc} }

func (h *PlannerHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateItineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "Failed to generate itinerary")
		return
	}
	req.Destination = textnorm.CleanSingleLine(req.Destination)
	req.Budget = textnorm.CleanSingleLine(req.Budget)
	if err := validateRequest(req); err != nil {
		writeServiceError(w, err, "Failed to generate itinerary")
		return
	}

	out, err := h.svc.GenerateItinerary(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to generate itinerary")
		return
	}
	writeJSON(w, http.StatusOK, ItineraryEnvelope{
		Success:     true,
		Itinerary:   out.Text,
		Destination: out.Destination,
		Days:        out.Days,
		Budget:      out.Budget,
		Image:       out.Image,
	})
}

func (h *PlannerHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req domain.AskQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "Failed to answer question")
		return
	}
	req.Destination = textnorm.CleanSingleLine(req.Destination)
	if err := validateRequest(req); err != nil {
		writeServiceError(w, err, "Failed to answer question")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question, req.Destination)
	if err != nil {
		writeServiceError(w, err, "Failed to answer question")
		return
	}
	writeJSON(w, http.StatusOK, AnswerEnvelope{Success: true, Answer: answer})
}

func (h *PlannerHandler) LocationImage(w http.ResponseWriter, r *http.Request) {
	var req domain.LocationImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, "Failed to fetch location image")
		return
	}
	req.Location = textnorm.CleanSingleLine(req.Location)
	if err := validateRequest(req); err != nil {
		writeServiceError(w, err, "Failed to fetch location image")
		return
	}
	writeJSON(w, http.StatusOK, LocationImageEnvelope{
		Success:  true,
		Location: req.Location,
		Image:    h.svc.ResolveImage(r.Context(), req.Location),
	})
}
