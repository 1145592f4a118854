package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/travel-planner-api/internal/domain"
)

const (
	itineraryMaxTokens = 2000
	questionMaxTokens  = 1000

	defaultDays      = 3
	defaultBudget    = "moderate"
	defaultInterests = "General sightseeing"
	defaultNotes     = "None"
)

type generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type imageResolver interface {
	Resolve(ctx context.Context, name string) string
}

// Itinerary is a generated plan plus the request values it was built from,
// after defaults.
type Itinerary struct {
	Text        string
	Destination string
	Days        int
	Budget      string
	Image       string
}

type Service interface {
	GenerateItinerary(ctx context.Context, req domain.GenerateItineraryRequest) (*Itinerary, error)
	Ask(ctx context.Context, question, destination string) (string, error)
	ResolveImage(ctx context.Context, location string) string
}

type service struct {
	generator generator
	images    imageResolver
}

type ServiceDeps struct {
	Generator generator
	Images    imageResolver
}

func NewService(deps ServiceDeps) Service {
	return &service{generator: deps.Generator, images: deps.Images}
}

func (s *service) GenerateItinerary(ctx context.Context, req domain.GenerateItineraryRequest) (*Itinerary, error) {
	days := req.Days
	if days <= 0 {
		days = defaultDays
	}
	budget := strings.TrimSpace(req.Budget)
	if budget == "" {
		budget = defaultBudget
	}

	text, err := s.generator.Generate(ctx, ItineraryPrompt(req.Destination, days, budget, req.Interests, notes(req)), itineraryMaxTokens)
	if err != nil {
		slog.Error("itinerary generation failed", "destination", req.Destination, "err", err)
		return nil, fmt.Errorf("generate itinerary: %w", err)
	}
	return &Itinerary{
		Text:        text,
		Destination: req.Destination,
		Days:        days,
		Budget:      budget,
		Image:       s.images.Resolve(ctx, req.Destination),
	}, nil
}

func (s *service) Ask(ctx context.Context, question, destination string) (string, error) {
	answer, err := s.generator.Generate(ctx, QuestionPrompt(question, destination), questionMaxTokens)
	if err != nil {
		slog.Error("question answering failed", "destination", destination, "err", err)
		return "", fmt.Errorf("answer question: %w", err)
	}
	return answer, nil
}

func (s *service) ResolveImage(ctx context.Context, location string) string {
	return s.images.Resolve(ctx, location)
}

// notes prefers additionalNotes, which newer clients send, over notes.
func notes(req domain.GenerateItineraryRequest) string {
	if n := strings.TrimSpace(req.AdditionalNotes); n != "" {
		return n
	}
	return strings.TrimSpace(req.Notes)
}

func ItineraryPrompt(destination string, days int, budget string, interests []string, notes string) string {
	joined := strings.Join(nonEmpty(interests), ", ")
	if joined == "" {
		joined = defaultInterests
	}
	if notes == "" {
		notes = defaultNotes
	}
	return fmt.Sprintf(`Create a detailed travel itinerary for a %d-day trip to %s.

Budget Level: %s
Interests: %s
Additional Requirements: %s

Please provide:
1. Day-by-day itinerary with morning, afternoon, and evening activities
2. Recommended accommodations (with approximate prices)
3. Transportation suggestions
4. Estimated daily budget breakdown
5. Must-visit attractions and hidden gems
6. Local food recommendations
7. Practical tips and cultural considerations
8. Best time to visit each attraction

Format the response in a clear, structured way with proper headings and bullet points.`,
		days, destination, budget, joined, notes)
}

func QuestionPrompt(question, destination string) string {
	about := strings.TrimSpace(destination)
	if about == "" {
		about = "travel"
	}
	return fmt.Sprintf(`Answer this travel-related question about %s:

Question: %s

Provide a detailed, helpful answer based on current information.`, about, question)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
