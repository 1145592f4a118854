package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/travel-planner-api/internal/application/auth"
	"github.com/travel-planner-api/internal/application/location"
	"github.com/travel-planner-api/internal/application/planner"
	"github.com/travel-planner-api/internal/application/profile"
	"github.com/travel-planner-api/internal/application/upload"
	"github.com/travel-planner-api/internal/config"
	"github.com/travel-planner-api/internal/transport/http/handler"
	appmiddleware "github.com/travel-planner-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. Mailer,
// ImageSearcher and JWTProvider are optional and must be left nil (not a
// typed nil pointer) when not configured.
type Deps struct {
	CodeStore     CodeStore
	Snapshots     SnapshotStore
	Uploads       ObjectStore
	Generator     Generator
	ImageSearcher location.ImageSearcher
	Mailer        Mailer
	JWTProvider   TokenProvider
	CodeHashCost  int // 0 means bcrypt.DefaultCost
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		// Rewrites RemoteAddr from forwarded headers; only safe behind a proxy
		// that overwrites them.
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := func(next http.Handler) http.Handler { return next }
	if deps.JWTProvider != nil {
		authMw = appmiddleware.OptionalAuth(deps.JWTProvider)
	}

	// 5 requests/second, burst of 10, on the code endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	// Generation is slow and billed upstream: 1 request/second, burst of 5.
	generationRL := appmiddleware.NewRateLimiter(rate.Limit(1), 5)

	var codeTTL time.Duration
	if cfg.CodeTTLEnabled {
		codeTTL = cfg.CodeTTL
	}

	profileSvc := profile.NewService(profile.ServiceDeps{Store: deps.Snapshots})
	authSvc := auth.NewService(auth.ServiceDeps{
		CodeStore:   deps.CodeStore,
		Profiles:    profileSvc,
		Mailer:      deps.Mailer,
		JWTProvider: deps.JWTProvider,
		CodeTTL:     codeTTL,
		HashCost:    deps.CodeHashCost,
	})
	plannerSvc := planner.NewService(planner.ServiceDeps{
		Generator: deps.Generator,
		Images:    location.NewResolver(deps.ImageSearcher),
	})
	uploadSvc := upload.NewService(upload.ServiceDeps{
		Store:             deps.Uploads,
		Profiles:          profileSvc,
		AllowedExtensions: cfg.UploadAllowedExtensions,
		MaxBytes:          cfg.UploadMaxBytes,
		PublicBaseURL:     cfg.PublicBaseURL,
	})

	healthH := handler.NewHealthHandler()
	plannerH := handler.NewPlannerHandler(plannerSvc)
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(profileSvc, uploadSvc, cfg.UploadMaxBytes)
	uploadH := handler.NewUploadHandler(uploadSvc)

	r.Get("/health", healthH.Health)
	r.Get("/static/uploads/{name}", uploadH.Serve)

	r.Route("/api", func(r chi.Router) {
		r.With(generationRL.Limit).Post("/generate-itinerary", plannerH.GenerateItinerary)
		r.With(generationRL.Limit).Post("/ask-question", plannerH.AskQuestion)
		r.Post("/get-location-image", plannerH.LocationImage)

		r.With(sensitiveRL.Limit).Post("/auth/send-code", authH.SendCode)
		r.With(sensitiveRL.Limit).Post("/auth/verify-code", authH.VerifyCode)

		r.Route("/user", func(r chi.Router) {
			r.Use(authMw)

			r.Post("/upload-avatar", userH.UploadAvatar)
			r.Post("/update-profile", userH.UpdateProfile)
			r.Post("/save-itinerary", userH.SaveItinerary)
			r.Get("/itineraries", userH.ListItineraries)
			r.Post("/delete-itinerary", userH.DeleteItinerary)
		})
	})

	return r
}
