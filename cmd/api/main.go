package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/travel-planner-api/internal/config"
	"github.com/travel-planner-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/travel-planner-api/internal/infrastructure/jwt"
	"github.com/travel-planner-api/internal/infrastructure/localfs"
	"github.com/travel-planner-api/internal/infrastructure/memory"
	"github.com/travel-planner-api/internal/infrastructure/openrouter"
	redisinfra "github.com/travel-planner-api/internal/infrastructure/redis"
	s3infra "github.com/travel-planner-api/internal/infrastructure/s3"
	"github.com/travel-planner-api/internal/infrastructure/smtp"
	"github.com/travel-planner-api/internal/infrastructure/snapshot"
	"github.com/travel-planner-api/internal/infrastructure/unsplash"
	transporthttp "github.com/travel-planner-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	deps := &transporthttp.Deps{
		Generator: openrouter.NewClient(cfg),
		Mailer:    smtp.NewMailer(cfg),
	}
	if cfg.OpenRouterAPIKey == "" {
		log.Println("WARN: OPENROUTER_API_KEY is not set; generation requests will fail upstream")
	}

	switch cfg.CodeStore {
	case "redis":
		deps.CodeStore = redisinfra.NewCodeStore(redisinfra.NewClient(cfg))
	default:
		deps.CodeStore = memory.NewCodeStore()
	}

	// S3 client is shared by the snapshot and upload backends.
	var s3Client *s3.Client
	if cfg.ProfileBackend == "s3" || cfg.UploadBackend == "s3" {
		s3Client = s3infra.NewClient(cfg)
	}

	switch cfg.ProfileBackend {
	case "s3":
		deps.Snapshots = s3infra.NewSnapshotStore(s3infra.NewStore(s3Client, cfg.S3BucketName, ""), cfg.S3SnapshotKey)
	case "dynamo":
		dynamoClient := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)
		deps.Snapshots = dynamo.NewSnapshotRepo(dynamoClient, cfg.DynamoTables.Snapshots)
	default:
		deps.Snapshots = snapshot.NewFileStore(cfg.ProfileStorePath)
	}

	switch cfg.UploadBackend {
	case "s3":
		deps.Uploads = s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3UploadPrefix)
	default:
		deps.Uploads = localfs.NewStore(cfg.UploadDir)
	}

	if cfg.UnsplashAccessKey != "" {
		deps.ImageSearcher = unsplash.NewClient(cfg)
	} else {
		log.Println("WARN: UNSPLASH_ACCESS_KEY is not set; using built-in location images only")
	}

	// JWT provider (optional, user routes stay open without keys).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (env=%s, profiles=%s, codes=%s, uploads=%s)",
			srv.Addr, cfg.AppEnv, cfg.ProfileBackend, cfg.CodeStore, cfg.UploadBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
