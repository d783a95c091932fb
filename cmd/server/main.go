package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/postboard/backend/internal/api"
	"github.com/postboard/backend/internal/auth"
	"github.com/postboard/backend/internal/config"
	"github.com/postboard/backend/internal/db"
	"github.com/postboard/backend/internal/health"
	"github.com/postboard/backend/internal/logger"
	"github.com/postboard/backend/internal/posts"
	"github.com/postboard/backend/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	logger.SetDefault(logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), ""))

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	images, err := newImageStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	userRepo := db.NewUserRepository(database)
	tokenRepo := db.NewTokenRepository(database)
	postRepo := db.NewPostRepository(database)

	authService := auth.NewService(userRepo, tokenRepo)
	authHandlers := auth.NewHandlers(authService)
	postService := posts.NewService(postRepo, images)
	postHandlers := posts.NewHandlers(postService, cfg.MaxUploadBytes)

	checker := health.NewChecker(&health.CheckerConfig{
		DB:           database.DB,
		StorageCheck: images.Ping,
		Version:      version,
	})

	router := api.NewRouter(authHandlers, authService, postHandlers, checker, cfg.CORSOrigins)

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.StorageBackend == config.StorageS3 {
		s3, err := storage.NewS3(&storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		return s3, nil
	}

	return storage.NewLocal(cfg.UploadDir)
}
