package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/internal/router"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	images, err := newImageStore(cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	deps := router.NewPostgresDeps(db.Postgres, images, cfg.IndexCacheTTL)
	deps.JWTSecret = cfg.JWTSecret
	deps.SessionTTL = cfg.SessionTTL

	// Firebase login is optional
	ctx := context.Background()
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		deps.Firebase = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	if cfg.IsProduction() {
		e.Logger.SetLevel(glog.WARN)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}

	// Setup global middleware
	config.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, deps); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server stopped.")
}

func newImageStore(cfg *config.Config, db *config.DB) (storage.ImageStore, error) {
	if db.Mongo != nil {
		log.Printf("Storing images in MongoDB GridFS (%s.%s).", cfg.MongoDatabase, storage.PostsPrefix)
		return storage.NewGridFSImageStore(db.Mongo.Database(cfg.MongoDatabase))
	}
	log.Printf("Storing images under %s.", cfg.MediaRoot)
	return storage.NewLocalImageStore(cfg.MediaRoot), nil
}
