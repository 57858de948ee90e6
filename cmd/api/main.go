// cmd/api/main.go
// Entry point. Bootstraps config, Postgres, Redis, blob storage, and the
// HTTP server, then serves until interrupted.

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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
	"github.com/koinoniahq/koinonia-backend/internal/cache"
	"github.com/koinoniahq/koinonia-backend/internal/common/database"
	"github.com/koinoniahq/koinonia-backend/internal/config"
	"github.com/koinoniahq/koinonia-backend/internal/devotionals"
	"github.com/koinoniahq/koinonia-backend/internal/posts"
	"github.com/koinoniahq/koinonia-backend/internal/profile"
	"github.com/koinoniahq/koinonia-backend/internal/storage"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration validation failed: ", err)
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("connected to PostgreSQL")

	if err := runMigrations(db); err != nil {
		log.Fatal("failed to run migrations: ", err)
	}
	log.Println("database migrations completed")

	cacheStore := newCacheStore(cfg)
	blobs := newBlobStore(cfg)
	authMw := auth.NewMiddleware(cfg.JWTSecret)

	postsRepo := posts.NewPostgresRepository(db)
	postsService := posts.NewService(postsRepo, blobs, cacheStore, posts.ServiceOptions{
		CacheTTL:       cfg.CacheTTL,
		MaxAttachments: cfg.MaxAttachments,
	})
	postsHandlers := posts.NewHandlers(postsService, cfg.MaxUploadSize)

	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo, blobs)
	profileHandlers := profile.NewHandlers(profileService, cfg.MaxUploadSize)

	devotionalsRepo := devotionals.NewPostgresRepository(db)
	devotionalsService := devotionals.NewService(devotionalsRepo, cacheStore, cfg.CacheTTL)
	devotionalsHandlers := devotionals.NewHandlers(devotionalsService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	posts.RegisterRoutes(api, postsHandlers, authMw)
	profile.RegisterRoutes(api, profileHandlers, authMw)
	devotionals.RegisterRoutes(api, devotionalsHandlers, authMw)

	if !cfg.UseS3 {
		fs := http.FileServer(http.Dir(cfg.LocalUploadDir))
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", fs))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown: ", err)
	}
	log.Println("server stopped")
}

// newCacheStore returns the Redis-backed cache when configured and reachable,
// otherwise the in-process fallback.
func newCacheStore(cfg *config.Config) cache.Store {
	if cfg.RedisURL == "" {
		log.Println("Redis not configured, using in-memory cache")
		return cache.NewMemoryStore()
	}

	client, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable (%v), using in-memory cache", err)
		return cache.NewMemoryStore()
	}
	log.Println("connected to Redis")
	return cache.NewRedisStore(client)
}

// newBlobStore selects S3 or local-disk attachment storage.
func newBlobStore(cfg *config.Config) storage.BlobStore {
	if cfg.UseS3 {
		store, err := storage.NewS3Store(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Fatal("failed to initialize S3 storage: ", err)
		}
		log.Printf("using S3 storage, bucket %s", cfg.S3Bucket)
		return store
	}

	store, err := storage.NewLocalStore(cfg.LocalUploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatal("failed to initialize local storage: ", err)
	}
	log.Printf("using local storage at %s", cfg.LocalUploadDir)
	return store
}

var startTime = time.Now()

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","uptime":"` + time.Since(startTime).Round(time.Second).String() + `"}`))
}

// loggingMiddleware logs every request with its status and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS for the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema if it does not exist yet.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			full_name VARCHAR(100),
			avatar_url TEXT,
			bio TEXT,
			location VARCHAR(100),
			church_name VARCHAR(200),
			ministry_roles TEXT[],
			favorite_bible_verse VARCHAR(200),
			website_url TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL,
			attachments JSONB DEFAULT '[]'::jsonb,
			hashtags TEXT[] DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS likes (
			post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (post_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS devotionals (
			id UUID PRIMARY KEY,
			verse TEXT NOT NULL,
			reference VARCHAR(100) NOT NULL,
			reflection TEXT NOT NULL,
			date DATE NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_user_id ON likes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_devotionals_date ON devotionals(date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_username ON profiles(username)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
