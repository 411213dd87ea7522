// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Samuelsenhet/m-k-sub001/internal/auth"
	"github.com/Samuelsenhet/m-k-sub001/internal/common/database"
	"github.com/Samuelsenhet/m-k-sub001/internal/config"
	"github.com/Samuelsenhet/m-k-sub001/internal/matches"
	"github.com/Samuelsenhet/m-k-sub001/internal/matching"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Daily Match API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Printf("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), continuing without distributed locks", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("✅ Connected to Redis successfully")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize matching engine
	log.Println("\n🧮 Step 7: Initializing matching engine...")
	loc := cfg.Location()
	scorer := matching.NewScorer(matching.DefaultArchetypeCategories())
	poolGen := matching.NewPoolGenerator(scorer)
	log.Printf("✅ Matching engine initialized (timezone: %s)", cfg.MatchTimezone)

	// 8. Initialize matches module
	log.Println("\n💞 Step 8: Initializing matches module...")
	matchesRepo := matches.NewPostgresRepository(db)

	var photoResolver matches.PhotoResolver
	if cfg.UseS3 {
		photoResolver, err = matches.NewS3PhotoResolver(cfg.S3Bucket, cfg.AWSRegion, cfg.PhotoURLExpiry)
		if err != nil {
			log.Printf("⚠️  Failed to init S3 photo resolver, using passthrough: %v", err)
			photoResolver = matches.NewPassthroughPhotoResolver()
		} else {
			log.Println("   ✅ Using S3 presigned photo URLs")
		}
	} else {
		photoResolver = matches.NewPassthroughPhotoResolver()
		log.Println("   ✅ Using passthrough photo URLs")
	}

	matchService := matches.NewService(matchesRepo, redisClient, photoResolver, scorer, loc)
	poolJob := matches.NewPoolJob(matchesRepo, redisClient, poolGen, loc, cfg.PoolJobWorkers)
	matchesHandler := matches.NewHandler(matchService, poolJob, cfg.MatchBatchSize)
	log.Println("✅ Matches module initialized")

	// 9. Initialize authentication
	log.Println("\n🔐 Step 9: Initializing authentication...")
	verifier := auth.NewVerifier(cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(verifier, cfg.AdminToken)
	if cfg.AdminToken == "" {
		log.Println("   ⚠️  ADMIN_TOKEN not set, admin endpoints disabled")
	}
	log.Println("✅ Authentication initialized")

	// 10. Start pool generation scheduler
	log.Println("\n⏰ Step 10: Starting pool generation scheduler...")
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	scheduler := matches.NewScheduler(poolJob, loc, cfg.PoolJobHour, cfg.PoolJobMinute, cfg.MatchBatchSize)
	scheduler.Start(schedulerCtx)
	log.Printf("✅ Scheduler started (daily at %02d:%02d %s)", cfg.PoolJobHour, cfg.PoolJobMinute, cfg.MatchTimezone)

	// 11. Setup routes
	log.Println("\n🛣️  Step 11: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/api", apiInfo).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matches.RegisterRoutes(router, matchesHandler, authMiddleware)
	log.Println("   ✅ Matches routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 12. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{
		"name": "Daily Match API",
		"version": "1.0.0",
		"status": "running",
		"endpoints": {
			"health": "GET /health",
			"metrics": "GET /metrics",
			"matches": {
				"deliver": "POST /api/v1/matches/daily",
				"today": "GET /api/v1/matches/daily",
				"status": "GET /api/v1/matches/status"
			},
			"admin": {
				"generatePools": "POST /api/v1/admin/pools/generate"
			}
		}
	}`))
}

// Middleware functions

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	log.Println("   - Creating/updating tables...")

	migrations := []string{
		// Profiles table. User identity lives in a separate service; this
		// holds what matching and delivery need.
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id UUID PRIMARY KEY,
			display_name VARCHAR(100),
			avatar_url TEXT,
			bio TEXT,
			age INTEGER,
			gender VARCHAR(30),
			interests TEXT[] DEFAULT '{}',
			onboarding_completed BOOLEAN DEFAULT FALSE,
			onboarding_completed_at TIMESTAMP WITH TIME ZONE,
			subscription_tier VARCHAR(20) DEFAULT 'free',
			min_age INTEGER,
			max_age INTEGER,
			interested_in VARCHAR(20),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		// Personality test results, one row per user
		`CREATE TABLE IF NOT EXISTS personality_results (
			user_id UUID PRIMARY KEY REFERENCES profiles(user_id) ON DELETE CASCADE,
			archetype VARCHAR(10),
			category VARCHAR(20),
			ei INTEGER DEFAULT 0,
			sn INTEGER DEFAULT 0,
			tf INTEGER DEFAULT 0,
			jp INTEGER DEFAULT 0,
			at INTEGER DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		// Ordered photo references, either raw URLs or S3 object keys
		`CREATE TABLE IF NOT EXISTS profile_photos (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			photo_ref TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		// Precomputed daily pools, one snapshot per user and day
		`CREATE TABLE IF NOT EXISTS user_daily_match_pools (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			pool_date VARCHAR(10) NOT NULL,
			candidates_data JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_user_pool_date UNIQUE(user_id, pool_date)
		)`,

		// Delivered matches, display fields denormalized at delivery time
		`CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			matched_user_id UUID NOT NULL,
			match_type VARCHAR(20) NOT NULL,
			match_score INTEGER NOT NULL,
			match_date VARCHAR(10) NOT NULL,
			status VARCHAR(20) DEFAULT 'pending',
			dimension_breakdown JSONB,
			archetype_score INTEGER DEFAULT 0,
			anxiety_reduction_score INTEGER DEFAULT 0,
			icebreakers JSONB,
			personality_insight TEXT,
			match_display_name VARCHAR(100),
			match_age INTEGER,
			match_archetype VARCHAR(10),
			photo_urls JSONB,
			bio_preview TEXT,
			common_interests JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_daily_match UNIQUE(user_id, matched_user_id, match_date)
		)`,

		// Last delivered set per user and day, for repeat avoidance
		`CREATE TABLE IF NOT EXISTS last_daily_matches (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			match_date VARCHAR(10) NOT NULL,
			delivered_ids JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_user_match_date UNIQUE(user_id, match_date)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_profiles_onboarded ON profiles(onboarding_completed)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_photos_user ON profile_photos(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pools_user_date ON user_daily_match_pools(user_id, pool_date)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_date ON matches(user_id, match_date)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_matched_user ON matches(matched_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_last_daily_user_date ON last_daily_matches(user_id, match_date)`,
	}

	for i, migration := range migrations {
		log.Printf("   - Running migration %d/%d...", i+1, len(migrations))
		if _, err := db.Exec(migration); err != nil {
			// Don't fail on duplicate key errors (objects already exist)
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			log.Printf("   - Migration %d skipped (already exists)", i+1)
		}
	}

	log.Println("   ✅ All migrations executed successfully")
	return nil
}
