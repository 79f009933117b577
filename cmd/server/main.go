package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/study-app/backend/internal/auth"
	"github.com/study-app/backend/internal/challenge"
	"github.com/study-app/backend/internal/config"
	"github.com/study-app/backend/internal/database"
	"github.com/study-app/backend/internal/middleware"
	"github.com/study-app/backend/internal/quiz"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize challenge engine
	tokens := challenge.NewTokenService(cfg.Challenge.TokenSecret, cfg.Challenge.TokenTTL)
	challengeStore := challenge.NewStore(db)
	challengeService := challenge.NewService(cfg.Challenge, challengeStore, tokens)
	challengeHandler := challenge.NewHandler(challengeService)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	quizHandler := quiz.NewHandler(quiz.NewStore(db), tokens, challengeService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentStudent).Methods("GET")
	protected.HandleFunc("/quiz/session", quizHandler.StartSession).Methods("POST")
	protected.HandleFunc("/quiz/results", quizHandler.SubmitResult).Methods("POST")
	protected.HandleFunc("/quiz/results", quizHandler.ListResults).Methods("GET")
	protected.HandleFunc("/challenge/weekly-status", challengeHandler.WeeklyStatus).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
