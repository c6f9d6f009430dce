// Package server implements the feedback360 HTTP API: authentication,
// result summaries, exports, result imports and consent tracking.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/config"
	"github.com/jonathan/feedback360/internal/db"
	"github.com/jonathan/feedback360/internal/export"
	"github.com/jonathan/feedback360/internal/observability"
	"github.com/jonathan/feedback360/internal/server/middleware"
	"github.com/jonathan/feedback360/internal/server/ratelimit"
	"github.com/jonathan/feedback360/internal/types"
)

// ResultStore is the persistence surface the result handlers need.
type ResultStore interface {
	GetResultSet(ctx context.Context, assessmentID, participantID uuid.UUID) (*types.ResultSet, error)
	SaveResultSet(ctx context.Context, set *types.ResultSet) error
	AssessmentExists(ctx context.Context, id uuid.UUID) (bool, error)
	ParticipantExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ConsentStore is the persistence surface the consent handlers need.
type ConsentStore interface {
	RecordConsent(ctx context.Context, req *types.ConsentRequest) (*types.ConsentRecord, error)
	LatestConsent(ctx context.Context, userID uuid.UUID) (*types.ConsentRecord, error)
}

// Exporter renders scoped result rows into a downloadable document.
type Exporter interface {
	Export(ctx context.Context, scope types.Scope, opts types.ExportOptions) (*export.Document, error)
}

// Server is the HTTP server for the feedback360 API.
type Server struct {
	httpServer    *http.Server
	db            *db.DB
	results       ResultStore
	consent       ConsentStore
	exporter      Exporter
	jwtService    *JWTService
	authHandler   *AuthHandler
	rateLimiter   *ratelimit.Limiter
	metrics       *observability.Metrics
	policyVersion string
}

// New creates a server connected to the database in cfg.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load password config: %w", err)
	}

	exportService := export.NewService(database)
	exportService.SetMaxRows(cfg.MaxExportRows)

	s := assemble(Deps{
		Results:        database,
		Consent:        database,
		Users:          database,
		Exporter:       exportService,
		JWTConfig:      jwtConfig,
		PasswordConfig: passwordConfig,
		Port:           cfg.Port,
		PolicyVersion:  cfg.PolicyVersion,
	})
	s.db = database
	return s, nil
}

// Deps carries the collaborators a Server is assembled from. Tests
// substitute fakes for the stores and exporter.
type Deps struct {
	Results        ResultStore
	Consent        ConsentStore
	Users          UserStore
	Exporter       Exporter
	JWTConfig      *config.JWTConfig
	PasswordConfig *config.PasswordConfig
	Port           int
	PolicyVersion  string
}

// assemble wires handlers, middleware and routes.
func assemble(deps Deps) *Server {
	jwtService := NewJWTService(deps.JWTConfig)
	userService := NewUserService(deps.Users, deps.PasswordConfig)

	s := &Server{
		results:       deps.Results,
		consent:       deps.Consent,
		exporter:      deps.Exporter,
		jwtService:    jwtService,
		authHandler:   NewAuthHandler(userService, jwtService),
		rateLimiter:   ratelimit.New(ratelimit.DefaultRules()),
		metrics:       observability.NewMetrics(),
		policyVersion: deps.PolicyVersion,
	}

	authMW := middleware.Auth(&tokenValidatorAdapter{jwtService: jwtService})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("POST /auth/register", s.authHandler.HandleRegister)
	mux.HandleFunc("POST /auth/login", s.authHandler.HandleLogin)
	mux.Handle("GET /assessments/{id}/participants/{pid}/summary", authMW(http.HandlerFunc(s.handleSummary)))
	mux.Handle("POST /assessments/{id}/results/import", authMW(http.HandlerFunc(s.handleImport)))
	mux.Handle("POST /exports", authMW(http.HandlerFunc(s.handleExport)))
	mux.Handle("POST /consent", authMW(http.HandlerFunc(s.handleRecordConsent)))
	mux.Handle("GET /consent/{user_id}", authMW(http.HandlerFunc(s.handleGetConsent)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", deps.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, fmt.Sprintf("%d", rec.status)).Inc()
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(ratelimit.ClientIP(r), r.URL.Path) {
			errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// errorResponse writes a JSON error response.
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
