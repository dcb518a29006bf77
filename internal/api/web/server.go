// Package web отдаёт страницы приложения и JSON API поверх gorilla/mux.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/infrastructure/metrics"
)

// Options зависимости веб-сервера.
type Options struct {
	Diagnosis      *app.DiagnosisService
	Diseases       *app.DiseaseService
	Metrics        *metrics.Metrics // nil — без /metrics
	ImagesDir      string
	MaxUploadBytes int64
	Logger         *slog.Logger
	// HealthDetails дополнительные поля ответа /health (например, состояние пула).
	HealthDetails func() map[string]any
}

// Server HTTP-интерфейс сервиса диагностики.
type Server struct {
	opts   Options
	router *mux.Router
	pages  map[entity.Page]*template.Template
	logger *slog.Logger
}

// NewServer собирает маршруты и шаблоны.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		opts:   opts,
		router: mux.NewRouter(),
		pages:  pages,
		logger: opts.Logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.instrument)

	r.HandleFunc("/", s.handleWelcome).Methods(http.MethodGet)
	r.HandleFunc("/diagnosis", s.handleDiagnosisForm).Methods(http.MethodGet)
	r.HandleFunc("/diagnosis", s.handleDiagnosisSubmit).Methods(http.MethodPost)
	r.HandleFunc("/diseases", s.handleDiseases).Methods(http.MethodGet)
	r.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(s.opts.ImagesDir))),
	).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(enableCORS)
	api.HandleFunc("/diagnose", s.handleAPIDiagnose).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/diseases", s.handleAPIDiseases).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/diseases/{key}", s.handleAPIDisease).Methods(http.MethodGet, http.MethodOptions)
}

// Handler корневой обработчик.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run слушает addr до отмены ctx, затем корректно останавливается.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Handler:      s.router,
		Addr:         addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("HTTP server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

// statusRecorder запоминает код ответа для логов и метрик.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveHTTP(route, r.Method, rec.status, elapsed)
		}
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
