// Package server exposes the generator as an upload form that answers
// with the portfolio zip.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kevinmichaelchen/folio/internal/metrics"
	"github.com/kevinmichaelchen/folio/internal/models"
	"github.com/kevinmichaelchen/folio/internal/pipeline"
	"github.com/kevinmichaelchen/folio/internal/shared"
)

const (
	maxUploadBytes = 32 << 20
	archiveName    = "portfolio.zip"
	genericFailure = "Portfolio generation failed. Please check your inputs and try again."
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// GenerateFunc runs one generation.
type GenerateFunc func(ctx context.Context, req models.Request) (*pipeline.Result, error)

type Server struct {
	log      *log.Logger
	metrics  *metrics.Manager
	generate GenerateFunc
}

func New(logger *log.Logger, m *metrics.Manager, generate GenerateFunc) *Server {
	return &Server{log: logger, metrics: m, generate: generate}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.log.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleForm)
	r.Post("/generate", s.handleGenerate)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type formView struct {
	Error     string
	Handle    string
	Interests string
	Color     string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, formView{Color: models.DefaultAccentColor})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.metrics.ObserveGeneration(metrics.OutcomeInvalid, false, 0)
		s.renderForm(w, http.StatusBadRequest, formView{Error: "Could not read the upload: " + err.Error(), Color: models.DefaultAccentColor})
		return
	}

	req := models.Request{
		APIKey:      r.FormValue("api_key"),
		Handle:      r.FormValue("username"),
		Interests:   r.FormValue("interests"),
		AccentColor: r.FormValue("color"),
	}
	if file, _, err := r.FormFile("resume"); err == nil {
		req.Resume, err = io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			s.metrics.ObserveGeneration(metrics.OutcomeInvalid, false, 0)
			s.renderForm(w, http.StatusBadRequest, formView{Error: "Could not read the resume upload.", Color: models.DefaultAccentColor})
			return
		}
	}
	req = req.Normalize()
	view := formView{Handle: req.Handle, Interests: req.Interests, Color: req.AccentColor}

	res, err := s.generate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrMissingInput), errors.Is(err, shared.ErrInvalidColor):
			s.metrics.ObserveGeneration(metrics.OutcomeInvalid, false, 0)
			view.Error = err.Error()
			s.renderForm(w, http.StatusBadRequest, view)
		default:
			s.metrics.ObserveGeneration(metrics.OutcomeFailure, false, 0)
			s.log.Error("generation failed", "user", req.Handle, "err", err)
			view.Error = genericFailure
			s.renderForm(w, http.StatusBadGateway, view)
		}
		return
	}

	s.metrics.ObserveGeneration(metrics.OutcomeSuccess, res.Fallback, time.Since(start))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Archive)
}

func (s *Server) renderForm(w http.ResponseWriter, status int, v formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, v); err != nil {
		s.log.Error("rendering form", "err", err)
	}
}
