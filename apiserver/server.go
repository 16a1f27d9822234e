// Package apiserver wires the HTTP surface: spreadsheet ingestion, results
// retrieval, and minimal CRUD for seeding a tray configuration.
package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/EERL-EPFL/spice-api-sub001/assets"
	"github.com/EERL-EPFL/spice-api-sub001/ingest"
	"github.com/EERL-EPFL/spice-api-sub001/results"
	"github.com/EERL-EPFL/spice-api-sub001/store"
)

// Server holds every dependency the HTTP handlers need.
type Server struct {
	db          *store.DB
	coordinator *ingest.Coordinator
	assembler   *results.Assembler
	blobs       assets.BlobStore
	log         *zap.SugaredLogger

	experiments   store.ExperimentRepo
	trayConfigs   store.TrayConfigurationRepo
	trays         store.TrayRepo
	probes        store.ProbeRepo
	wells         store.WellRepo
	samples       store.SampleRepo
	treatments    store.TreatmentRepo
	regions       store.RegionRepo
	assetRepo     store.AssetRepo
}

// New builds a Server over db, ready to have Router() mounted.
func New(db *store.DB, coordinator *ingest.Coordinator, assembler *results.Assembler, blobs assets.BlobStore, log *zap.SugaredLogger) *Server {
	return &Server{
		db:          db,
		coordinator: coordinator,
		assembler:   assembler,
		blobs:       blobs,
		log:         log,
	}
}

// Router builds the chi router exposing every HTTP endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/experiments", func(r chi.Router) {
		r.Post("/", s.handleCreateExperiment)
		r.Patch("/{experimentID}", s.handleUpdateExperiment)
		r.Post("/{experimentID}/process-excel", s.handleProcessExcel)
		r.Get("/{experimentID}/results", s.handleGetResults)
	})

	r.Route("/tray-configurations", func(r chi.Router) {
		r.Post("/", s.handleCreateTrayConfiguration)
		r.Post("/{configID}/trays", s.handleCreateTray)
	})

	r.Route("/trays", func(r chi.Router) {
		r.Post("/{trayID}/wells", s.handleCreateWell)
		r.Post("/{trayID}/probes", s.handleCreateProbe)
	})

	r.Route("/samples", func(r chi.Router) {
		r.Post("/", s.handleCreateSample)
	})

	r.Route("/treatments", func(r chi.Router) {
		r.Post("/", s.handleCreateTreatment)
	})

	r.Route("/regions", func(r chi.Router) {
		r.Post("/", s.handleCreateRegion)
	})

	return r
}

func loggingMiddleware(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debugw("request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
