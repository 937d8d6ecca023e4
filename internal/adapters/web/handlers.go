// Package web is the HTTP adapter: a chi router over the application
// service, serving the JSON API for ingestion and incentive calculation.
package web

import (
	"net/http"
	"os"

	"incentive-engine/internal/app"

	"github.com/go-chi/chi/v5"
)

const (
	jsonBodyLimit   = 1 << 20  // 1 MiB for the JSON API
	uploadBodyLimit = 32 << 20 // 32 MiB for CSV uploads
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	uploadDir string // raw copies of uploaded CSVs are kept here
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
		uploadDir: uploadDir,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(jsonBodyLimit))
		r.Get("/api/auth/me", h.me)
		r.Post("/api/calculator/calculate-incentives", h.calculateIncentives)
		r.Get("/api/calculator/results", h.resultsForPeriod)
		r.Get("/api/rules", h.listRules)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(uploadBodyLimit))
		r.Post("/api/ingestion/sales", h.uploadSales)
		r.Post("/api/ingestion/rules", h.uploadRules)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
