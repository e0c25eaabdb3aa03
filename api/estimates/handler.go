// Package estimates exposes the pricing service over HTTP.
package estimates

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/carprice/core/advisory"
	"github.com/kilianp07/carprice/core/catalog"
	"github.com/kilianp07/carprice/core/logger"
	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/core/pricing"
	"github.com/kilianp07/carprice/core/pricing/history"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 16 << 10

// maxHistory caps the limit query parameter.
const maxHistory = 500

// Service is the subset of pricing.Service used by the handlers.
type Service interface {
	EstimateRequest(ctx context.Context, r pricing.Request) (model.PriceEstimate, error)
	History(ctx context.Context, q history.Query) ([]history.Record, error)
	Catalog() *catalog.Catalog
}

// Handler wires pricing endpoints to the service.
type Handler struct {
	svc Service
	log logger.Logger
}

// New constructs a handler.
func New(svc Service, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/estimates", h.HandleEstimate)
	r.Get("/api/estimates", h.HandleHistory)
	r.Get("/api/catalog", h.HandleCatalog)
	r.Get("/api/catalog/{brand}", h.HandleBrand)
	r.Get("/healthz", h.HandleHealth)
}

// EstimateResponse is the body returned by POST /api/estimates.
type EstimateResponse struct {
	model.PriceEstimate
	Advisories []string `json:"advisories"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// HandleEstimate handles POST /api/estimates.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	var req pricing.Request
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return
	}
	est, err := h.svc.EstimateRequest(r.Context(), req)
	if err != nil {
		if pricing.IsRejection(err) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Reason: pricing.Reason(err)})
			return
		}
		h.log.Errorf("estimate: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "estimate failed", Reason: pricing.Reason(err)})
		return
	}
	advisories := advisory.Messages(est)
	if advisories == nil {
		advisories = []string{}
	}
	writeJSON(w, http.StatusOK, EstimateResponse{PriceEstimate: est, Advisories: advisories})
}

// HandleHistory handles GET /api/estimates?brand=&limit=&start=&end=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := history.Query{Brand: params.Get("brand"), Limit: 50}
	if s := params.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		q.Limit = min(n, maxHistory)
	}
	for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
		if s := params.Get(name); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: name + " must be RFC3339"})
				return
			}
			*dst = t
		}
	}
	recs, err := h.svc.History(r.Context(), q)
	if err != nil {
		h.log.Errorf("query history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// BrandResponse describes one brand of the catalog.
type BrandResponse struct {
	Name          string               `json:"name"`
	Models        []string             `json:"models"`
	Defaults      catalog.Specs        `json:"defaults"`
	Luxury        bool                 `json:"luxury"`
	Transmissions []model.Transmission `json:"transmissions"`
}

// CatalogResponse lists the reference data needed to build a request.
type CatalogResponse struct {
	Brands    []string         `json:"brands"`
	FuelTypes []model.FuelType `json:"fuel_types"`
	Owners    []model.Owner    `json:"owners"`
	Colors    []model.Color    `json:"colors"`
	Limits    catalog.Limits   `json:"limits"`
}

// HandleCatalog handles GET /api/catalog.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	writeJSON(w, http.StatusOK, CatalogResponse{
		Brands:    cat.Brands(),
		FuelTypes: model.FuelTypes,
		Owners:    model.Owners,
		Colors:    model.Colors,
		Limits:    cat.Limits(),
	})
}

// HandleBrand handles GET /api/catalog/{brand}.
func (h *Handler) HandleBrand(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	name := chi.URLParam(r, "brand")
	b, ok := cat.Brand(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown brand " + strconv.Quote(name)})
		return
	}
	writeJSON(w, http.StatusOK, BrandResponse{
		Name:          b.Name,
		Models:        b.Models,
		Defaults:      b.Defaults,
		Luxury:        b.Luxury,
		Transmissions: cat.Transmissions(b.Name),
	})
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
