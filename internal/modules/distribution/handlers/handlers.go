// Package handlers provides HTTP handlers for distribution operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/phasespace/internal/modules/charts"
	"github.com/aristath/phasespace/internal/modules/compute"
	"github.com/aristath/phasespace/internal/modules/distribution"
	"github.com/aristath/phasespace/internal/modules/phasespace"
	"github.com/aristath/phasespace/internal/modules/snapshots"
	"github.com/aristath/phasespace/internal/modules/states"
)

// Handler handles distribution HTTP requests
type Handler struct {
	service  *compute.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new distribution handler
func NewHandler(service *compute.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("handler", "distribution").Logger(),
	}
}

// GridResponse is the JSON form of a distribution grid.
type GridResponse struct {
	Shape  []int       `json:"shape"`
	Labels []string    `json:"labels"`
	Axes   [][]float64 `json:"axes"`
	Data   []float64   `json:"data"`
}

func gridResponse(g *distribution.Grid) GridResponse {
	return GridResponse{
		Shape:  g.Shape(),
		Labels: g.Labels(),
		Axes:   g.AxisVectors(),
		Data:   g.Data(),
	}
}

// SnapshotResponse is the JSON form of a stored snapshot.
type SnapshotResponse struct {
	ID        string                 `json:"id"`
	ParentID  string                 `json:"parent_id,omitempty"`
	Kind      string                 `json:"kind"`
	Params    map[string]interface{} `json:"params,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	Grid      *GridResponse          `json:"grid,omitempty"`
}

func snapshotResponse(s *snapshots.Snapshot, withGrid bool) SnapshotResponse {
	resp := SnapshotResponse{
		ID:        s.ID,
		ParentID:  s.ParentID,
		Kind:      s.Kind,
		Params:    s.Params,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if withGrid {
		g := gridResponse(s.Grid)
		resp.Grid = &g
	}
	return resp
}

// HandleCompute handles POST /api/distributions/{kind}
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	var req compute.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.service.Compute(kind, req)
	if err != nil {
		h.writeError(w, err, "Failed to compute distribution")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     snap.ID,
		"kind":   snap.Kind,
		"shape":  snap.Grid.Shape(),
		"labels": snap.Grid.Labels(),
	})
}

// HandleList handles GET /api/distributions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := h.service.List(limit)
	if err != nil {
		h.writeError(w, err, "Failed to list distributions")
		return
	}
	if list == nil {
		list = []snapshots.Summary{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /api/distributions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get distribution")
		return
	}
	h.writeJSON(w, http.StatusOK, snapshotResponse(snap, true))
}

// HandleGetMsgpack handles GET /api/distributions/{id}/msgpack
func (h *Handler) HandleGetMsgpack(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetRaw(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get distribution")
		return
	}

	w.Header().Set("Content-Type", "application/x-msgpack")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		h.log.Error().Err(err).Msg("Failed to write msgpack response")
	}
}

// HandleMarginal handles POST /api/distributions/{id}/marginal?axis=k
func (h *Handler) HandleMarginal(w http.ResponseWriter, r *http.Request) {
	h.handleReduce(w, r, compute.OpMarginal)
}

// HandleProject handles POST /api/distributions/{id}/project?axis=k
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	h.handleReduce(w, r, compute.OpProject)
}

func (h *Handler) handleReduce(w http.ResponseWriter, r *http.Request, op string) {
	axis, err := strconv.Atoi(r.URL.Query().Get("axis"))
	if err != nil {
		http.Error(w, "Invalid axis", http.StatusBadRequest)
		return
	}

	snap, err := h.service.Reduce(chi.URLParam(r, "id"), op, axis)
	if err != nil {
		h.writeError(w, err, "Failed to reduce distribution")
		return
	}
	h.writeJSON(w, http.StatusCreated, snapshotResponse(snap, true))
}

// HandleChart handles GET /api/distributions/{id}/chart?style=colormap|surface
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.Chart(chi.URLParam(r, "id"), r.URL.Query().Get("style"))
	if err != nil {
		h.writeError(w, err, "Failed to render chart")
		return
	}
	h.writeJSON(w, http.StatusOK, chart)
}

// HandleDelete handles DELETE /api/distributions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "Failed to delete distribution")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// domainErrors are precondition failures reported as 422.
var domainErrors = []error{
	distribution.ErrInvalidAxis,
	distribution.ErrNoData,
	distribution.ErrShapeMismatch,
	distribution.ErrMismatchedModeTruncation,
	distribution.ErrNotTwoMode,
	distribution.ErrAmplitudeLength,
	distribution.ErrInvalidSteps,
	distribution.ErrInvalidExtent,
	charts.ErrUnsupportedRank,
	compute.ErrLimitExceeded,
	phasespace.ErrNotSquare,
	states.ErrInvalidDims,
	states.ErrIndexOutOfRange,
	states.ErrShape,
	states.ErrZeroNorm,
	states.ErrMixedState,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, snapshots.ErrNotFound), errors.Is(err, compute.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, charts.ErrUnknownStyle), errors.Is(err, states.ErrUnknownPreset):
		return http.StatusBadRequest
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, status)
		return
	}
	h.log.Debug().Err(err).Int("status", status).Msg(msg)
	http.Error(w, err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
