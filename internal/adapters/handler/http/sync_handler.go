package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
	"github.com/vncsmyrnk/votersync/internal/core/ports"
)

type SyncHandler struct {
	service ports.SyncService
}

func NewSyncHandler(service ports.SyncService) *SyncHandler {
	return &SyncHandler{
		service: service,
	}
}

// statusResponse keeps the field names the dashboard indicator reads.
// Interval is in milliseconds.
type statusResponse struct {
	IsRunning  bool               `json:"isRunning"`
	Interval   int64              `json:"interval"`
	Syncing    bool               `json:"syncing"`
	LastPassAt *time.Time         `json:"lastPassAt,omitempty"`
	LastReport *domain.PassReport `json:"lastReport,omitempty"`
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		IsRunning:  status.IsRunning,
		Interval:   status.Interval.Milliseconds(),
		Syncing:    status.Syncing,
		LastPassAt: status.LastPassAt,
		LastReport: status.LastReport,
	})
}

// SyncAll runs a manual pass. A pass that could not even list elections is
// reported as 503 so the indicator can show an error.
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	report := h.service.SyncAllElections(r.Context())
	if report.Error != "" {
		writeJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *SyncHandler) SyncElection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	h.service.SyncElection(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SyncHandler) SyncCenter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	h.service.SyncCenter(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, domain.ErrInvalidID.Error(), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
