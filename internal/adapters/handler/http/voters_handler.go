package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/ports"
)

type VotersHandler struct {
	service ports.TallyService
}

func NewVotersHandler(service ports.TallyService) *VotersHandler {
	return &VotersHandler{
		service: service,
	}
}

type electionVotersResponse struct {
	ElectionID  uuid.UUID `json:"election_id"`
	TotalVoters int64     `json:"total_voters"`
}

type centerVotersResponse struct {
	CenterID    uuid.UUID `json:"center_id"`
	TotalVoters int64     `json:"total_voters"`
}

func (h *VotersHandler) ElectionVoters(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, electionVotersResponse{
		ElectionID:  id,
		TotalVoters: h.service.ComputeElectionTotalVoters(r.Context(), id),
	})
}

func (h *VotersHandler) CenterVoters(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, centerVotersResponse{
		CenterID:    id,
		TotalVoters: h.service.ComputeCenterTotalVoters(r.Context(), id),
	})
}
