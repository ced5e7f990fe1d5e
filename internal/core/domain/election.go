package domain

import (
	"github.com/google/uuid"
)

type ElectionStatus string

const (
	ElectionDraft    ElectionStatus = "draft"
	ElectionPlanned  ElectionStatus = "planned"
	ElectionActive   ElectionStatus = "active"
	ElectionClosed   ElectionStatus = "closed"
	ElectionArchived ElectionStatus = "archived"
)

// ElectionVoterCount is the read shape used for reconciliation. VoterCount
// is the cached nb_electeurs column and is nil until the first write-back.
type ElectionVoterCount struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Status     ElectionStatus `json:"status"`
	VoterCount *int64         `json:"nb_electeurs,omitempty"`
}

// Matches reports whether the cached count already equals total.
func (e ElectionVoterCount) Matches(total int64) bool {
	return e.VoterCount != nil && *e.VoterCount == total
}
