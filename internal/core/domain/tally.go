package domain

import (
	"time"
)

// Tally is a successfully computed voter total. A zero TotalVoters on a
// Tally means the hierarchy really holds no electors.
type Tally struct {
	TotalVoters int64 `json:"total_voters"`
	Centers     int   `json:"centers"`
	Bureaux     int   `json:"bureaux"`
}

// PassReport summarizes one reconciliation pass over every election and,
// when enabled, every voting center.
type PassReport struct {
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Elections      int           `json:"elections"`
	Computed       int           `json:"computed"`
	Updated        int           `json:"updated"`
	Failed         int           `json:"failed"`
	Centers        int           `json:"centers"`
	CentersUpdated int           `json:"centers_updated"`
	CentersFailed  int           `json:"centers_failed"`
	Error          string        `json:"error,omitempty"`
}

type SyncStatus struct {
	IsRunning  bool
	Syncing    bool
	Interval   time.Duration
	LastPassAt *time.Time
	LastReport *PassReport
}
