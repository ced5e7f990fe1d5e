package domain

import (
	"github.com/google/uuid"
)

type CenterVoterCount struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TotalVoters *int64    `json:"total_voters,omitempty"`
}

func (c CenterVoterCount) Matches(total int64) bool {
	return c.TotalVoters != nil && *c.TotalVoters == total
}

// BureauCount is a polling bureau reduced to its registered voter count,
// the only authoritative count in the hierarchy.
type BureauCount struct {
	ID               uuid.UUID `json:"id"`
	RegisteredVoters *int64    `json:"registered_voters"`
}

// Voters returns the bureau's registered voters. Missing and negative
// counts contribute nothing.
func (b BureauCount) Voters() int64 {
	if b.RegisteredVoters == nil || *b.RegisteredVoters < 0 {
		return 0
	}
	return *b.RegisteredVoters
}

// CenterBureaux is one center linked to an election, with its bureaux.
type CenterBureaux struct {
	CenterID uuid.UUID     `json:"center_id"`
	Bureaux  []BureauCount `json:"bureaux"`
}

func (c CenterBureaux) TotalVoters() int64 {
	return SumRegisteredVoters(c.Bureaux)
}

func SumRegisteredVoters(bureaux []BureauCount) int64 {
	var total int64
	for _, b := range bureaux {
		total += b.Voters()
	}
	return total
}
