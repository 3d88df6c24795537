package wizard

import "context"

// SaveRequest is the partial update for one step. Data must equal the step's
// projection. Version, when set, is the record version the client last saw.
type SaveRequest struct {
	Step    int       `json:"step"`
	Data    FormState `json:"data"`
	Version *int      `json:"version,omitempty"`
}

// SaveResult is the remote's confirmation of a save. CurrentStep and Status are
// authoritative.
type SaveResult struct {
	Success bool `json:"success"`
	StepProgress
	Version    int     `json:"version"`
	Percentage float64 `json:"percentage"`
}

// Snapshot is the persisted wizard used to hydrate a session after a reload.
type Snapshot struct {
	Data FormState `json:"data"`
	StepProgress
	Version    int     `json:"version"`
	Percentage float64 `json:"percentage"`
}

// Remote is the persistence collaborator a session saves through. Progress
// records are keyed by the caller's identity, which the implementation carries.
type Remote interface {
	SaveStep(ctx context.Context, flow string, req SaveRequest) (SaveResult, error)
	Load(ctx context.Context, flow string) (Snapshot, error)
}
