package models

import "time"

// FinalVersion marks a finalized model; positive versions are running
// iterations, higher meaning more recent.
const FinalVersion = 0

// Model is one versioned model artifact of a central authority.
type Model struct {
	ID               int64     `json:"id"`
	ModelName        string    `json:"model_name"`
	DatasetDomain    string    `json:"dataset_domain"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	CentralAuthEmail string    `json:"central_auth_email"`
	// ModelFile is the server's reference to the uploaded artifact. It may be
	// an absolute URL or a path relative to the API base.
	ModelFile string `json:"model_file"`
}

func (m Model) IsFinal() bool   { return m.Version == FinalVersion }
func (m Model) IsRunning() bool { return m.Version > FinalVersion }

// StartIteration is the metadata half of a start-iteration upload.
type StartIteration struct {
	CentralAuthID int64
	ModelName     string
	DatasetDomain string
	Version       int
}
