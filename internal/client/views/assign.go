package views

import (
	"errors"
	"strings"

	"github.com/euronode/euronode/internal/client/models"
)

var ErrIncompleteAssignment = errors.New("fill both data domain and model name")

// AssignModal is the dialog bound to one selected client.
type AssignModal struct {
	Open       bool
	Submitting bool
	Client     models.ClientEntry
	DataDomain string
	ModelName  string
}

// OpenFor binds the modal to c. Field values typed earlier are kept.
func (m *AssignModal) OpenFor(c models.ClientEntry) {
	m.Client = c
	m.Open = true
}

// Cancel hides the modal without clearing it.
func (m *AssignModal) Cancel() { m.Open = false }

// Reset closes the modal and clears its fields and selection.
func (m *AssignModal) Reset() { *m = AssignModal{} }

func (m AssignModal) Validate() error {
	if strings.TrimSpace(m.DataDomain) == "" || strings.TrimSpace(m.ModelName) == "" {
		return ErrIncompleteAssignment
	}
	return nil
}

// Request builds the write for the authority with the given id.
func (m AssignModal) Request(centralAuthID int64) models.AssignRequest {
	return models.AssignRequest{
		CentralAuthID: centralAuthID,
		ClientID:      m.Client.ID,
		DataDomain:    strings.TrimSpace(m.DataDomain),
		ModelName:     strings.TrimSpace(m.ModelName),
	}
}
