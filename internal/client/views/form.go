package views

import (
	"errors"
	"strings"
)

// DefaultVersion is the version a fresh start-iteration form proposes.
const DefaultVersion = 1

var (
	ErrIncompleteForm = errors.New("please fill all fields and upload a model file (.pkl)")
	ErrInvalidVersion = errors.New("version must be a non-negative integer")
)

// IterationForm is the start-iteration form of the iteration screen.
type IterationForm struct {
	Visible       bool
	Submitting    bool
	ModelName     string
	DatasetDomain string
	Version       int
	FilePath      string
}

func NewIterationForm() IterationForm {
	return IterationForm{Version: DefaultVersion}
}

func (f *IterationForm) Toggle() { f.Visible = !f.Visible }

// Validate is the client-side guard run before any upload.
func (f IterationForm) Validate() error {
	if strings.TrimSpace(f.ModelName) == "" ||
		strings.TrimSpace(f.DatasetDomain) == "" ||
		strings.TrimSpace(f.FilePath) == "" {
		return ErrIncompleteForm
	}
	if f.Version < 0 {
		return ErrInvalidVersion
	}
	return nil
}

// Reset clears every field and hides the form.
func (f *IterationForm) Reset() {
	*f = NewIterationForm()
}
