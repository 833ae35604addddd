package views

import (
	"sort"

	"github.com/euronode/euronode/internal/client/models"
)

// Iterations is the partition of a model list shown by the iteration screen.
type Iterations struct {
	// Running holds version > 0, highest version first.
	Running []models.Model
	// Finals holds every version-0 record, most recent first.
	Finals []models.Model
	// History holds every record, newest created_at first.
	History []models.Model
}

// Final returns the finalized model to display: the most recently created
// version-0 record, ties broken by the higher id.
func (it Iterations) Final() (models.Model, bool) {
	if len(it.Finals) == 0 {
		return models.Model{}, false
	}
	return it.Finals[0], true
}

// Latest returns the newest running iteration.
func (it Iterations) Latest() (models.Model, bool) {
	if len(it.Running) == 0 {
		return models.Model{}, false
	}
	return it.Running[0], true
}

// PartitionIterations splits ms without modifying it. Records with a
// negative version appear only in History.
func PartitionIterations(ms []models.Model) Iterations {
	it := Iterations{
		Running: make([]models.Model, 0, len(ms)),
		Finals:  make([]models.Model, 0, 1),
		History: make([]models.Model, len(ms)),
	}
	copy(it.History, ms)

	for _, m := range ms {
		switch {
		case m.IsRunning():
			it.Running = append(it.Running, m)
		case m.IsFinal():
			it.Finals = append(it.Finals, m)
		}
	}

	sort.SliceStable(it.Running, func(i, j int) bool {
		a, b := it.Running[i], it.Running[j]
		if a.Version != b.Version {
			return a.Version > b.Version
		}
		return newer(a, b)
	})
	sort.SliceStable(it.Finals, func(i, j int) bool { return newer(it.Finals[i], it.Finals[j]) })
	sort.SliceStable(it.History, func(i, j int) bool { return newer(it.History[i], it.History[j]) })

	return it
}

func newer(a, b models.Model) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
