package views

import (
	"strings"
	"unicode/utf8"

	"github.com/euronode/euronode/internal/client/models"
)

// MinQueryLength is the shortest query that is sent to the directory.
const MinQueryLength = 2

// Ticket identifies one issued search request.
type Ticket uint64

// Search is the search-as-you-type state of the assignment widget. Every
// query change invalidates earlier tickets, so only the response to the
// latest issued request is ever applied.
type Search struct {
	query   string
	results []models.ClientEntry
	seq     Ticket
}

func (s *Search) Query() string { return s.query }

// SetQuery records q. It returns the ticket of the request to issue and true
// when q is long enough; otherwise the results are cleared and no request
// should be made.
func (s *Search) SetQuery(q string) (Ticket, bool) {
	s.query = q
	s.seq++
	if utf8.RuneCountInString(q) < MinQueryLength {
		s.results = nil
		return s.seq, false
	}
	return s.seq, true
}

// Current reports whether t belongs to the latest SetQuery call.
func (s *Search) Current(t Ticket) bool { return t == s.seq }

// Apply replaces the results with a response verbatim. Responses carrying a
// superseded ticket are dropped and Apply reports false.
func (s *Search) Apply(t Ticket, results []models.ClientEntry) bool {
	if t != s.seq {
		return false
	}
	s.results = results
	return true
}

// Results returns the latest applied response.
func (s *Search) Results() []models.ClientEntry {
	return s.results
}

// Visible is the result list as rendered: the directory response minus the
// clients already present in the assignment snapshot.
func (s *Search) Visible(assigned []models.Assignment) []models.ClientEntry {
	if len(assigned) == 0 {
		return s.results
	}
	taken := make(map[string]struct{}, len(assigned))
	for _, a := range assigned {
		taken[strings.ToLower(a.ClientEmail)] = struct{}{}
	}
	out := make([]models.ClientEntry, 0, len(s.results))
	for _, c := range s.results {
		if _, ok := taken[strings.ToLower(c.Email)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
