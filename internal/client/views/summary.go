package views

import (
	"strconv"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/common"
)

// Summary is the three-count header shown on dashboards and the iteration
// screen.
type Summary struct {
	CurrentRunningRounds int
	TotalRounds          int
	TotalFinalizedModels int
}

// Summarize derives the counts from one model-list snapshot.
func Summarize(ms []models.Model) Summary {
	s := Summary{TotalRounds: len(ms)}
	for _, m := range ms {
		switch {
		case m.IsRunning():
			s.CurrentRunningRounds++
		case m.IsFinal():
			s.TotalFinalizedModels++
		}
	}
	return s
}

// SummaryFromStats takes server-aggregated counts verbatim.
func SummaryFromStats(st models.DashboardStats) Summary {
	return Summary{
		CurrentRunningRounds: st.CurrentRunningRounds,
		TotalRounds:          st.TotalRounds,
		TotalFinalizedModels: st.TotalFinalizedModels,
	}
}

// Cell is one labelled value of a summary row.
type Cell struct {
	Label string
	Value string
}

// SummaryCells renders the counts, or placeholders while the data is not
// ready. A failed read also shows placeholders rather than zeros.
func SummaryCells(l Loadable[Summary]) []Cell {
	v := func(n int) string {
		if !l.Ready() {
			return common.Placeholder
		}
		return strconv.Itoa(n)
	}
	return []Cell{
		{Label: "Current Running Iterations", Value: v(l.Value.CurrentRunningRounds)},
		{Label: "Total Rounds", Value: v(l.Value.TotalRounds)},
		{Label: "Total Finalized Models", Value: v(l.Value.TotalFinalizedModels)},
	}
}
