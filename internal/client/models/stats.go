package models

// DashboardStats is the server-computed aggregate for a client hospital.
type DashboardStats struct {
	CurrentRunningRounds int `json:"current_running_rounds"`
	TotalRounds          int `json:"total_rounds"`
	TotalFinalizedModels int `json:"total_finalized_models"`
}
