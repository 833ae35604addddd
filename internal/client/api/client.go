package api

import (
	"context"
	"io"

	"github.com/euronode/euronode/internal/client/models"
)

// Client is the backend contract used by the screens and services.
// All methods honor context cancellation.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (models.Session, error)
	Register(ctx context.Context, reg models.Registration) (string, error)

	ListModels(ctx context.Context, centralAuthID int64) ([]models.Model, error)
	RunningIterations(ctx context.Context, centralAuthID int64) ([]models.Model, error)
	StartIteration(ctx context.Context, it models.StartIteration, fileName string, file io.Reader) (models.Model, error)

	ClientDashboard(ctx context.Context, email string) (models.DashboardStats, error)

	SearchClients(ctx context.Context, query string) ([]models.ClientEntry, error)
	ListAssignments(ctx context.Context, email string) ([]models.Assignment, error)
	AssignClient(ctx context.Context, req models.AssignRequest) (AssignResult, error)
}

// AssignResult is the decoded /assign_client/ success body.
type AssignResult struct {
	Message string `json:"message"`
	models.Assignment
}
