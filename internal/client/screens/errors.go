package screens

import (
	"context"
	"errors"

	"github.com/euronode/euronode/internal/client/api"
	"github.com/euronode/euronode/internal/client/session"
	"github.com/euronode/euronode/internal/logging"
)

var (
	ErrLoginRequired    = session.ErrLoginRequired
	ErrWrongRole        = errors.New("screen is not available for this role")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrNotMounted       = errors.New("screen is not mounted")
	ErrNoClientSelected = errors.New("no client selected")
	ErrUnknownClient    = errors.New("client is not in the search results")
)

const (
	msgAssigned       = "Assigned successfully!"
	msgGenericError   = "Something went wrong!"
	msgStarted        = "Iteration started successfully!"
	msgStartFailed    = "Failed to start iteration."
	msgModelsFailed   = "Failed to load models"
	msgFileUnreadable = "Could not read the model file."
)

// userMessage prefers what the server said, falling back to fallback.
func userMessage(err error, fallback string) string {
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}

func logReadFailure(ctx context.Context, log logging.Logger, what string, err error, args ...any) {
	if errors.Is(err, context.Canceled) {
		return
	}
	log.Error(ctx, "failed to load "+what, append(args, "error", err)...)
}
