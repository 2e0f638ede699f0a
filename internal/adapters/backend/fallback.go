package backend

import (
	"context"

	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

// ApologyMessage is returned when the backend cannot be reached.
const ApologyMessage = "Sorry, I could not reach the analysis service right now. " +
	"The map was left unchanged; please try again in a moment."

// Fallback wraps a Responder and replaces failures with an apology that
// carries no cell data.
type Fallback struct {
	primary Responder
	logger  logger.Logger
}

// NewFallback wraps primary.
func NewFallback(primary Responder, l logger.Logger) *Fallback {
	if l == nil {
		l = logger.Named("backend")
	}
	return &Fallback{primary: primary, logger: l}
}

// Respond never returns an error.
func (f *Fallback) Respond(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	resp, err := f.primary.Respond(ctx, req)
	if err == nil {
		return resp, nil
	}
	metrics.RecordChatFallback()
	f.logger.Error(ctx, "chat backend failed; answering with fallback", logger.Error(err))
	return model.ChatResponse{Response: ApologyMessage}, nil
}
