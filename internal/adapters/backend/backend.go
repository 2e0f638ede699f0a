// Package backend talks to the chat backend that answers questions with
// markdown and cell data.
package backend

import (
	"context"

	"github.com/okian/sitescope/internal/domain/model"
)

// Responder answers a chat request.
type Responder interface {
	Respond(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	return f(ctx, req)
}
