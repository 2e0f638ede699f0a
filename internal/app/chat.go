package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/sitescope/internal/adapters/backend"
	"github.com/okian/sitescope/internal/domain/mock"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/normalize"
	"github.com/okian/sitescope/pkg/logger"
)

// ChatResult is what the chat panel shows after a message.
type ChatResult struct {
	RequestID   string          `json:"requestId"`
	Response    string          `json:"response"`
	Highlighted model.Highlight `json:"highlighted"`
	Updated     bool            `json:"updated"`
	Cells       int             `json:"cells"`
	Version     uint64          `json:"version"`
}

// Chat forwards req to the backend and pushes any returned cells through the
// map update path. Backend failures come back as an apology with the map
// unchanged. Answers are applied in arrival order.
func (s *Service) Chat(ctx context.Context, req model.ChatRequest) (ChatResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResult{}, ErrEmptyMessage
	}
	s.chatRequests.Add(1)
	id := uuid.NewString()
	log := s.logger.Named("chat")

	resp, err := s.responder.Respond(ctx, req)
	if err != nil {
		log.Error(ctx, "chat backend failed", logger.String("request_id", id), logger.Error(err))
		return s.chatResult(id, ChatResult{Response: backend.ApologyMessage}), nil
	}

	out := ChatResult{
		RequestID:   id,
		Response:    resp.Response,
		Highlighted: normalize.Highlighted(resp.Highlighted),
	}
	if resp.HexagonData == nil {
		return s.chatResult(id, out), nil
	}

	res, err := s.Submit(ctx, model.MapUpdate{
		ID:      id,
		Source:  model.SourceChat,
		Payload: UpdatePayload(resp.HexagonData, resp.Highlighted),
	})
	if err != nil {
		log.Warn(ctx, "chat answer not applied to the map", logger.String("request_id", id), logger.Error(err))
		return s.chatResult(id, out), nil
	}
	out.Updated = res.Applied
	out.Highlighted = res.Highlighted
	out.Cells = res.Cells
	out.Version = res.Version
	return out, nil
}

func (s *Service) chatResult(id string, r ChatResult) ChatResult {
	st := s.State()
	r.RequestID = id
	if r.Highlighted == nil {
		r.Highlighted = model.Highlight{}
	}
	r.Cells = st.Batch.Len()
	r.Version = st.Version
	return r
}

// ScenarioResult reports a manual scenario trigger.
type ScenarioResult struct {
	Scenario mock.Scenario      `json:"scenario"`
	Style    mock.Style         `json:"style"`
	Order    []string           `json:"order"`
	Update   model.UpdateResult `json:"update"`
}

// RunScenario generates mock cells for scenario and displays them.
func (s *Service) RunScenario(ctx context.Context, scenario mock.Scenario, style mock.Style) (ScenarioResult, error) {
	s.scenarioRuns.Add(1)
	gen := s.generator.Run(scenario, style)

	highlighted := make([]any, len(gen.Highlighted))
	for i, id := range gen.Highlighted {
		highlighted[i] = id
	}
	res, err := s.Submit(ctx, model.MapUpdate{
		Source:  model.SourceScenario,
		Payload: UpdatePayload(map[string]any(gen.Raw), highlighted),
	})
	if err != nil {
		return ScenarioResult{}, err
	}
	return ScenarioResult{
		Scenario: gen.Scenario,
		Style:    gen.Style,
		Order:    gen.Order,
		Update:   res,
	}, nil
}
