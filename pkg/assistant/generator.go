package assistant

import (
	"context"

	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/metrics"
	"github.com/cuemby/hoconnect/pkg/types"
	"github.com/rs/zerolog"
)

// Generator is the external content generator. Implementations may fail or
// return malformed content; wrap them in Safe before use.
type Generator interface {
	GenerateIdeas(ctx context.Context, challenge string, departments []string) ([]types.ProjectIdea, error)
	DraftTask(ctx context.Context, prompt string, employees []types.Employee, departments []string) (*types.TaskDraft, error)
}

// Safe is the boundary around a Generator. Failures and malformed replies
// become the "no suggestion" result: an empty idea list or a nil draft.
type Safe struct {
	gen    Generator
	logger zerolog.Logger
}

// NewSafe wraps gen. A nil gen always yields no suggestion.
func NewSafe(gen Generator) *Safe {
	return &Safe{
		gen:    gen,
		logger: log.WithComponent("assistant"),
	}
}

// Ideas returns generated ideas, or an empty list
func (s *Safe) Ideas(ctx context.Context, challenge string, departments []string) []types.ProjectIdea {
	if s.gen == nil {
		return []types.ProjectIdea{}
	}

	timer := metrics.NewTimer()
	ideas, err := s.gen.GenerateIdeas(ctx, challenge, departments)
	timer.ObserveDurationVec(metrics.GeneratorDuration, "ideas")
	if err != nil {
		s.logger.Warn().Err(err).Msg("idea generation failed")
		metrics.GeneratorRequests.WithLabelValues("ideas", "error").Inc()
		return []types.ProjectIdea{}
	}

	out := make([]types.ProjectIdea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.Title == "" {
			continue
		}
		if idea.KeySteps == nil {
			idea.KeySteps = []string{}
		}
		out = append(out, idea)
	}
	result := "ok"
	if len(out) == 0 {
		result = "empty"
	}
	metrics.GeneratorRequests.WithLabelValues("ideas", result).Inc()
	return out
}

// Draft returns a task draft, or nil
func (s *Safe) Draft(ctx context.Context, prompt string, employees []types.Employee, departments []string) *types.TaskDraft {
	if s.gen == nil {
		return nil
	}

	timer := metrics.NewTimer()
	draft, err := s.gen.DraftTask(ctx, prompt, employees, departments)
	timer.ObserveDurationVec(metrics.GeneratorDuration, "draft")
	if err != nil {
		s.logger.Warn().Err(err).Msg("task drafting failed")
		metrics.GeneratorRequests.WithLabelValues("draft", "error").Inc()
		return nil
	}
	if draft == nil || draft.Title == "" {
		metrics.GeneratorRequests.WithLabelValues("draft", "empty").Inc()
		return nil
	}

	// an assignee the directory does not know is dropped rather than trusted
	if draft.AssigneeID != "" && !known(draft.AssigneeID, employees) {
		s.logger.Debug().Str("assignee_id", draft.AssigneeID).Msg("dropping unknown assignee")
		draft.AssigneeID = ""
	}
	metrics.GeneratorRequests.WithLabelValues("draft", "ok").Inc()
	return draft
}

func known(id string, employees []types.Employee) bool {
	for _, e := range employees {
		if e.ID == id {
			return true
		}
	}
	return false
}
