// Package assistant answers free-form questions about companies and
// interview experiences. It is stateless: every call assembles a fresh
// context snapshot, and every failure collapses into a fixed fallback reply
// so the endpoint itself never errors.
package assistant

import (
	"context"
	"strings"

	"go.uber.org/zap"

	companiesdomain "github.com/placement-track/placement-track-backend/internal/companies/domain"
	expdomain "github.com/placement-track/placement-track-backend/internal/experiences/domain"
	"github.com/placement-track/placement-track-backend/internal/llm"
	"github.com/placement-track/placement-track-backend/internal/users"
)

// Fallback is returned whenever the generator fails or produces nothing.
const Fallback = "I apologize, but I cannot answer this question at the moment."

// Context is the snapshot of site data serialized into the prompt. Profile
// and OwnExperiences are only populated for authenticated callers.
type Context struct {
	Companies         []companiesdomain.Company
	RecentExperiences []expdomain.Experience
	Profile           *users.Profile
	OwnExperiences    []expdomain.Experience
}

type Engine struct {
	gen llm.TextGenerator
	log *zap.Logger
}

func NewEngine(gen llm.TextGenerator, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gen: gen, log: log}
}

// Answer produces a reply to question grounded in snapshot. It never returns
// an error: generator trouble, empty output and a blank question all yield
// the fallback string.
func (e *Engine) Answer(ctx context.Context, question string, snapshot Context) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return Fallback
	}

	answer, err := e.gen.Generate(ctx, buildPrompt(question, snapshot))
	if err != nil {
		e.log.Warn("assistant generation failed", zap.Error(err))
		return Fallback
	}
	if strings.TrimSpace(answer) == "" {
		return Fallback
	}
	return answer
}
