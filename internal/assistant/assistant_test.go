package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	companiesdomain "github.com/placement-track/placement-track-backend/internal/companies/domain"
	expdomain "github.com/placement-track/placement-track-backend/internal/experiences/domain"
	"github.com/placement-track/placement-track-backend/internal/llm"
	"github.com/placement-track/placement-track-backend/internal/users"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()

	snapshot := Context{
		Companies: []companiesdomain.Company{
			{Name: "Acme", ExperienceCount: 3},
		},
		RecentExperiences: []expdomain.Experience{
			{CompanyName: "Acme", Position: "SWE", Description: "Three rounds of DSA."},
		},
	}

	t.Run("returns the generated answer", func(t *testing.T) {
		gen := &fakeGenerator{reply: "Acme runs three rounds."}
		engine := NewEngine(gen, zap.NewNop())

		answer := engine.Answer(ctx, "How many rounds does Acme run?", snapshot)
		assert.Equal(t, "Acme runs three rounds.", answer)

		require.Len(t, gen.prompts, 1)
		assert.Contains(t, gen.prompts[0], `"How many rounds does Acme run?"`)
		assert.Contains(t, gen.prompts[0], "Acme (3 experiences)")
		assert.Contains(t, gen.prompts[0], "Experience: Three rounds of DSA.")
	})

	t.Run("falls back on generator failure", func(t *testing.T) {
		gen := &fakeGenerator{err: &llm.UpstreamError{Status: 429, Message: "quota"}}
		engine := NewEngine(gen, zap.NewNop())

		assert.Equal(t, Fallback, engine.Answer(ctx, "Anything?", snapshot))
	})

	t.Run("falls back on empty output", func(t *testing.T) {
		gen := &fakeGenerator{reply: "   "}
		engine := NewEngine(gen, zap.NewNop())

		assert.Equal(t, Fallback, engine.Answer(ctx, "Anything?", snapshot))
	})

	t.Run("falls back on a blank question without calling the generator", func(t *testing.T) {
		gen := &fakeGenerator{reply: "unused"}
		engine := NewEngine(gen, zap.NewNop())

		assert.Equal(t, Fallback, engine.Answer(ctx, "  ", snapshot))
		assert.Empty(t, gen.prompts)
	})

	t.Run("includes the asker's profile and own experiences when present", func(t *testing.T) {
		gen := &fakeGenerator{reply: "ok"}
		engine := NewEngine(gen, zap.NewNop())

		personal := snapshot
		personal.Profile = &users.Profile{DisplayName: "Alice", Bio: "Final-year CS student"}
		personal.OwnExperiences = []expdomain.Experience{
			{CompanyName: "Initech", Position: "Intern", Description: "Took the TPS round."},
		}

		engine.Answer(ctx, "What should I prepare next?", personal)

		require.Len(t, gen.prompts, 1)
		assert.Contains(t, gen.prompts[0], "Name: Alice")
		assert.Contains(t, gen.prompts[0], "Final-year CS student")
		assert.Contains(t, gen.prompts[0], "Took the TPS round.")
	})

	t.Run("answers with an empty snapshot", func(t *testing.T) {
		gen := &fakeGenerator{reply: "Not much data yet."}
		engine := NewEngine(gen, zap.NewNop())

		assert.Equal(t, "Not much data yet.", engine.Answer(ctx, "Anything?", Context{}))
	})
}
