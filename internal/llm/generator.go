package llm

import (
	"context"
	"fmt"
)

// TextGenerator is the narrow port for the upstream text-generation service.
// Implementations apply no retries and no rate limiting; failure policy
// belongs to the callers (the summary cache surfaces errors, the assistant
// swallows them).
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UpstreamError reports a text-generation failure. Status carries the
// HTTP-equivalent status of the upstream response when one is known, zero
// for transport-level failures.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("text generation failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("text generation failed: %s", e.Message)
}

// Disabled stands in for the generator when no API key is configured. Every
// call fails, which the summary cache reports and the assistant turns into
// its fallback reply.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, prompt string) (string, error) {
	return "", &UpstreamError{Message: "text generation is not configured"}
}
