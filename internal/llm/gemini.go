package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements TextGenerator on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErr.Code, Message: apiErr.Message}
		}
		return "", &UpstreamError{Message: err.Error()}
	}

	text, err := extractText(resp)
	if err != nil {
		// A well-formed HTTP response missing the expected candidate
		// structure counts as an upstream failure, not a client bug.
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: err.Error()}
	}
	return text, nil
}

func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
