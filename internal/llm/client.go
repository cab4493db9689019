package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over the generative model provider.
type Client interface {
	// Generate runs one model call against the given variant and returns the
	// raw response text.
	Generate(ctx context.Context, variant Variant, req Request) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Generate runs one model call. Media files are uploaded to the provider and
// referenced as file parts, the same context shape for category detection,
// extraction, and reconstruction calls.
func (c *GeminiClient) Generate(ctx context.Context, variant Variant, req Request) (string, error) {
	model := c.client.GenerativeModel(string(variant))
	model.SetTemperature(0.1) // Low temperature for consistent output
	if req.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}

	parts := []genai.Part{genai.Text(req.Prompt)}

	media := req.Media
	if len(media) > maxMediaParts {
		media = media[:maxMediaParts]
	}
	for _, m := range media {
		file, err := c.client.UploadFileFromPath(ctx, m.Path, nil)
		if err != nil {
			return "", fmt.Errorf("failed to upload media %s: %w", m.Path, err)
		}
		parts = append(parts, genai.FileData{URI: file.URI, MIMEType: file.MIMEType})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
