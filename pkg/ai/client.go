package ai

import (
	"context"
	"log"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Client wraps the Azure OpenAI chat endpoint. A nil *Client is valid and
// reports itself disabled.
type Client struct {
	api        *openai.Client
	deployment string
}

// NewClient returns nil when credentials are missing.
func NewClient(endpoint, apiKey, deployment string) *Client {
	if endpoint == "" || apiKey == "" {
		log.Println("AI service disabled - Azure OpenAI credentials not provided")
		return nil
	}
	if deployment == "" {
		deployment = "gpt-35-turbo"
	}

	api := openai.NewClient(
		option.WithBaseURL(endpoint),
		option.WithAPIKey(apiKey),
	)
	log.Println("AI service initialized with Azure OpenAI")
	return &Client{api: &api, deployment: deployment}
}

// IsEnabled returns whether the AI service is properly initialized
func (c *Client) IsEnabled() bool {
	return c != nil && c.api != nil
}

func (c *Client) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !c.IsEnabled() {
		return "", &AIError{Message: "AI service is not enabled"}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(800),
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		log.Printf("AI API Error: %v", err)
		return "", &AIError{Message: "Failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}

	return resp.Choices[0].Message.Content, nil
}

// AIError represents an AI service error
type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}
