package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const anthropicVersion = "bedrock-2023-05-31"

// Generator produces answer text with a Claude model on Bedrock. It
// implements rag.Generator.
type Generator struct {
	client      *Client
	modelID     string
	maxTokens   int
	temperature float64
}

func NewGenerator(client *Client, modelID string, maxTokens int, temperature float64) *Generator {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Generator{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Claude API request format (what Bedrock expects)
type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Claude API response format (what Bedrock returns)
type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        g.maxTokens,
		Temperature:      g.temperature,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := g.client.Runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &g.modelID,
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke model %s: %w", g.modelID, err)
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}
