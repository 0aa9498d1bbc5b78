package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Embedder computes text embeddings with a Titan model on Bedrock. It
// implements rag.Embedder. The same instance serves ingestion and queries so
// both sides live in the same embedding space.
type Embedder struct {
	client  *Client
	modelID string
}

func NewEmbedder(client *Client, modelID string) *Embedder {
	return &Embedder{
		client:  client,
		modelID: modelID,
	}
}

// Titan embedding API request/response format
type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedTexts embeds a batch of texts. Titan takes one text per invocation,
// so the batch is a sequence of calls; the first failure aborts the batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for i, text := range texts {
		embedding, err := e.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d of %d: %w", i+1, len(texts), err)
		}
		embeddings = append(embeddings, embedding)
	}
	return embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbedRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	output, err := e.client.Runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &e.modelID,
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model %s: %w", e.modelID, err)
	}

	var response titanEmbedResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embed response: %w", err)
	}

	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("model %s returned an empty embedding", e.modelID)
	}
	return response.Embedding, nil
}
