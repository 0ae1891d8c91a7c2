package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoText means the model response carried no extractable text in any of
// the known response shapes.
var ErrNoText = errors.New("gemini returned no text")

type Client struct {
	client     *genai.Client
	embedModel string
}

func NewClient(ctx context.Context, apiKey, embedModel string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, embedModel: embedModel}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EmbedBatch embeds all texts in one batch call, order-preserving. Any
// failure fails the whole batch; there is no partial recovery.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	slog.DebugContext(ctx, "embedding batch", "model", c.embedModel, "count", len(texts))

	em := c.client.EmbeddingModel(c.embedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		slog.ErrorContext(ctx, "batch embedding failed", "error", err)
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed batch: got %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("embed batch: empty embedding at position %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Generate sends prompt to the named text model and returns the response text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	slog.DebugContext(ctx, "generating content", "model", model, "prompt_length", len(prompt))

	gm := c.client.GenerativeModel(model)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "model", model, "error", err)
		return "", fmt.Errorf("generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		slog.ErrorContext(ctx, "no text in gemini response", "model", model)
		return "", err
	}
	return text, nil
}

// responseText normalizes the response with an ordered list of extraction
// strategies; the first that yields text wins.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	strategies := []func(*genai.GenerateContentResponse) string{
		firstCandidateText,
		anyCandidateText,
	}
	for _, strategy := range strategies {
		if text := strings.TrimSpace(strategy(resp)); text != "" {
			return text, nil
		}
	}
	return "", ErrNoText
}

// firstCandidateText joins all text parts of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	return candidateText(resp.Candidates[0])
}

// anyCandidateText falls back to the first later candidate with any text.
func anyCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if text := candidateText(cand); text != "" {
			return text
		}
	}
	return ""
}

func candidateText(cand *genai.Candidate) string {
	if cand == nil || cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
