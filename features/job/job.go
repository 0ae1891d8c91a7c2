// Package job analyzes a job posting into structured requirements.
package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/agent"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/llmjson"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/prompt"
)

// MinJobTextLength rejects pasted snippets too short to analyze.
const MinJobTextLength = 30

type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type Service struct {
	gen       Generator
	textModel string
}

func NewService(gen Generator, textModel string) *Service {
	return &Service{gen: gen, textModel: textModel}
}

// Analyze extracts structured requirements from the posting with one
// templated model call. An empty model uses the configured default.
func (s *Service) Analyze(ctx context.Context, jobText, model string) (agent.Requirements, error) {
	if model == "" {
		model = s.textModel
	}

	p, err := prompt.Render(prompt.ExtractRequirements, map[string]string{"JOB_TEXT": jobText})
	if err != nil {
		return agent.Requirements{}, err
	}

	raw, err := s.gen.Generate(ctx, model, p)
	if err != nil {
		return agent.Requirements{}, fmt.Errorf("analyze job posting: %w", err)
	}

	var req agent.Requirements
	if err := llmjson.DecodeInto(raw, &req); err != nil {
		return agent.Requirements{}, err
	}

	slog.InfoContext(ctx, "job posting analyzed", "title", req.Title, "must_have", len(req.MustHave))
	return req, nil
}
