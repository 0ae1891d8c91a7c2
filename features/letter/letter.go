// Package letter composes job analysis and the generation pipeline into the
// end-to-end cover-letter operation.
package letter

import (
	"context"
	"fmt"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/agent"
)

type Analyzer interface {
	Analyze(ctx context.Context, jobText, model string) (agent.Requirements, error)
}

type PipelineRunner interface {
	Run(ctx context.Context, jobText string, req agent.Requirements, model string) (*agent.Result, error)
}

type EventSink interface {
	LetterGenerated(ctx context.Context, jobTitle string)
}

// Response is the aggregate returned to the client: the parsed requirements
// plus every pipeline stage's output.
type Response struct {
	Requirements agent.Requirements `json:"requirements"`
	agent.Result
}

type Service struct {
	analyzer Analyzer
	pipeline PipelineRunner
	events   EventSink
}

func NewService(analyzer Analyzer, pipeline PipelineRunner, events EventSink) *Service {
	return &Service{analyzer: analyzer, pipeline: pipeline, events: events}
}

// Generate analyzes the posting and runs the full pipeline against it. On any
// stage failure the whole operation fails; there is no partial response.
func (s *Service) Generate(ctx context.Context, jobText, model string) (*Response, error) {
	req, err := s.analyzer.Analyze(ctx, jobText, model)
	if err != nil {
		return nil, fmt.Errorf("requirements analysis: %w", err)
	}

	result, err := s.pipeline.Run(ctx, jobText, req, model)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.LetterGenerated(ctx, req.Title)
	}

	return &Response{Requirements: req, Result: *result}, nil
}
