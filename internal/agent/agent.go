// Package agent orchestrates the cover-letter generation pipeline: query
// generation, evidence retrieval, draft, critique/rewrite and fit scoring.
// Stages run strictly in order; each one feeds the next and any failure
// terminates the whole run. Runs are stateless and independent.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/llmjson"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/prompt"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/retrieval"
)

const fallbackQueryCount = 5

type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type EvidenceBuilder interface {
	BuildEvidence(ctx context.Context, queries []string, topKEach, maxTotal int) ([]retrieval.Evidence, error)
}

type Agent struct {
	gen       Generator
	evidence  EvidenceBuilder
	textModel string

	topKEach    int
	maxEvidence int
}

func New(gen Generator, evidence EvidenceBuilder, textModel string, topKEach, maxEvidence int) *Agent {
	return &Agent{
		gen:         gen,
		evidence:    evidence,
		textModel:   textModel,
		topKEach:    topKEach,
		maxEvidence: maxEvidence,
	}
}

// Run executes all five stages against the given job posting and its parsed
// requirements. An empty model overrides nothing and uses the configured one.
func (a *Agent) Run(ctx context.Context, jobText string, req Requirements, model string) (*Result, error) {
	if model == "" {
		model = a.textModel
	}

	reqJSON, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize requirements: %w", err)
	}
	reqStr := string(reqJSON)

	// Stage 1: evidence queries.
	queries, err := a.generateQueries(ctx, model, reqStr)
	if err != nil {
		return nil, fmt.Errorf("query generation stage: %w", err)
	}
	if len(queries) == 0 {
		// Fall back to the leading must-have requirements.
		queries = req.MustHave
		if len(queries) > fallbackQueryCount {
			queries = queries[:fallbackQueryCount]
		}
		slog.InfoContext(ctx, "model returned no queries, using must-have fallback", "queries", len(queries))
	}

	// Stage 2: evidence retrieval.
	evidence, err := a.evidence.BuildEvidence(ctx, queries, a.topKEach, a.maxEvidence)
	if err != nil {
		return nil, fmt.Errorf("evidence retrieval stage: %w", err)
	}
	evidenceBlock := retrieval.FormatEvidence(evidence)
	slog.InfoContext(ctx, "evidence collected", "queries", len(queries), "items", len(evidence))

	// Stage 3: draft.
	draft, err := a.draft(ctx, model, reqStr, jobText, evidenceBlock)
	if err != nil {
		return nil, fmt.Errorf("draft stage: %w", err)
	}

	// Stage 4: critique and rewrite.
	final, err := a.critique(ctx, model, reqStr, draft.CoverLetter, evidenceBlock)
	if err != nil {
		return nil, fmt.Errorf("critique stage: %w", err)
	}

	// Stage 5: fit scoring.
	fit, err := a.fitScore(ctx, model, reqStr, evidenceBlock)
	if err != nil {
		return nil, fmt.Errorf("fit scoring stage: %w", err)
	}

	return &Result{
		Queries:  queries,
		Evidence: evidence,
		Draft:    draft,
		Final:    final,
		Fit:      fit,
	}, nil
}

func (a *Agent) generateQueries(ctx context.Context, model, reqJSON string) ([]string, error) {
	raw, err := a.callStage(ctx, model, prompt.EvidenceQuery, map[string]string{"REQ_JSON": reqJSON})
	if err != nil {
		return nil, err
	}
	var out queriesOutput
	if err := llmjson.DecodeInto(raw, &out); err != nil {
		return nil, err
	}
	return out.Queries, nil
}

func (a *Agent) draft(ctx context.Context, model, reqJSON, jobText, evidenceBlock string) (DraftOutput, error) {
	raw, err := a.callStage(ctx, model, prompt.CoverLetterDraft, map[string]string{
		"REQ_JSON": reqJSON,
		"JOB_TEXT": jobText,
		"EVIDENCE": evidenceBlock,
	})
	if err != nil {
		return DraftOutput{}, err
	}
	var out DraftOutput
	if err := llmjson.DecodeInto(raw, &out); err != nil {
		return DraftOutput{}, err
	}
	return out, nil
}

func (a *Agent) critique(ctx context.Context, model, reqJSON, draftLetter, evidenceBlock string) (FinalOutput, error) {
	raw, err := a.callStage(ctx, model, prompt.CoverLetterCritique, map[string]string{
		"REQ_JSON": reqJSON,
		"DRAFT":    draftLetter,
		"EVIDENCE": evidenceBlock,
	})
	if err != nil {
		return FinalOutput{}, err
	}
	var out critiqueOutput
	if err := llmjson.DecodeInto(raw, &out); err != nil {
		return FinalOutput{}, err
	}
	return FinalOutput{
		CoverLetter:  out.FinalCoverLetter,
		EvidenceMap:  out.EvidenceMap,
		Issues:       out.Issues,
		Improvements: out.Improvements,
	}, nil
}

func (a *Agent) fitScore(ctx context.Context, model, reqJSON, evidenceBlock string) (json.RawMessage, error) {
	raw, err := a.callStage(ctx, model, prompt.FitScore, map[string]string{
		"REQ_JSON": reqJSON,
		"EVIDENCE": evidenceBlock,
	})
	if err != nil {
		return nil, err
	}
	// The schema is owned by the prompt; only well-formedness is checked here.
	payload, err := llmjson.ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	var fit json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fit); err != nil {
		return nil, fmt.Errorf("%w: %v\nextracted:\n%s", llmjson.ErrMalformedPayload, err, payload)
	}
	return fit, nil
}

func (a *Agent) callStage(ctx context.Context, model, template string, vars map[string]string) (string, error) {
	p, err := prompt.Render(template, vars)
	if err != nil {
		return "", err
	}
	return a.gen.Generate(ctx, model, p)
}
