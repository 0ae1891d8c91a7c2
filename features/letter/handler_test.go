package letter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/agent"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/llmjson"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

type fakeLetterService struct {
	resp    *Response
	err     error
	jobText string
	model   string
}

func (f *fakeLetterService) Generate(_ context.Context, jobText, model string) (*Response, error) {
	f.jobText = jobText
	f.model = model
	return f.resp, f.err
}

const longEnoughPosting = "We are hiring a senior backend engineer to build data services."

func postGenerate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/generate-from-job-text", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Generate(w, r)
	return w
}

func TestGenerateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &fakeLetterService{resp: &Response{
			Requirements: agent.Requirements{Title: "Backend Engineer"},
			Result: agent.Result{
				Queries: []string{"go"},
				Final:   agent.FinalOutput{CoverLetter: "Dear hiring team,"},
				Fit:     json.RawMessage(`{"overall":0.8}`),
			},
		}}
		h := NewHandler(svc)

		w := postGenerate(t, h, `{"job_text":"`+longEnoughPosting+`"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data struct {
				Requirements agent.Requirements `json:"requirements"`
				Queries      []string           `json:"queries"`
				Final        agent.FinalOutput  `json:"final"`
				Fit          json.RawMessage    `json:"fit"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Backend Engineer", resp.Data.Requirements.Title)
		assert.Equal(t, "Dear hiring team,", resp.Data.Final.CoverLetter)
		assert.JSONEq(t, `{"overall":0.8}`, string(resp.Data.Fit))
	})

	t.Run("Job Text Too Short", func(t *testing.T) {
		w := postGenerate(t, NewHandler(&fakeLetterService{}), `{"job_text":"short"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("No Index", func(t *testing.T) {
		svc := &fakeLetterService{err: vector.ErrIndexAbsent}
		w := postGenerate(t, NewHandler(svc), `{"job_text":"`+longEnoughPosting+`"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NO_INDEX")
	})

	t.Run("Bad Model Output", func(t *testing.T) {
		svc := &fakeLetterService{err: llmjson.ErrMalformedPayload}
		w := postGenerate(t, NewHandler(svc), `{"job_text":"`+longEnoughPosting+`"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "BAD_MODEL_OUTPUT")
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		svc := &fakeLetterService{err: errors.New("model down")}
		w := postGenerate(t, NewHandler(svc), `{"job_text":"`+longEnoughPosting+`"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "UPSTREAM_ERROR")
	})
}

type fakeAnalyzer struct {
	req agent.Requirements
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, _ string) (agent.Requirements, error) {
	return f.req, f.err
}

type fakePipeline struct {
	result *agent.Result
	err    error
	req    agent.Requirements
}

func (f *fakePipeline) Run(_ context.Context, _ string, req agent.Requirements, _ string) (*agent.Result, error) {
	f.req = req
	return f.result, f.err
}

type recordingSink struct {
	titles []string
}

func (r *recordingSink) LetterGenerated(_ context.Context, jobTitle string) {
	r.titles = append(r.titles, jobTitle)
}

func TestServiceGenerate(t *testing.T) {
	t.Run("Composes Analysis And Pipeline", func(t *testing.T) {
		analyzer := &fakeAnalyzer{req: agent.Requirements{Title: "Backend Engineer"}}
		pipeline := &fakePipeline{result: &agent.Result{Queries: []string{"go"}}}
		sink := &recordingSink{}
		svc := NewService(analyzer, pipeline, sink)

		resp, err := svc.Generate(context.Background(), longEnoughPosting, "")
		require.NoError(t, err)

		assert.Equal(t, "Backend Engineer", resp.Requirements.Title)
		assert.Equal(t, []string{"go"}, resp.Queries)
		assert.Equal(t, "Backend Engineer", pipeline.req.Title, "pipeline sees the analyzed requirements")
		assert.Equal(t, []string{"Backend Engineer"}, sink.titles)
	})

	t.Run("Analysis Failure Short Circuits", func(t *testing.T) {
		analyzer := &fakeAnalyzer{err: llmjson.ErrNoPayload}
		sink := &recordingSink{}
		svc := NewService(analyzer, &fakePipeline{}, sink)

		_, err := svc.Generate(context.Background(), longEnoughPosting, "")
		assert.ErrorIs(t, err, llmjson.ErrNoPayload)
		assert.Empty(t, sink.titles, "no event on failure")
	})

	t.Run("Pipeline Failure Emits No Event", func(t *testing.T) {
		analyzer := &fakeAnalyzer{req: agent.Requirements{Title: "X"}}
		pipeline := &fakePipeline{err: vector.ErrIndexAbsent}
		sink := &recordingSink{}
		svc := NewService(analyzer, pipeline, sink)

		_, err := svc.Generate(context.Background(), longEnoughPosting, "")
		assert.ErrorIs(t, err, vector.ErrIndexAbsent)
		assert.Empty(t, sink.titles)
	})

	t.Run("Nil Event Sink", func(t *testing.T) {
		svc := NewService(&fakeAnalyzer{}, &fakePipeline{result: &agent.Result{}}, nil)
		_, err := svc.Generate(context.Background(), longEnoughPosting, "")
		assert.NoError(t, err)
	})
}
