package agent

import (
	"encoding/json"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/retrieval"
)

// Requirements is the structured extraction from a job posting. Empty strings
// and lists mean "unspecified" and are valid.
type Requirements struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Seniority        string   `json:"seniority"`
	LocationType     string   `json:"location_type"`
	MustHave         []string `json:"must_have"`
	NiceToHave       []string `json:"nice_to_have"`
	Responsibilities []string `json:"responsibilities"`
	Keywords         []string `json:"keywords"`
}

// EvidenceRef ties a claim in a letter to the chunk backing it.
type EvidenceRef struct {
	ChunkID string `json:"chunk_id"`
	Claim   string `json:"claim"`
}

type queriesOutput struct {
	Queries []string `json:"queries"`
}

// DraftOutput is the draft stage result.
type DraftOutput struct {
	CoverLetter string        `json:"cover_letter"`
	EvidenceMap []EvidenceRef `json:"evidence_map"`
	Assumptions []string      `json:"assumptions"`
}

type critiqueOutput struct {
	FinalCoverLetter string        `json:"final_cover_letter"`
	EvidenceMap      []EvidenceRef `json:"evidence_map"`
	Issues           []string      `json:"issues"`
	Improvements     []string      `json:"improvements"`
}

// FinalOutput is the critique/rewrite stage result.
type FinalOutput struct {
	CoverLetter  string        `json:"cover_letter"`
	EvidenceMap  []EvidenceRef `json:"evidence_map"`
	Issues       []string      `json:"issues"`
	Improvements []string      `json:"improvements"`
}

// Result aggregates all pipeline stages. It is only returned whole; a stage
// failure aborts the run with no partial result.
type Result struct {
	Queries  []string             `json:"queries"`
	Evidence []retrieval.Evidence `json:"evidence"`
	Draft    DraftOutput          `json:"draft"`
	Final    FinalOutput          `json:"final"`
	// Fit is opaque: its schema is owned by the fit_score prompt template.
	Fit json.RawMessage `json:"fit"`
}
