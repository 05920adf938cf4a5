package model

import "time"

// ClaimAnalysis groups everything produced for one claim during a run.
// A failed verification is recorded in Error and does not abort the
// sibling claims.
type ClaimAnalysis struct {
	Claim     Claim              `json:"claim"`
	Verdict   *Verdict           `json:"verdict,omitempty"`
	Questions []ResearchQuestion `json:"questions,omitempty"`
	Reports   []Report           `json:"reports,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Stats summarizes verdict outcomes across a run
type Stats struct {
	Claims    int `json:"claims"`
	Supported int `json:"supported"`
	Refuted   int `json:"refuted"`
	Mixed     int `json:"mixed"`
	Failed    int `json:"failed"` // Claims whose verification errored
}

// Analysis is the complete result of one analysis run
type Analysis struct {
	Article    Article         `json:"article"`
	Focus      FocusMode       `json:"focus"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
	Model      string          `json:"model,omitempty"` // Completion model used
	Claims     []ClaimAnalysis `json:"claims"`
	Stats      Stats           `json:"stats"`
}

// Tally recomputes Stats from the per-claim results
func (a *Analysis) Tally() {
	s := Stats{Claims: len(a.Claims)}
	for _, ca := range a.Claims {
		switch {
		case ca.Error != "":
			s.Failed++
		case ca.Verdict == nil:
		case ca.Verdict.Judgment == JudgmentSupported:
			s.Supported++
		case ca.Verdict.Judgment == JudgmentRefuted:
			s.Refuted++
		case ca.Verdict.Judgment == JudgmentMixed:
			s.Mixed++
		}
	}
	a.Stats = s
}
