// Package model defines the domain types shared across the analysis
// pipeline.
package model

import "fmt"

// Article is the text under analysis, either pasted directly or
// extracted from a fetched page.
type Article struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url,omitempty"` // Empty for pasted text
}

// FocusMode selects the extraction lens
type FocusMode string

const (
	FocusGeneral       FocusMode = "general"
	FocusScientific    FocusMode = "scientific"
	FocusTechnological FocusMode = "technological"
)

// ParseFocusMode validates a focus mode name. An empty string selects
// the general mode.
func ParseFocusMode(s string) (FocusMode, error) {
	switch FocusMode(s) {
	case "":
		return FocusGeneral, nil
	case FocusGeneral, FocusScientific, FocusTechnological:
		return FocusMode(s), nil
	default:
		return "", fmt.Errorf("unknown focus mode: %q (expected general, scientific or technological)", s)
	}
}
