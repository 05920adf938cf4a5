package model

// Claim represents a testable assertion extracted from the article.
// The model is instructed to quote claims verbatim; Verbatim records
// whether the claim text was actually located in the article.
type Claim struct {
	Text     string `json:"text"`
	Index    int    `json:"index"`    // Position in the extraction output (0-based)
	Verbatim bool   `json:"verbatim"` // Whether Text is an exact excerpt of the article
}

// Judgment is the outcome of checking a claim
type Judgment string

const (
	JudgmentSupported Judgment = "supported"
	JudgmentRefuted   Judgment = "refuted"
	JudgmentMixed     Judgment = "mixed" // Mixed or unclear evidence
)

// Source is a citation returned alongside a verdict
type Source struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// Verdict is the result of verifying a single claim
type Verdict struct {
	Claim       Claim    `json:"claim"`
	Judgment    Judgment `json:"judgment"`
	Explanation string   `json:"explanation,omitempty"`
	Sources     []Source `json:"sources,omitempty"`
}
