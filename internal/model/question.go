package model

// ResearchQuestion is a follow-up question suggested for a claim
type ResearchQuestion struct {
	Text string `json:"text"`
}

// Report is a short research summary answering a question
type Report struct {
	Question ResearchQuestion `json:"question"`
	Body     string           `json:"body"`
}
