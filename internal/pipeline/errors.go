package pipeline

import "fmt"

// Stage names the pipeline step where a failure occurred
type Stage string

const (
	StageAcquire   Stage = "acquire"
	StageExtract   Stage = "extract"
	StageVerify    Stage = "verify"
	StageQuestions Stage = "questions"
	StageReport    Stage = "report"
)

// PipelineError wraps any component failure with the stage it happened
// in, so the presentation layer can render a human-readable message.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// FetchError means the article URL was unreachable or yielded no
// extractable text
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }
