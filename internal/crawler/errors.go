package crawler

import (
	"errors"
	"fmt"
)

// ErrMissingResult is returned when an action that consumes a file or
// directory runs before any action produced one.
var ErrMissingResult = errors.New("action requires the result of a preceding download or extract")

// ExtractionError stops a run after an archive could not be expanded and the
// failure policy did not allow the crawl to go on.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FailurePolicy decides what happens when an archive cannot be extracted.
type FailurePolicy string

const (
	PolicyAbort    FailurePolicy = "abort"
	PolicyContinue FailurePolicy = "continue"
	PolicyPrompt   FailurePolicy = "prompt"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case PolicyAbort, PolicyContinue, PolicyPrompt:
		return p, nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown extract failure policy %q (want abort, continue or prompt)", s)
	}
}
