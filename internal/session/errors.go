package session

import (
	"errors"
	"fmt"
)

// ErrDownloadFailed is wrapped by every DownloadError.
var ErrDownloadFailed = errors.New("download failed")

// DownloadError reports a download that failed on every attempt.
type DownloadError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to download %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() []error {
	return []error{ErrDownloadFailed, e.Err}
}

// StatusError is a non-2xx response to a download.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}
