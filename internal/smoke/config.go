package smoke

import (
	"errors"
	"time"
)

// Errors reported by scenario steps.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMismatch         = errors.New("response mismatch")
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	ItemID  int           // Id for the scratch item; 0 picks one above the current maximum
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every response body
}

// StepResult records the outcome of one scenario step.
type StepResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Stats holds run statistics.
type Stats struct {
	Steps     []StepResult
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
