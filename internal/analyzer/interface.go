package analyzer

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

// Analyzer turns a consultation transcript into a SOAP note.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (*Result, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	ID        string        `json:"id"`
	Note      soap.Note     `json:"note"`
	Reply     string        `json:"reply"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"duration_ns"`
}
