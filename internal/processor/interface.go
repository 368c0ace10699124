package processor

import "context"

// Processor runs one transcript file through the analysis pipeline.
type Processor interface {
	Process(ctx context.Context, transcriptPath string) error
}
