package analyzer

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/soap-flow/internal/generator"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
	"github.com/nguyentantai21042004/soap-flow/internal/prompt"
)

// Analyze runs prompt -> generation -> split once. A blank transcript is
// rejected before the generator is touched.
func (a *implAnalyzer) Analyze(ctx context.Context, transcript string) (*Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, &Error{Kind: KindEmptyInput, Err: ErrEmptyTranscript}
	}

	id := a.newID()
	if reqID, ok := logger.RequestID(ctx); ok {
		id = reqID
	} else {
		ctx = logger.WithRequestID(ctx, id)
	}

	p, err := prompt.Build(transcript)
	if err != nil {
		return nil, &Error{Kind: KindEmptyInput, Err: err}
	}

	start := a.now()
	a.logger.Info(ctx, "Analyzing transcript (%d chars) with %s %s", len(transcript), a.gen.Provider(), a.model)

	reply, err := a.gen.Generate(ctx, generator.NewRequest(p, a.model, a.mimeType))
	if err != nil {
		a.logger.Error(ctx, "Generation failed: %v", err)
		return nil, &Error{Kind: KindGeneration, Provider: a.gen.Provider(), Err: err}
	}

	note := a.splitter.Split(reply)
	if note.IsEmpty() {
		a.logger.Warn(ctx, "No SOAP heading recognised in reply (%d chars)", len(reply))
	}

	duration := a.now().Sub(start)
	a.logger.Info(ctx, "Analysis completed in %s", duration)

	return &Result{
		ID:        id,
		Note:      note,
		Reply:     reply,
		Provider:  a.gen.Provider(),
		Model:     a.model,
		CreatedAt: start,
		Duration:  duration,
	}, nil
}
