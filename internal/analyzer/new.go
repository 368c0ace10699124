package analyzer

import (
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/generator"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

type implAnalyzer struct {
	gen      generator.Generator
	splitter *soap.Splitter
	model    string
	mimeType string
	logger   logger.Logger

	now   func() time.Time
	newID func() string
}

// New creates an Analyzer. cfg must have passed Validate.
func New(cfg *config.Config, gen generator.Generator, log logger.Logger) (Analyzer, error) {
	match, err := soap.ParseHeadingMatch(cfg.Parser.HeadingMatch)
	if err != nil {
		return nil, err
	}

	return &implAnalyzer{
		gen:      gen,
		splitter: soap.NewSplitter(match),
		model:    cfg.Model.ModelName,
		mimeType: cfg.Model.ResponseMIMEType,
		logger:   log,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}
