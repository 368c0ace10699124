package processor

import (
	"time"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

type implProcessor struct {
	cfg      *config.Config
	analyzer analyzer.Analyzer
	logger   logger.Logger
	now      func() time.Time
}

// New creates a new Processor instance
func New(cfg *config.Config, an analyzer.Analyzer, log logger.Logger) Processor {
	return &implProcessor{
		cfg:      cfg,
		analyzer: an,
		logger:   log,
		now:      time.Now,
	}
}
