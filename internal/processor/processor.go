package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/report"
	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

// Process analyzes the transcript at transcriptPath, writes one export per
// configured format to the output folder and archives the transcript.
// A blank transcript is archived with a warning. On a generation failure the
// transcript stays in the inbox so it can be retried.
func (p *implProcessor) Process(ctx context.Context, transcriptPath string) error {
	startTime := time.Now()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting analysis: %s", transcriptPath)
	p.logger.Info(ctx, "========================================")

	// Step 1: Read transcript
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	// Step 2: Analyze
	res, err := p.analyzer.Analyze(ctx, string(data))
	if err != nil {
		var aerr *analyzer.Error
		if errors.As(err, &aerr) && aerr.Kind == analyzer.KindEmptyInput {
			p.logger.Warn(ctx, "%s: %s", filepath.Base(transcriptPath), aerr.Message())
			if _, err := p.moveToArchived(ctx, transcriptPath); err != nil {
				p.logger.Warn(ctx, "Failed to move blank transcript to archived folder: %v", err)
			}
			return nil
		}
		return fmt.Errorf("analyze: %w", err)
	}

	// Step 3: Write exports
	outputs, err := p.writeExports(ctx, transcriptPath, res.Note)
	if err != nil {
		return fmt.Errorf("write exports: %w", err)
	}

	// Step 4: Move transcript to archived folder
	if _, err := p.moveToArchived(ctx, transcriptPath); err != nil {
		p.logger.Warn(ctx, "Failed to move transcript to archived folder: %v", err)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Analysis %s completed (%s, %s)", res.ID, res.Provider, res.Model)
	for _, out := range outputs {
		p.logger.Info(ctx, "Output: %s", out)
	}
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return nil
}

func (p *implProcessor) writeExports(ctx context.Context, transcriptPath string, note soap.Note) ([]string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	now := p.now()
	var outputs []string
	for _, format := range p.cfg.Export.Formats {
		path := exportPath(p.cfg.Paths.Output, transcriptPath, now, format)

		switch format {
		case config.ExportText:
			body := report.Text(note, now, p.cfg.App.Name)
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				return outputs, fmt.Errorf("write %s: %w", path, err)
			}
		case config.ExportDOCX:
			if err := report.WriteDOCX(note, now, p.cfg.App.Name, path); err != nil {
				return outputs, err
			}
		default:
			return outputs, fmt.Errorf("unknown export format %q", format)
		}

		p.logger.Debug(ctx, "Wrote %s export: %s", format, path)
		outputs = append(outputs, path)
	}
	return outputs, nil
}

// exportPath prefixes the timestamped report name with the transcript's stem
// so a batch started within one minute does not collide.
func exportPath(outputDir, transcriptPath string, now time.Time, format string) string {
	base := filepath.Base(transcriptPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+"_"+report.FileName(now, format))
}
