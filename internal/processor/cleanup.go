package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// moveToArchived moves the transcript from the inbox to the archived folder.
// An existing file with the same name is replaced.
func (p *implProcessor) moveToArchived(ctx context.Context, transcriptPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return "", fmt.Errorf("create archived directory: %w", err)
	}

	destPath := filepath.Join(p.cfg.Paths.Archived, filepath.Base(transcriptPath))
	p.logger.Info(ctx, "Moving to archived folder: %s -> %s", transcriptPath, destPath)

	if err := os.Rename(transcriptPath, destPath); err == nil {
		return destPath, nil
	}

	// Rename fails across filesystems; fall back to copy and remove
	if err := copyFile(transcriptPath, destPath); err != nil {
		return "", fmt.Errorf("move to archived: %w", err)
	}
	p.cleanupFile(ctx, transcriptPath)
	return destPath, nil
}

// cleanupFile removes a file, logs warning if fails
func (p *implProcessor) cleanupFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil {
		p.logger.Warn(ctx, "Failed to remove %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Removed: %s", filePath)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
