package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/processor"
	"github.com/nguyentantai21042004/soap-flow/internal/report"
	"github.com/nguyentantai21042004/soap-flow/internal/watcher"
	"github.com/nguyentantai21042004/soap-flow/internal/web"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	sf.register(fs)
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := bootstrap(ctx, sf)
	if err != nil {
		return err
	}
	if *addr != "" {
		a.cfg.Server.Addr = *addr
	}

	h, err := web.NewHandler(a.cfg, a.analyzer, a.log)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}
	srv := web.NewHTTPServer(a.cfg.Server.Addr, h)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "%s v%s", a.cfg.App.Name, a.cfg.App.Version)
	a.log.Info(ctx, "Provider: %s, model: %s", a.cfg.Model.Provider, a.cfg.Model.ModelName)
	a.log.Info(ctx, "Listening on %s", a.cfg.Server.Addr)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	select {
	case <-ctx.Done():
		a.log.Info(context.Background(), "Shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info(shutdownCtx, "Server stopped")
	return nil
}

func runAnalyze(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	sf.register(fs)
	out := fs.String("o", "", "also write the report to this file (.txt or .docx)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	transcript, err := readTranscript(fs.Arg(0))
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx, sf)
	if err != nil {
		return err
	}

	res, err := a.analyzer.Analyze(ctx, transcript)
	if err != nil {
		var aerr *analyzer.Error
		if errors.As(err, &aerr) {
			return errors.New(aerr.Message())
		}
		return err
	}

	if err := report.Terminal(os.Stdout, res.Note); err != nil {
		return err
	}

	if *out == "" {
		return nil
	}
	if err := writeReport(*out, res, a.cfg.App.Name); err != nil {
		return err
	}
	a.log.Info(ctx, "Report written to %s", *out)
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	var sf sourceFlags
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := bootstrap(ctx, sf)
	if err != nil {
		return err
	}

	// Verify required directories exist
	if err := ensureDirectories(a.cfg); err != nil {
		return err
	}

	proc := processor.New(a.cfg, a.analyzer, a.log)

	// Create watcher with processor as handler and concurrency control
	w, err := watcher.New(a.cfg.Paths.Inbox, proc.Process, a.log, a.cfg.Performance.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "%s batch mode is ready!", a.cfg.App.Name)
	a.log.Info(ctx, "Inbox: %s", a.cfg.Paths.Inbox)
	a.log.Info(ctx, "Output: %s (%s)", a.cfg.Paths.Output, strings.Join(a.cfg.Export.Formats, ", "))
	a.log.Info(ctx, "Archived: %s", a.cfg.Paths.Archived)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher: %w", err)
	}
	a.log.Info(context.Background(), "Batch mode stopped")
	return nil
}

// readTranscript reads path, or stdin when path is empty or "-".
func readTranscript(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

func writeReport(path string, res *analyzer.Result, appName string) error {
	if strings.EqualFold(filepath.Ext(path), "."+config.ExportDOCX) {
		return report.WriteDOCX(res.Note, res.CreatedAt, appName, path)
	}
	if err := os.WriteFile(path, []byte(report.Text(res.Note, res.CreatedAt, appName)), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Inbox,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
