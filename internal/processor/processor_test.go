package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

type stubAnalyzer struct {
	note soap.Note
	err  error
	got  string
}

func (s *stubAnalyzer) Analyze(_ context.Context, transcript string) (*analyzer.Result, error) {
	s.got = transcript
	if strings.TrimSpace(transcript) == "" {
		return nil, &analyzer.Error{Kind: analyzer.KindEmptyInput, Err: analyzer.ErrEmptyTranscript}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &analyzer.Result{ID: "a-1", Note: s.note, Provider: "Gemini", Model: "gemini-2.5-flash"}, nil
}

func newTestProcessor(t *testing.T, an analyzer.Analyzer, formats ...string) (*implProcessor, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		API: config.APIConfig{GeminiAPIKey: "k"},
		Paths: config.PathsConfig{
			Inbox:    filepath.Join(root, "inbox"),
			Output:   filepath.Join(root, "output"),
			Archived: filepath.Join(root, "archived"),
		},
		Export: config.ExportConfig{Formats: formats},
	}
	require.NoError(t, cfg.Validate())
	require.NoError(t, os.MkdirAll(cfg.Paths.Inbox, 0755))

	p := New(cfg, an, logger.Nop()).(*implProcessor)
	p.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return p, root
}

func writeTranscript(t *testing.T, p *implProcessor, name, body string) string {
	t.Helper()
	path := filepath.Join(p.cfg.Paths.Inbox, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestProcessWritesExportsAndArchives(t *testing.T) {
	an := &stubAnalyzer{note: soap.Note{
		Subjective: "Dor de cabeça há 3 dias",
		Objective:  "PA 120/80, FC 72",
		Assessment: "Cefaleia tensional, CID-10 G44.2",
		Plan:       "Analgésico, retorno em 7 dias",
	}}
	p, _ := newTestProcessor(t, an, "txt", "docx")
	src := writeTranscript(t, p, "consulta1.txt", "Paciente: dor de cabeça")

	require.NoError(t, p.Process(context.Background(), src))
	require.Equal(t, "Paciente: dor de cabeça", an.got)

	txt := filepath.Join(p.cfg.Paths.Output, "consulta1_analise_soap_20260314_0930.txt")
	body, err := os.ReadFile(txt)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "ANÁLISE SOAP - 14/03/2026 09:30\n"))
	require.Contains(t, string(body), "PLANO:\nAnalgésico, retorno em 7 dias\n")

	require.FileExists(t, filepath.Join(p.cfg.Paths.Output, "consulta1_analise_soap_20260314_0930.docx"))

	require.NoFileExists(t, src)
	require.FileExists(t, filepath.Join(p.cfg.Paths.Archived, "consulta1.txt"))
}

func TestProcessBlankTranscriptIsArchived(t *testing.T) {
	p, _ := newTestProcessor(t, &stubAnalyzer{})
	src := writeTranscript(t, p, "vazio.txt", " \n\t ")

	require.NoError(t, p.Process(context.Background(), src))

	require.NoFileExists(t, src)
	require.FileExists(t, filepath.Join(p.cfg.Paths.Archived, "vazio.txt"))
	entries, err := os.ReadDir(p.cfg.Paths.Output)
	if err == nil {
		require.Empty(t, entries)
	}
}

func TestProcessGenerationErrorKeepsTranscript(t *testing.T) {
	genErr := &analyzer.Error{Kind: analyzer.KindGeneration, Provider: "Gemini", Err: errors.New("quota exceeded")}
	p, _ := newTestProcessor(t, &stubAnalyzer{err: genErr})
	src := writeTranscript(t, p, "consulta2.txt", "Paciente: febre")

	err := p.Process(context.Background(), src)
	require.Error(t, err)
	require.ErrorIs(t, err, genErr)
	require.FileExists(t, src)
}

func TestProcessMissingFile(t *testing.T) {
	p, _ := newTestProcessor(t, &stubAnalyzer{})
	err := p.Process(context.Background(), filepath.Join(p.cfg.Paths.Inbox, "nope.txt"))
	require.Error(t, err)
}

func TestExportPath(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	require.Equal(t, filepath.Join("out", "joao_analise_soap_20260102_0304.docx"),
		exportPath("out", "/inbox/joao.md", now, "docx"))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("conteúdo"), 0644))

	require.NoError(t, copyFile(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "conteúdo", string(got))
}
