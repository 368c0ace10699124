package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
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
	res   *analyzer.Result
	err   error
	calls int
	got   string
}

func (s *stubAnalyzer) Analyze(_ context.Context, transcript string) (*analyzer.Result, error) {
	s.got = transcript
	if strings.TrimSpace(transcript) == "" {
		return nil, &analyzer.Error{Kind: analyzer.KindEmptyInput, Err: analyzer.ErrEmptyTranscript}
	}
	s.calls++
	return s.res, s.err
}

var consultation = soap.Note{
	Subjective: "Dor de cabeça há 3 dias",
	Objective:  "PA 120/80, FC 72",
	Assessment: "Cefaleia tensional, CID-10 G44.2",
	Plan:       "",
}

func newTestHandler(t *testing.T, an analyzer.Analyzer, mutate ...func(*config.Config)) *Handler {
	t.Helper()
	cfg := &config.Config{API: config.APIConfig{GeminiAPIKey: "k"}}
	for _, m := range mutate {
		m(cfg)
	}
	require.NoError(t, cfg.Validate())

	h, err := NewHandler(cfg, an, logger.Nop())
	require.NoError(t, err)
	h.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return h
}

func okAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{res: &analyzer.Result{
		ID:       "a-1",
		Note:     consultation,
		Provider: "Gemini",
		Model:    "gemini-2.5-flash",
	}}
}

func TestNewHandlerNilAnalyzer(t *testing.T) {
	_, err := NewHandler(&config.Config{}, nil, logger.Nop())
	require.Error(t, err)
}

func TestIndex(t *testing.T) {
	h := newTestHandler(t, okAnalyzer(), func(c *config.Config) {
		c.App.Name = "Clinic"
		c.App.Version = "2.0.0"
		c.UI.PageTitle = "Análise SOAP"
	})

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<title>Análise SOAP</title>")
	require.Contains(t, body, "Clinic v2.0.0")
	require.NotContains(t, body, `src="/logo"`)
}

func TestAnalyzeForm(t *testing.T) {
	an := okAnalyzer()
	h := newTestHandler(t, an)

	form := url.Values{"transcript": {"Paciente: dor de cabeça"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Paciente: dor de cabeça", an.got)

	body := rec.Body.String()
	require.Contains(t, body, "<li>Dor de cabeça há 3 dias</li>")
	require.Contains(t, body, "<li>Cefaleia tensional, CID-10 G44.2</li>")
	require.Contains(t, body, "Não identificado na transcrição")
	require.Contains(t, body, `name="objective" value="PA 120/80, FC 72"`)
}

func TestAnalyzeFormBlank(t *testing.T) {
	an := okAnalyzer()
	h := newTestHandler(t, an)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("transcript=+++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Por favor, insira a transcrição da consulta antes de analisar.")
	require.Zero(t, an.calls)
}

func TestAnalyzeFormGenerationError(t *testing.T) {
	an := &stubAnalyzer{err: &analyzer.Error{Kind: analyzer.KindGeneration, Provider: "Gemini", Err: errors.New("quota exceeded")}}
	h := newTestHandler(t, an)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("transcript=tosse"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Erro ao processar com Gemini: quota exceeded")
	require.Contains(t, rec.Body.String(), ">tosse</textarea>", "transcript kept for retry")
}

func TestAnalyzeJSON(t *testing.T) {
	h := newTestHandler(t, okAnalyzer())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"transcript":"Paciente: dor"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "a-1", out.ID)
	require.Equal(t, consultation, out.Note)
	require.Len(t, out.Sections, 4)
	require.Equal(t, "subjective", out.Sections[0].Key)
	require.Equal(t, []string{"Dor de cabeça há 3 dias"}, out.Sections[0].Items)
	require.Equal(t, "plan", out.Sections[3].Key)
	require.Empty(t, out.Sections[3].Items)
	require.Equal(t, "Não identificado na transcrição", out.Sections[3].Placeholder)
}

func TestAnalyzeJSONErrors(t *testing.T) {
	tests := []struct {
		name   string
		an     *stubAnalyzer
		body   string
		status int
		msg    string
	}{
		{"invalid json", okAnalyzer(), `{`, http.StatusBadRequest, "invalid json"},
		{"blank transcript", okAnalyzer(), `{"transcript":"  "}`, http.StatusBadRequest, "insira a transcrição"},
		{
			"generation failure",
			&stubAnalyzer{err: &analyzer.Error{Kind: analyzer.KindGeneration, Provider: "OpenAI", Err: errors.New("401")}},
			`{"transcript":"x"}`, http.StatusBadGateway, "Erro ao processar com OpenAI: 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.an)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			h.Router().ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			var out ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			require.Contains(t, out.Error, tt.msg)
		})
	}
}

func TestExportTextFromForm(t *testing.T) {
	h := newTestHandler(t, okAnalyzer())

	form := url.Values{
		"subjective": {"Dor de cabeça há 3 dias"},
		"objective":  {"PA 120/80, FC 72"},
		"assessment": {"Cefaleia tensional, CID-10 G44.2"},
		"plan":       {"Analgésico, retorno em 7 dias"},
		"format":     {"txt"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "attachment; filename=analise_soap_20260314_0930.txt", rec.Header().Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "ANÁLISE SOAP - 14/03/2026 09:30\n"))
	iS := strings.Index(body, "SUBJETIVO:\nDor de cabeça há 3 dias")
	iO := strings.Index(body, "OBJETIVO:\nPA 120/80, FC 72")
	iA := strings.Index(body, "AVALIAÇÃO:\nCefaleia tensional, CID-10 G44.2")
	iP := strings.Index(body, "PLANO:\nAnalgésico, retorno em 7 dias")
	require.True(t, iS >= 0 && iS < iO && iO < iA && iA < iP, body)
	require.Contains(t, body, "Gerado pelo MaisGestorHealth")
}

func TestExportNormalisesFormNewlines(t *testing.T) {
	h := newTestHandler(t, okAnalyzer())

	form := url.Values{"subjective": {"- Tosse\r\n- Febre"}, "format": {"txt"}}
	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.NotContains(t, body, "\r")
	require.Contains(t, body, "SUBJETIVO:\n- Tosse\n- Febre\n\n")
}

func TestExportDOCXFromJSON(t *testing.T) {
	h := newTestHandler(t, okAnalyzer())

	body, err := json.Marshal(consultation)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/export?format=docx", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "analise_soap_20260314_0930.docx")
	require.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "docx is a zip archive")
}

func TestExportUnknownFormat(t *testing.T) {
	h := newTestHandler(t, okAnalyzer())

	req := httptest.NewRequest(http.MethodPost, "/api/export?format=pdf", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogo(t *testing.T) {
	logo := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("\x89PNG\r\n\x1a\n"), 0644))

	h := newTestHandler(t, okAnalyzer(), func(c *config.Config) { c.UI.LogoPath = logo })

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logo", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, rec.Body.String(), `src="/logo"`)

	missing := newTestHandler(t, okAnalyzer(), func(c *config.Config) { c.UI.LogoPath = "nope.png" })
	rec = httptest.NewRecorder()
	missing.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logo", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, okAnalyzer())

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(":9999", newTestHandler(t, okAnalyzer()))
	require.Equal(t, ":9999", srv.Addr)
	require.NotNil(t, srv.Handler)
}
