package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
	"github.com/nguyentantai21042004/soap-flow/internal/report"
	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

//go:embed templates/index.html
var templatesFS embed.FS

const maxTranscriptBytes = 1 << 20

type Handler struct {
	analyzer analyzer.Analyzer
	cfg      *config.Config
	logger   logger.Logger
	page     *template.Template
	now      func() time.Time
}

// NewHandler wires the analyzer behind the HTML page and JSON API.
func NewHandler(cfg *config.Config, an analyzer.Analyzer, log logger.Logger) (*Handler, error) {
	if an == nil {
		return nil, errors.New("web: analyzer must not be nil")
	}
	page, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		analyzer: an,
		cfg:      cfg,
		logger:   log,
		page:     page,
		now:      time.Now,
	}, nil
}

type pageData struct {
	UI          config.UIConfig
	App         config.AppConfig
	HasLogo     bool
	Placeholder string
	Transcript  string
	Warning     string
	Error       string
	Result      *resultView
}

type resultView struct {
	Note   soap.Note
	Blocks []report.Block
}

type analyzeRequest struct {
	Transcript string `json:"transcript"`
}

type SectionView struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
	Placeholder string   `json:"placeholder,omitempty"`
}

type AnalyzeResponse struct {
	ID        string        `json:"id"`
	Note      soap.Note     `json:"note"`
	Sections  []SectionView `json:"sections"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	CreatedAt time.Time     `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage())
}

// Analyze handles the HTML form.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTranscriptBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := h.newPage()
	data.Transcript = r.PostFormValue("transcript")

	res, err := h.analyzer.Analyze(r.Context(), data.Transcript)
	if err != nil {
		status, msg := ErrorStatus(err)
		if status == http.StatusBadRequest {
			data.Warning = msg
		} else {
			data.Error = msg
		}
		h.render(w, r, status, data)
		return
	}

	data.Result = &resultView{Note: res.Note, Blocks: report.Blocks(res.Note)}
	h.render(w, r, http.StatusOK, data)
}

// AnalyzeJSON handles POST /api/analyze.
func (h *Handler) AnalyzeJSON(w http.ResponseWriter, r *http.Request) {
	var in analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTranscriptBytes)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), in.Transcript)
	if err != nil {
		status, msg := ErrorStatus(err)
		writeJSON(w, status, ErrorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, NewAnalyzeResponse(res))
}

// Export returns the note as a downloadable attachment. The note comes
// either as JSON or as form fields, format as "txt" (default) or "docx".
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	note, err := decodeNote(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()
	format := strings.ToLower(r.FormValue("format"))
	switch format {
	case "", config.ExportText:
		body := report.Text(note, now, h.cfg.App.Name)
		writeAttachment(w, "text/plain; charset=utf-8", report.FileName(now, config.ExportText), []byte(body))
	case config.ExportDOCX:
		body, err := report.DOCX(note, now, h.cfg.App.Name)
		if err != nil {
			h.logger.Error(r.Context(), "Failed to render docx: %v", err)
			http.Error(w, "failed to render document", http.StatusInternalServerError)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			report.FileName(now, config.ExportDOCX), body)
	default:
		http.Error(w, "unknown format "+format, http.StatusBadRequest)
	}
}

// Logo serves ui.logo_path when the file exists.
func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	if !h.hasLogo() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, h.cfg.UI.LogoPath)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.cfg.App.Version})
}

func (h *Handler) newPage() pageData {
	return pageData{
		UI:          h.cfg.UI,
		App:         h.cfg.App,
		HasLogo:     h.hasLogo(),
		Placeholder: report.Placeholder,
	}
}

func (h *Handler) hasLogo() bool {
	if h.cfg.UI.LogoPath == "" {
		return false
	}
	info, err := os.Stat(h.cfg.UI.LogoPath)
	return err == nil && !info.IsDir()
}

// ErrorStatus maps an Analyze error onto an HTTP status and the message
// shown to the user. Blank input is a 400 warning, generation failures 502.
func ErrorStatus(err error) (int, string) {
	var aerr *analyzer.Error
	if !errors.As(err, &aerr) {
		return http.StatusInternalServerError, err.Error()
	}
	if aerr.Kind == analyzer.KindEmptyInput {
		return http.StatusBadRequest, aerr.Message()
	}
	return http.StatusBadGateway, aerr.Message()
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Execute(w, data); err != nil {
		h.logger.Error(r.Context(), "Failed to render page: %v", err)
	}
}

func NewAnalyzeResponse(res *analyzer.Result) AnalyzeResponse {
	out := AnalyzeResponse{
		ID:        res.ID,
		Note:      res.Note,
		Provider:  res.Provider,
		Model:     res.Model,
		CreatedAt: res.CreatedAt,
	}
	for _, b := range report.Blocks(res.Note) {
		sv := SectionView{
			Key:         b.Section.Key(),
			Title:       b.Title,
			Description: b.Description,
			Items:       b.Items,
		}
		if b.Empty() {
			sv.Items = []string{}
			sv.Placeholder = report.Placeholder
		}
		out.Sections = append(out.Sections, sv)
	}
	return out
}

func decodeNote(w http.ResponseWriter, r *http.Request) (soap.Note, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTranscriptBytes)

	var note soap.Note
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
			return note, errors.New("invalid json")
		}
		return note, nil
	}

	if err := r.ParseForm(); err != nil {
		return note, errors.New("invalid form")
	}
	note.Subjective = noteField(r, "subjective")
	note.Objective = noteField(r, "objective")
	note.Assessment = noteField(r, "assessment")
	note.Plan = noteField(r, "plan")
	return note, nil
}

// noteField reads a posted section. Browsers submit form newlines as CRLF.
func noteField(r *http.Request, name string) string {
	return strings.TrimSpace(strings.ReplaceAll(r.PostFormValue(name), "\r\n", "\n"))
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
