package apigw

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
	"github.com/nguyentantai21042004/soap-flow/internal/report"
	"github.com/nguyentantai21042004/soap-flow/internal/soap"
	"github.com/nguyentantai21042004/soap-flow/internal/web"
)

const correlationHeader = "X-Correlation-Id"

// Handler serves the JSON API behind API Gateway. It shares response
// shapes and error mapping with the HTTP server.
type Handler struct {
	analyzer analyzer.Analyzer
	cfg      *config.Config
	logger   logger.Logger
	now      func() time.Time
}

type analyzeRequest struct {
	Transcript string `json:"transcript"`
}

func NewHandler(cfg *config.Config, an analyzer.Analyzer, log logger.Logger) (*Handler, error) {
	if an == nil {
		return nil, errors.New("apigw: analyzer must not be nil")
	}
	if cfg == nil {
		return nil, errors.New("apigw: config must not be nil")
	}
	return &Handler{analyzer: an, cfg: cfg, logger: log, now: time.Now}, nil
}

// Handle routes on the trailing path segment so the function works behind
// any stage or base path.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = uuid.NewString()
	}
	ctx = logger.WithRequestID(ctx, corrID)

	var resp events.APIGatewayProxyResponse
	switch route := lastSegment(req.Path); {
	case route == "analyze" && req.HTTPMethod == http.MethodPost:
		resp = h.analyze(ctx, req)
	case route == "export" && req.HTTPMethod == http.MethodPost:
		resp = h.export(ctx, req)
	case route == "healthz" && req.HTTPMethod == http.MethodGet:
		resp = jsonResponse(http.StatusOK, map[string]string{"status": "ok", "version": h.cfg.App.Version})
	default:
		resp = jsonResponse(http.StatusNotFound, web.ErrorResponse{Error: "not found"})
	}

	resp.Headers[correlationHeader] = corrID
	h.logger.Info(ctx, "%s %s -> %d", req.HTTPMethod, req.Path, resp.StatusCode)
	return resp, nil
}

func (h *Handler) analyze(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, web.ErrorResponse{Error: "invalid body"})
	}

	var in analyzeRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResponse(http.StatusBadRequest, web.ErrorResponse{Error: "invalid json"})
	}

	res, err := h.analyzer.Analyze(ctx, in.Transcript)
	if err != nil {
		status, msg := web.ErrorStatus(err)
		return jsonResponse(status, web.ErrorResponse{Error: msg})
	}
	return jsonResponse(http.StatusOK, web.NewAnalyzeResponse(res))
}

// export returns the note as txt, or as base64 docx for binary media types.
func (h *Handler) export(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, web.ErrorResponse{Error: "invalid body"})
	}

	var note soap.Note
	if err := json.Unmarshal(body, &note); err != nil {
		return jsonResponse(http.StatusBadRequest, web.ErrorResponse{Error: "invalid json"})
	}

	now := h.now()
	switch format := strings.ToLower(req.QueryStringParameters["format"]); format {
	case "", config.ExportText:
		text := report.Text(note, now, h.cfg.App.Name)
		return attachment("text/plain; charset=utf-8", report.FileName(now, config.ExportText), text, false)
	case config.ExportDOCX:
		data, err := report.DOCX(note, now, h.cfg.App.Name)
		if err != nil {
			h.logger.Error(ctx, "Failed to render docx: %v", err)
			return jsonResponse(http.StatusInternalServerError, web.ErrorResponse{Error: "failed to render document"})
		}
		return attachment("application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			report.FileName(now, config.ExportDOCX), base64.StdEncoding.EncodeToString(data), true)
	default:
		return jsonResponse(http.StatusBadRequest, web.ErrorResponse{Error: "unknown format " + format})
	}
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func attachment(contentType, filename, body string, base64Encoded bool) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":        contentType,
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": filename}),
		},
		Body:            body,
		IsBase64Encoded: base64Encoded,
	}
}

// headerValue looks key up case-insensitively; API Gateway keeps the
// client's casing.
func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
