package generator

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

// contentStreamer is satisfied by *genai.Models.
type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type geminiGenerator struct {
	models contentStreamer
	logger logger.Logger
}

func (g *geminiGenerator) Provider() string { return "Gemini" }

// Generate consumes the whole stream before returning; fragments are
// appended in arrival order.
func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseFormat(),
	}

	g.logger.Debug(ctx, "Streaming from Gemini model %s (%d prompt chars)", req.Model(), len(req.Prompt()))

	var reply strings.Builder
	chunks := 0
	for resp, err := range g.models.GenerateContentStream(ctx, req.Model(), genai.Text(req.Prompt()), cfg) {
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		reply.WriteString(chunkText(resp))
		chunks++
	}

	if reply.Len() == 0 {
		g.logger.Warn(ctx, "Gemini stream ended without text after %d chunks", chunks)
		return "", nil
	}

	g.logger.Info(ctx, "Gemini reply received: %d chunks, %d chars", chunks, reply.Len())
	return reply.String(), nil
}

func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text += part.Text
		}
	}
	return text
}
