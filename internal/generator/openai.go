package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

type openaiGenerator struct {
	client *openai.Client
	logger logger.Logger
}

func (g *openaiGenerator) Provider() string { return "OpenAI" }

func (g *openaiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt()},
		},
		Stream:         true,
		ResponseFormat: responseFormat(req.ResponseFormat()),
	}

	g.logger.Debug(ctx, "Streaming from OpenAI model %s (%d prompt chars)", req.Model(), len(req.Prompt()))

	stream, err := g.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai stream: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	chunks := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("openai stream: %w", err)
		}
		for _, choice := range resp.Choices {
			reply.WriteString(choice.Delta.Content)
		}
		chunks++
	}

	if reply.Len() == 0 {
		g.logger.Warn(ctx, "OpenAI stream ended without text after %d chunks", chunks)
		return "", nil
	}

	g.logger.Info(ctx, "OpenAI reply received: %d chunks, %d chars", chunks, reply.Len())
	return reply.String(), nil
}

// responseFormat maps a MIME hint onto the chat completions format. Plain
// text is the server default and is left unset.
func responseFormat(mime string) *openai.ChatCompletionResponseFormat {
	if strings.EqualFold(strings.TrimSpace(mime), "application/json") {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return nil
}
