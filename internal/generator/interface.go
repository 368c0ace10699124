package generator

import "context"

// Generator streams a completion and returns the concatenated reply. A
// stream that carries no text yields an empty reply, not an error.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
}

// Request is an immutable generation request.
type Request struct {
	prompt         string
	model          string
	responseFormat string
}

func NewRequest(prompt, model, responseFormat string) Request {
	return Request{
		prompt:         prompt,
		model:          model,
		responseFormat: responseFormat,
	}
}

func (r Request) Prompt() string {
	return r.prompt
}

func (r Request) Model() string {
	return r.model
}

// ResponseFormat is a MIME type hint such as "text/plain".
func (r Request) ResponseFormat() string {
	return r.responseFormat
}
