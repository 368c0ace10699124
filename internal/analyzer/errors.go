package analyzer

import (
	"fmt"

	"github.com/nguyentantai21042004/soap-flow/internal/prompt"
)

// ErrEmptyTranscript is returned, wrapped in *Error, for blank input.
var ErrEmptyTranscript = prompt.ErrEmptyTranscript

type ErrorKind string

const (
	KindEmptyInput ErrorKind = "empty_input"
	KindGeneration ErrorKind = "generation"
)

// Error is a failed pipeline run. Both kinds are recoverable: the caller
// shows Message and accepts the next transcript.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("analyzer: %s", e.Kind)
	}
	return fmt.Sprintf("analyzer: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message is the text shown to the user.
func (e *Error) Message() string {
	switch e.Kind {
	case KindEmptyInput:
		return "Por favor, insira a transcrição da consulta antes de analisar."
	default:
		return fmt.Sprintf("Erro ao processar com %s: %v", e.Provider, e.Err)
	}
}
