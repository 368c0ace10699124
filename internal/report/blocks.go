package report

import (
	"strings"

	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

// Placeholder is shown for a section with no items.
const Placeholder = "Não identificado na transcrição"

var bulletGlyphs = []string{"•", "-", "*"}

// Block is one rendered section of the note.
type Block struct {
	Section     soap.Section
	Icon        string
	Title       string
	Description string
	Items       []string
}

// Empty reports whether the placeholder should be shown instead of items.
func (b Block) Empty() bool { return len(b.Items) == 0 }

// Heading is the full block title, e.g. "🗣️ SUBJETIVO - Sintomas e ...".
func (b Block) Heading() string {
	return b.Icon + " " + b.Title + " - " + b.Description
}

// Items splits section text into display items: one per non-blank line,
// with one leading bullet glyph removed.
func Items(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, g := range bulletGlyphs {
			if strings.HasPrefix(line, g) {
				line = strings.TrimSpace(strings.TrimPrefix(line, g))
				break
			}
		}
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// Blocks returns the four sections of note in document order.
func Blocks(note soap.Note) []Block {
	blocks := make([]Block, 0, len(soap.Sections))
	for _, sec := range soap.Sections {
		blocks = append(blocks, Block{
			Section:     sec,
			Icon:        icon(sec),
			Title:       sec.Label(),
			Description: sec.Description(),
			Items:       Items(note.Get(sec)),
		})
	}
	return blocks
}

func icon(s soap.Section) string {
	switch s {
	case soap.Subjective:
		return "🗣️"
	case soap.Objective:
		return "🔍"
	case soap.Assessment:
		return "🎯"
	default:
		return "📋"
	}
}
