package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// WriteDOCX writes the note as a styled Word document to outputPath.
func WriteDOCX(note soap.Note, now time.Time, appName, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), "ANÁLISE SOAP", true, 16)
	addStyledRun(doc.AddParagraph(""), now.Format(headerTimeLayout), false, fontSize)

	for _, block := range Blocks(note) {
		doc.AddParagraph("")
		addStyledRun(doc.AddParagraph(""), block.Title, true, 14)

		if block.Empty() {
			addStyledRun(doc.AddParagraph(""), Placeholder, false, fontSize)
			continue
		}
		for _, item := range block.Items {
			addRichText(doc.AddParagraph(""), "• "+item)
		}
	}

	doc.AddParagraph("")
	addStyledRun(doc.AddParagraph(""), "Gerado pelo "+appName, false, 10)

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

// DOCX renders the note in memory, for HTTP downloads.
func DOCX(note soap.Note, now time.Time, appName string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "soap-docx-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, FileName(now, "docx"))
	if err := WriteDOCX(note, now, appName, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addRichText keeps **bold** spans the model sometimes emits inside items.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
