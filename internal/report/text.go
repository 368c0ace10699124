package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nguyentantai21042004/soap-flow/internal/soap"
)

const (
	headerTimeLayout   = "02/01/2006 15:04"
	fileNameTimeLayout = "20060102_1504"
)

// Text renders the downloadable plain-text report. Sections are written
// with their raw trimmed text, whether empty or not.
func Text(note soap.Note, now time.Time, appName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ANÁLISE SOAP - %s\n\n", now.Format(headerTimeLayout))
	for _, sec := range soap.Sections {
		fmt.Fprintf(&b, "%s:\n%s\n\n", sec.Label(), note.Get(sec))
	}
	fmt.Fprintf(&b, "---\nGerado pelo %s\n", appName)

	return b.String()
}

// FileName is the download name for a report generated at now, e.g.
// analise_soap_20260314_0930.txt.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("analise_soap_%s.%s", now.Format(fileNameTimeLayout), strings.TrimPrefix(ext, "."))
}

// Terminal writes a bulleted rendition of note for the command line.
func Terminal(w io.Writer, note soap.Note) error {
	for _, block := range Blocks(note) {
		if _, err := fmt.Fprintf(w, "%s\n", block.Heading()); err != nil {
			return err
		}
		if block.Empty() {
			if _, err := fmt.Fprintf(w, "  %s\n\n", Placeholder); err != nil {
				return err
			}
			continue
		}
		for _, item := range block.Items {
			if _, err := fmt.Fprintf(w, "  • %s\n", item); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
