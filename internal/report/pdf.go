package report

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/askweb/askweb/internal/pipeline"
)

// WritePDF renders a completed pipeline outcome as a simple PDF: the
// question as title, the answer body, then references and follow-up
// questions. Markdown in the answer is laid out line by line with basic
// heading sizing; this is intentionally not a full Markdown renderer.
func WritePDF(res *pipeline.Success, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, res.Question, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	writeMarkdownBody(pdf, res.Answer)

	if len(res.References) > 0 {
		writeSection(pdf, "References")
		for i, ref := range res.References {
			pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, ref), "", "L", false)
		}
	}
	if len(res.Followups) > 0 {
		writeSection(pdf, "Follow-up questions")
		for _, q := range res.Followups {
			pdf.MultiCell(0, 5, "- "+q, "", "L", false)
		}
	}

	return pdf.OutputFileAndClose(outPath)
}

func writeSection(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func writeMarkdownBody(pdf *gofpdf.Fpdf, markdown string) {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			pdf.Ln(4)
			continue
		}
		if strings.HasPrefix(line, "#") {
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			text := strings.TrimSpace(line[level:])
			if text == "" {
				continue
			}
			size := 14.0
			if level >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}
