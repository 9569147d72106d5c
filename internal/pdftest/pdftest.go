// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Build returns a PDF with one US Letter page per entry. Each page shows its
// lines in 12pt Helvetica starting near the top-left margin. The MediaBox is
// declared on the page tree root so pages inherit it.
func Build(pages ...[]string) []byte {
	contents := make([]string, len(pages))
	for i, lines := range pages {
		contents[i] = pageContent(lines)
	}
	return build(contents)
}

// BuildText returns a one-page document that draws text once at (x, y) with
// the given font size in points.
func BuildText(fontSize, x, y float64, text string) []byte {
	content := fmt.Sprintf("BT\n/F1 %s Tf\n%s %s Td\n(%s) Tj\nET\n", num(fontSize), num(x), num(y), escape(text))
	return build([]string{content})
}

func build(pages []string) []byte {
	var objects []string
	kidsStart := 4
	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", kidsStart+i*2))
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, content := range pages {
		contentID := kidsStart + i*2 + 1
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentID),
			stream(content),
		)
	}
	return assemble(objects)
}

// Truncated returns the first half of a valid document.
func Truncated() []byte {
	doc := Build([]string{"truncated"})
	return doc[:len(doc)/2]
}

func pageContent(lines []string) string {
	var b strings.Builder
	b.WriteString("0.5 w 36 36 540 720 re S\n")
	b.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", escape(line))
	}
	b.WriteString("ET\n")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func assemble(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
