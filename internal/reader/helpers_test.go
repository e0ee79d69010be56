package reader

import (
	"bytes"
	"fmt"
	"strings"
)

// buildPDF writes a minimal PDF with one 200x100pt page per entry. Non-empty
// entries are drawn in Helvetica so the page carries a text layer.
func buildPDF(pages ...string) []byte {
	return buildPDFWithBox("0 0 200 100", pages...)
}

// buildPDFWithBox is buildPDF with a custom MediaBox, e.g. "0 0 595.3 841.9".
func buildPDFWithBox(mediaBox string, pages ...string) []byte {
	var buf bytes.Buffer
	total := 3 + 2*len(pages)
	offsets := make([]int, total+1)

	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	write(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		write(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [%s] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			mediaBox, contentNum))

		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 10 50 Td (%s) Tj ET", text)
		}
		write(contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}
