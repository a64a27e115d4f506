package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// makePDF builds an in-memory PDF with one marker token per page.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.Cell(0, 10, fmt.Sprintf("marker-%02d", i))
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_AllPages(t *testing.T) {
	data := makePDF(t, 3)
	text, err := Extract(data, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if !strings.Contains(text, fmt.Sprintf("marker-%02d", i)) {
			t.Fatalf("expected page %d text, got %q", i, text)
		}
	}
}

func TestExtract_CapsPages(t *testing.T) {
	data := makePDF(t, 25)
	text, err := Extract(data, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= 20; i++ {
		if !strings.Contains(text, fmt.Sprintf("marker-%02d", i)) {
			t.Fatalf("expected page %d text", i)
		}
	}
	for i := 21; i <= 25; i++ {
		if strings.Contains(text, fmt.Sprintf("marker-%02d", i)) {
			t.Fatalf("did not expect page %d text", i)
		}
	}
}

func TestExtract_NewlinePerPage(t *testing.T) {
	data := makePDF(t, 4)
	text, err := Extract(data, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("expected trailing newline, got %q", text)
	}
	if got := strings.Count(text, "\n"); got < 4 {
		t.Fatalf("expected a newline after each of 4 pages, got %d", got)
	}
}

func TestExtract_InvalidData(t *testing.T) {
	if _, err := Extract([]byte("not a pdf at all"), 20); err == nil {
		t.Fatalf("expected error for invalid data")
	}
}
