package pdf

import (
	"strings"
	"testing"

	"office-translator/internal/types"
)

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"not a pdf", []byte("this is definitely not a pdf document")},
		{"truncated header", []byte("%PDF-1.7\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractText(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !types.IsCode(err, types.ErrExtraction) {
				t.Errorf("error code = %s, want %s", types.CodeOf(err), types.ErrExtraction)
			}
		})
	}
}

func TestExtractTextRoundTrip(t *testing.T) {
	out, _, err := Generate("Quarterly revenue grew in every region.", A4Geometry())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	text, err := ExtractText(out)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	for _, word := range []string{"Quarterly", "revenue", "region"} {
		if !strings.Contains(text, word) {
			t.Errorf("extracted text missing %q: %q", word, text)
		}
	}
}

func TestExtractTextJoinsPagesWithBlankLine(t *testing.T) {
	geo := A4Geometry()
	ops := []TextOp{
		{Page: 0, X: geo.Margin, Y: geo.PageHeight - geo.Margin, Text: "FIRSTMARKER"},
		{Page: 1, X: geo.Margin, Y: geo.PageHeight - geo.Margin, Text: "SECONDMARKER"},
	}
	out, err := Render(ops, geo)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	text, err := ExtractText(out)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	first := strings.Index(text, "FIRSTMARKER")
	second := strings.Index(text, "SECONDMARKER")
	if first < 0 || second < 0 {
		t.Fatalf("markers missing from %q", text)
	}
	if first > second {
		t.Error("page order lost during extraction")
	}
	if !strings.Contains(text, "\n\n") {
		t.Errorf("pages not separated by blank line: %q", text)
	}
}
