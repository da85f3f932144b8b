package recognition

import (
	"image"
	"testing"
)

func TestAssemble(t *testing.T) {
	lines := []Box{
		{Text: "CERTIFICATE OF AUTHENTICITY\n", Confidence: 91, Rect: image.Rect(10, 20, 310, 60)},
		{Text: "   ", Confidence: 10},
		{Text: "CERT-2024-123456", Confidence: 95, Rect: image.Rect(10, 70, 210, 100)},
	}
	words := []Box{
		{Text: "CERTIFICATE", Confidence: 90},
		{Text: "OF", Confidence: 80},
		{Text: "", Confidence: 5},
		{Text: "AUTHENTICITY", Confidence: 100},
	}

	got := Assemble("  CERTIFICATE OF AUTHENTICITY\nCERT-2024-123456\n", lines, words)

	if got.Text != "CERTIFICATE OF AUTHENTICITY\nCERT-2024-123456" {
		t.Errorf("unexpected text %q", got.Text)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got.Lines))
	}
	if got.Lines[0].Text != "CERTIFICATE OF AUTHENTICITY" {
		t.Errorf("unexpected first line %q", got.Lines[0].Text)
	}
	box := got.Lines[1].BoundingBox
	if box.X != 10 || box.Y != 70 || box.Width != 200 || box.Height != 30 {
		t.Errorf("unexpected bounding box %+v", box)
	}
	if len(got.Words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(got.Words))
	}
	if got.Confidence != 90 {
		t.Errorf("expected mean word confidence 90, got %g", got.Confidence)
	}
}

func TestAssemble_NoWords(t *testing.T) {
	got := Assemble("", nil, nil)
	if got.Confidence != 0 {
		t.Errorf("expected zero confidence, got %g", got.Confidence)
	}
	if got.Lines == nil || got.Words == nil {
		t.Error("expected empty, non-nil slices")
	}
}
