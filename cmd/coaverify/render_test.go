package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

func init() {
	color.NoColor = true
}

func sampleResult() *models.VerificationResult {
	cert := "CERT-2024-123456"
	brand := "Chanel"
	sim := 1.0
	return &models.VerificationResult{
		RequestID:  "req-1",
		Success:    true,
		Text:       "Certificate No: CERT-2024-123456",
		Confidence: 92.5,
		Fields:     &models.CertificateFields{CertNumber: &cert, Brand: &brand},
		Texture:    &models.TextureReport{QualityScore: 0.9, HasWatermark: true},
		Ink:        &models.InkReport{Quality: 0.85, Bleeding: models.BleedingLow, PrintMethod: models.PrintProfessional},
		Authenticity: &models.AuthenticityScore{
			Overall:    0.84,
			Components: models.ScoreComponents{OCR: 0.925, Data: 2.0 / 3, Texture: 0.9, Ink: 0.85},
		},
		IsAuthentic: true,
		Details: &models.VerificationDetails{
			Watermark:            "detected",
			PaperQuality:         "high",
			InkQuality:           "high",
			TextClarity:          "high",
			PrintMethod:          models.PrintProfessional,
			CertNumberSimilarity: &sim,
		},
	}
}

func TestRendererFor(t *testing.T) {
	for _, f := range []string{"json", "YAML", "yml", "summary", ""} {
		if _, err := rendererFor(f); err != nil {
			t.Errorf("rendererFor(%q) error: %v", f, err)
		}
	}
	if _, err := rendererFor("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderJSON(&buf, "cert.png", sampleResult()); err != nil {
		t.Fatalf("renderJSON: %v", err)
	}
	var got models.VerificationResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !got.IsAuthentic || *got.Fields.CertNumber != "CERT-2024-123456" {
		t.Errorf("unexpected round trip %+v", got)
	}
}

func TestRenderYAML_UsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := renderYAML(&buf, "cert.png", sampleResult()); err != nil {
		t.Fatalf("renderYAML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"isAuthentic: true", "certNumber: CERT-2024-123456", "printMethod: professional"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in YAML output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{") {
		t.Errorf("expected block style output:\n%s", out)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(strings.TrimSuffix(out, "---\n")), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if decoded["requestId"] != "req-1" {
		t.Errorf("unexpected requestId %v", decoded["requestId"])
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := renderSummary(&buf, "cert.png", sampleResult()); err != nil {
		t.Fatalf("renderSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"cert.png  AUTHENTIC", "overall=0.84", "cert number CERT-2024-123456", "watermark detected", "cert similarity=1.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}

	buf.Reset()
	renderSummary(&buf, "bad.png", &models.VerificationResult{Success: false, Error: "recognition failed"})
	if !strings.Contains(buf.String(), "FAILED") || !strings.Contains(buf.String(), "recognition failed") {
		t.Errorf("unexpected failure summary:\n%s", buf.String())
	}
}
