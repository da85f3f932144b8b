package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/anime-shed/coa-verifier-go/pkg/models"
)

type renderer func(w io.Writer, source string, result *models.VerificationResult) error

var (
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow, color.Bold)
	colorCyan   = color.New(color.FgCyan)
)

func rendererFor(format string) (renderer, error) {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON, nil
	case "yaml", "yml":
		return renderYAML, nil
	case "summary", "":
		return renderSummary, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml or summary)", format)
	}
}

func renderJSON(w io.Writer, _ string, result *models.VerificationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// renderYAML reuses the JSON field names and order by decoding the JSON form into a node tree
func renderYAML(w io.Writer, _ string, result *models.VerificationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "---\n")
	return err
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func renderSummary(w io.Writer, source string, result *models.VerificationResult) error {
	if !result.Success {
		colorRed.Fprintf(w, "%s  FAILED\n", source)
		fmt.Fprintf(w, "  error: %s\n\n", result.Error)
		return nil
	}

	verdict, c := "NOT AUTHENTIC", colorYellow
	if result.IsAuthentic {
		verdict, c = "AUTHENTIC", colorGreen
	}
	c.Fprintf(w, "%s  %s", source, verdict)
	fmt.Fprintf(w, "  overall=%.2f confidence=%.1f\n", result.Authenticity.Overall, result.Confidence)

	f := result.Fields
	for _, row := range []struct {
		label string
		value *string
	}{
		{"cert number", f.CertNumber},
		{"brand", f.Brand},
		{"model", f.Model},
		{"date", f.Date},
		{"serial", f.SerialNumber},
		{"issuer", f.Issuer},
	} {
		if row.value != nil {
			colorCyan.Fprintf(w, "  %-12s", row.label)
			fmt.Fprintf(w, "%s\n", *row.value)
		}
	}

	comp := result.Authenticity.Components
	fmt.Fprintf(w, "  components  ocr=%.2f data=%.2f texture=%.2f ink=%.2f\n", comp.OCR, comp.Data, comp.Texture, comp.Ink)

	if d := result.Details; d != nil {
		fmt.Fprintf(w, "  details     watermark %s, paper %s, ink %s, text clarity %s, print %s\n",
			d.Watermark, d.PaperQuality, d.InkQuality, d.TextClarity, d.PrintMethod)
		if d.CertNumberSimilarity != nil {
			fmt.Fprintf(w, "  expected    cert similarity=%.2f\n", *d.CertNumberSimilarity)
		}
		if d.TextWordErrorRate != nil {
			fmt.Fprintf(w, "  expected    word error rate=%.2f\n", *d.TextWordErrorRate)
		}
		if d.TextCharErrorRate != nil {
			fmt.Fprintf(w, "  expected    character error rate=%.2f\n", *d.TextCharErrorRate)
		}
		if len(d.DegradedStages) > 0 {
			colorYellow.Fprintf(w, "  degraded    %s\n", strings.Join(d.DegradedStages, ", "))
		}
	}
	fmt.Fprintln(w)
	return nil
}
