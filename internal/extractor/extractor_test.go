package extractor

import (
	"regexp"
	"testing"
)

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestExtract_FullCertificate(t *testing.T) {
	text := `CERTIFICATE OF AUTHENTICITY
CERT-2024-123456
Brand: Chanel
Model: Classic Flap Bag
Serial Number: SN-88213
Date: 2024-03-15
Issued by: Maison Chanel Paris`

	f := NewDefault().Extract(text)

	checks := []struct {
		name string
		got  *string
		want string
	}{
		{"certNumber", f.CertNumber, "CERT-2024-123456"},
		{"brand", f.Brand, "Chanel"},
		{"model", f.Model, "Classic Flap Bag"},
		{"serialNumber", f.SerialNumber, "SN-88213"},
		{"date", f.Date, "2024-03-15"},
		{"issuer", f.Issuer, "Maison Chanel Paris"},
	}
	for _, c := range checks {
		if deref(c.got) != c.want {
			t.Errorf("%s = %q, want %q", c.name, deref(c.got), c.want)
		}
	}
	if f.RequiredPresent() != 3 {
		t.Errorf("expected 3 required fields, got %d", f.RequiredPresent())
	}
}

func TestExtract_CertNumberPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"structured beats labelled", "Certificate No: ABC-123\nCERT-2024-000001", "CERT-2024-000001"},
		{"structured beats labelled regardless of position", "CERT-2024-000001 Certificate No: ABC-123", "CERT-2024-000001"},
		{"labelled english", "Certificate Number: ab-77.1", "ab-77"},
		{"labelled korean", "인증서 번호: KR-2023-99", "KR-2023-99"},
		{"generic number label", "No: X99-1", "X99-1"},
	}

	e := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deref(e.Extract(tt.text).CertNumber); got != tt.want {
				t.Errorf("certNumber = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_OtherNumberLabelsAreNotCertNumbers(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantCert   string
		wantSerial string
	}{
		{"serial no", "Serial No: SN-777", "<nil>", "SN-777"},
		{"serial number", "Serial Number: SN-778", "<nil>", "SN-778"},
		{"model no", "Model No. ABC123", "<nil>", "<nil>"},
		{"reference no", "Reference No. 5711", "<nil>", "<nil>"},
		{"word starting with no", "CERTIFICATE NOTICE\nSomething", "<nil>", "<nil>"},
		{"generic label after excluded one", "Serial No: SN-1\nNo: X99-1", "X99-1", "SN-1"},
	}

	e := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Extract(tt.text)
			if got := deref(f.CertNumber); got != tt.wantCert {
				t.Errorf("certNumber = %q, want %q", got, tt.wantCert)
			}
			if got := deref(f.SerialNumber); got != tt.wantSerial {
				t.Errorf("serialNumber = %q, want %q", got, tt.wantSerial)
			}
		})
	}
}

func TestExtract_BrandOrderAndDiacritics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"diacritics stripped", "Maison Hermès Paris", "Hermes"},
		{"unaccented text still matches", "HERMES SELLIER", "Hermes"},
		{"case insensitive", "made by GUCCI", "Gucci"},
		{"list order wins over text order", "Gucci strap for Louis Vuitton trunk", "Louis Vuitton"},
		{"accented list entry", "CELINE triomphe", "Celine"},
	}

	e := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deref(e.Extract(tt.text).Brand); got != tt.want {
				t.Errorf("brand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Date: 2024-03-15", "2024-03-15"},
		{"Issued 15/03/2024", "15/03/2024"},
		{"Purchased 15 March 2024", "15 March 2024"},
		{"on Mar. 5, 2023", "Mar. 5, 2023"},
		{"발행일 2024년 3월 15일", "2024년 3월 15일"},
		{"Date: 2024-02-31", "2024-02-31"},
		{"first 2023.01.02 then 05/06/2022", "2023.01.02"},
	}

	e := NewDefault()
	for _, tt := range tests {
		if got := deref(e.Extract(tt.text).Date); got != tt.want {
			t.Errorf("Extract(%q).Date = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtract_SerialAndIssuer(t *testing.T) {
	tests := []struct {
		text       string
		wantSerial string
		wantIssuer string
	}{
		{"S/N: 12AB-9\nCertified by: Swiss Watch Lab  ", "12AB-9", "Swiss Watch Lab"},
		{"시리얼 번호: K-1234\n발행처: 한국명품감정원", "K-1234", "한국명품감정원"},
		{"Serial: 777\nIssued by Atelier", "777", "Atelier"},
	}

	e := NewDefault()
	for _, tt := range tests {
		f := e.Extract(tt.text)
		if got := deref(f.SerialNumber); got != tt.wantSerial {
			t.Errorf("Extract(%q).SerialNumber = %q, want %q", tt.text, got, tt.wantSerial)
		}
		if got := deref(f.Issuer); got != tt.wantIssuer {
			t.Errorf("Extract(%q).Issuer = %q, want %q", tt.text, got, tt.wantIssuer)
		}
	}
}

func TestExtract_Model(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"keyword then value", "Model: Speedy 30", "Speedy 30"},
		{"skips line with keyword but no value", "Model:\nStyle  Kelly   28", "Kelly 28"},
		{"substring without token is ignored", "Lifestyle collection\nRef 5711/1A", "5711/1A"},
		{"korean keyword", "모델: 클래식 플랩", "클래식 플랩"},
		{"korean keyword with suffix", "모델명: 버킨", "버킨"},
		{"hash after keyword", "Model#: X-200", "X-200"},
		{"number label after keyword", "Model No. ABC123", "ABC123"},
		{"reference number", "Reference No. 5711", "5711"},
		{"no keyword", "CERT-2024-000001", "<nil>"},
	}

	e := NewDefault()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deref(e.Extract(tt.text).Model); got != tt.want {
				t.Errorf("model = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_EmptyText(t *testing.T) {
	f := NewDefault().Extract("")
	if f.CertNumber != nil || f.Brand != nil || f.Model != nil || f.Date != nil || f.SerialNumber != nil || f.Issuer != nil {
		t.Errorf("expected all fields nil, got %+v", f)
	}
	if f.RequiredPresent() != 0 {
		t.Errorf("expected 0 required fields, got %d", f.RequiredPresent())
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "CERT-2024-000001\nHermès\n2024-01-01\nModel: Birkin 25"
	e := NewDefault()
	first := e.Extract(text)
	for i := 0; i < 5; i++ {
		again := e.Extract(text)
		if deref(again.CertNumber) != deref(first.CertNumber) ||
			deref(again.Brand) != deref(first.Brand) ||
			deref(again.Date) != deref(first.Date) ||
			deref(again.Model) != deref(first.Model) {
			t.Fatalf("extraction changed between calls: %+v vs %+v", first, again)
		}
	}
}

func TestFirstMatch_RulesAreReorderable(t *testing.T) {
	rules := DefaultRules()
	text := "Certificate No: ABC-123\nCERT-2024-000001"

	tag, v, ok := FirstMatch(rules.CertNumber, text)
	if !ok || tag != "structured" || v != "CERT-2024-000001" {
		t.Fatalf("default order: got (%q, %q, %v)", tag, v, ok)
	}

	reordered := []Rule{rules.CertNumber[1], rules.CertNumber[0]}
	tag, v, ok = FirstMatch(reordered, text)
	if !ok || tag != "labelled-en" || v != "ABC-123" {
		t.Errorf("reordered: got (%q, %q, %v)", tag, v, ok)
	}

	custom := New(Rules{CertNumber: []Rule{{Tag: "custom", Pattern: regexp.MustCompile(`ZX-\d+`)}}})
	if got := deref(custom.Extract("ref ZX-42").CertNumber); got != "ZX-42" {
		t.Errorf("custom rule: got %q", got)
	}
}

func TestStripDiacritics(t *testing.T) {
	tests := map[string]string{
		"Hermès": "Hermes",
		"Céline": "Celine",
		"Crème":  "Creme",
		"에르메스":   "에르메스",
		"plain":  "plain",
	}
	for in, want := range tests {
		if got := stripDiacritics(in); got != want {
			t.Errorf("stripDiacritics(%q) = %q, want %q", in, got, want)
		}
	}
}
