package models

import "testing"

func TestParseSalaryStructured(t *testing.T) {
	s, ok := ParseSalary(`{"min": 90000, "max": 120000, "currency": "EUR", "period": "year"}`)
	if !ok {
		t.Fatalf("expected structured salary to parse")
	}
	if s.Min != 90000 || s.Max != 120000 || s.Currency != "EUR" || s.Period != "year" {
		t.Fatalf("unexpected salary: %+v", s)
	}
	if got := s.String(); got != "90000 - 120000 EUR per year" {
		t.Fatalf("String() = %q", got)
	}
}

func TestParseSalaryFallsBackToRawText(t *testing.T) {
	for _, raw := range []string{
		"Competitive",
		"{not valid json",
		`{"unknown": true}`,
		"",
	} {
		if _, ok := ParseSalary(raw); ok {
			t.Fatalf("expected %q to fall back to raw text", raw)
		}
	}
}

func TestFormatSalary(t *testing.T) {
	if got := FormatSalary("  Competitive  "); got != "Competitive" {
		t.Fatalf("FormatSalary() = %q, want %q", got, "Competitive")
	}
	if got := FormatSalary(`{"min": 50000, "currency": "USD"}`); got != "from 50000 USD" {
		t.Fatalf("FormatSalary() = %q, want %q", got, "from 50000 USD")
	}
	if got := FormatSalary(`{"max": 60.5}`); got != "up to 60.5" {
		t.Fatalf("FormatSalary() = %q, want %q", got, "up to 60.5")
	}
}
