package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Salary is the structured form some listings carry. The remote source is not
// trustworthy about its salary shape, so records store the raw text and this
// struct only exists transiently on read.
type Salary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Period   string  `json:"period,omitempty"`
}

// ParseSalary interprets the opaque salary text of a record. When the text is
// structured JSON it returns the parsed form; on any parse failure it falls
// back to the raw text unchanged. It never fails.
func ParseSalary(raw string) (Salary, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return Salary{}, false
	}

	var s Salary
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return Salary{}, false
	}
	if s.Min == 0 && s.Max == 0 && s.Currency == "" && s.Period == "" {
		return Salary{}, false
	}
	return s, true
}

// FormatSalary renders the salary text for display, using the structured form
// when it parses and the raw text otherwise.
func FormatSalary(raw string) string {
	s, ok := ParseSalary(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	return s.String()
}

func (s Salary) String() string {
	var b strings.Builder
	switch {
	case s.Min > 0 && s.Max > 0:
		b.WriteString(fmt.Sprintf("%s - %s", formatAmount(s.Min), formatAmount(s.Max)))
	case s.Min > 0:
		b.WriteString("from " + formatAmount(s.Min))
	case s.Max > 0:
		b.WriteString("up to " + formatAmount(s.Max))
	}
	if s.Currency != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s.Currency)
	}
	if s.Period != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("per " + s.Period)
	}
	return b.String()
}

func formatAmount(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
}
