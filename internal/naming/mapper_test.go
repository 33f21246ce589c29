package naming

import (
	"errors"
	"testing"

	"github.com/jmreicha/ssoprofile/internal/core"
)

func TestMap(t *testing.T) {
	mappings := []core.Mapping{
		{From: "Production", To: "Prod"},
		{From: "Production", To: "Ignored"},
		{From: "Sandbox", To: "Sbx"},
	}

	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "Production", expected: "Prod"},
		{raw: "Sandbox", expected: "Sbx"},
		{raw: "production", expected: "production"},
		{raw: "Dev", expected: "Dev"},
	}

	for _, tt := range tests {
		if got := Map(tt.raw, mappings); got != tt.expected {
			t.Errorf("Map(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}

	if got := Map("Dev", nil); got != "Dev" {
		t.Fatalf("Map without mappings = %q", got)
	}
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping("Production:Prod")
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}
	if m.From != "Production" || m.To != "Prod" {
		t.Fatalf("mapping = %+v", m)
	}

	m, err = ParseMapping("Team:a:b")
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}
	if m.From != "Team" || m.To != "a:b" {
		t.Fatalf("mapping split on wrong colon: %+v", m)
	}
}

func TestParseMappingErrors(t *testing.T) {
	for _, value := range []string{"Production", ":Prod", "Production:", " : "} {
		_, err := ParseMapping(value)
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("ParseMapping(%q) expected validation error, got %v", value, err)
		}
	}
}

func TestParseMappings(t *testing.T) {
	mappings, err := ParseMappings([]string{"A:B", "C:D"})
	if err != nil {
		t.Fatalf("ParseMappings failed: %v", err)
	}
	if len(mappings) != 2 || mappings[1].To != "D" {
		t.Fatalf("mappings = %+v", mappings)
	}

	if _, err := ParseMappings([]string{"A:B", "bad"}); err == nil {
		t.Fatal("expected error")
	}
}
