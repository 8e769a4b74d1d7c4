package reference

import (
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	got := Generate(DomainConcession, 42, date)
	if got != "CONC-42-20250301" {
		t.Fatalf("expected CONC-42-20250301, got %s", got)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	date := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)

	first := Generate(DomainConcession, 7, date)
	second := Generate(DomainConcession, 7, date)
	if first != second {
		t.Fatalf("reference not deterministic: %s vs %s", first, second)
	}
}

func TestGenerateIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.June, 15, 21, 30, 0, 0, time.UTC)

	if Generate(DomainConcession, 9, morning) != Generate(DomainConcession, 9, evening) {
		t.Fatal("references for the same day should match regardless of time of day")
	}
}

func TestDomainLabel(t *testing.T) {
	if DomainConcession.Label() != "Concesión" {
		t.Fatalf("unexpected label %s", DomainConcession.Label())
	}
}
