package cli

import (
	"testing"
)

func TestOverrides(t *testing.T) {
	eventRename = map[string]string{"m-venue": "Hall"}
	eventBudgets = map[string]string{"m-venue": "1200.50", "m-food": "800"}
	eventDuration = map[string]string{"m-food": "3"}
	t.Cleanup(func() { eventRename, eventBudgets, eventDuration = nil, nil, nil })

	ov, err := overrides()
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if len(ov) != 2 {
		t.Fatalf("got %d overrides, want 2", len(ov))
	}
	venue := ov["m-venue"]
	if venue.Name == nil || *venue.Name != "Hall" || venue.Budget == nil || venue.Budget.String() != "1200.5" {
		t.Errorf("m-venue override wrong: %+v", venue)
	}
	food := ov["m-food"]
	if food.DurationDays == nil || *food.DurationDays != 3 || food.Name != nil {
		t.Errorf("m-food override wrong: %+v", food)
	}
}

func TestOverridesRejectsBadNumbers(t *testing.T) {
	eventDuration = map[string]string{"m-food": "three"}
	t.Cleanup(func() { eventDuration = nil })

	if _, err := overrides(); err == nil {
		t.Fatal("expected error for non-numeric duration")
	}
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("start", "2024-06-01")
	if err != nil || d.Format("2006-01-02") != "2024-06-01" {
		t.Fatalf("got %v, %v", d, err)
	}
	if d, err := parseDay("start", ""); err != nil || !d.IsZero() {
		t.Errorf("empty value should give zero time, got %v, %v", d, err)
	}
	if _, err := parseDay("start", "June 1"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1e-aaaa-bbbb"); got != "3f2a9c1e" {
		t.Errorf("got %q", got)
	}
	if got := shortID("plain"); got != "plain" {
		t.Errorf("got %q", got)
	}
}
