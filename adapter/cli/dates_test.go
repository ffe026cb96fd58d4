package cli

import (
	"testing"
	"time"
)

func TestParseDate_ISO(t *testing.T) {
	date, err := parseDate("2025-06-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("expected %v, got %v", want, date)
	}
}

func TestParseDate_Relative(t *testing.T) {
	today, err := parseDate("today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tomorrow, err := parseDate("tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tomorrow.Equal(today.AddDate(0, 0, 1)) {
		t.Errorf("expected tomorrow to be one day after today")
	}
}

func TestParseDate_Weekday(t *testing.T) {
	date, err := parseDate("Friday")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if date.Weekday() != time.Friday {
		t.Errorf("expected a Friday, got %s", date.Weekday())
	}
	if !date.After(time.Now().AddDate(0, 0, -1)) {
		t.Error("expected the next occurrence, not a past date")
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := parseDate("someday"); err == nil {
		t.Error("expected error for unparseable input")
	}
}

func TestNextWeekday_AlwaysAdvances(t *testing.T) {
	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	next := nextWeekday(monday, time.Monday)
	if !next.Equal(monday.AddDate(0, 0, 7)) {
		t.Errorf("expected the following Monday, got %v", next)
	}
}
