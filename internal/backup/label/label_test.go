package label

import (
	"testing"
	"time"
)

func TestNewFull(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l, err := New("", Full, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "20260102-030405F"
	if l != want {
		t.Fatalf("got %q want %q", l, want)
	}
	if !IsFull(l) {
		t.Fatalf("expected %q to match full grammar", l)
	}
}

func TestNewIncrAncestry(t *testing.T) {
	now := time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC)
	full := "20260101-000000F"
	l, err := New(full, Incr, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsIncr(l) {
		t.Fatalf("expected %q to match incr grammar", l)
	}
	if AncestorFull(l) != full {
		t.Fatalf("I6 violated: ancestor prefix %q != %q", AncestorFull(l), full)
	}
}

func TestNewDiffOfDiffChainsToFull(t *testing.T) {
	now := time.Date(2026, 1, 2, 5, 0, 0, 0, time.UTC)
	full := "20260101-000000F"
	diff, err := New(full, Diff, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	incr, err := New(diff, Incr, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if AncestorFull(incr) != full {
		t.Fatalf("I6 violated across derived chain: got %q want %q", AncestorFull(incr), full)
	}
}

func TestFindPriorIncrPrefersMostRecentOfAnyType(t *testing.T) {
	labels := []string{
		"20260101-000000F",
		"20260101-000000F_20260102-000000D",
		"20260101-000000F_20260103-000000I",
	}
	got, ok := FindPrior(labels, Incr)
	if !ok {
		t.Fatalf("expected a prior")
	}
	want := "20260101-000000F_20260103-000000I"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFindPriorIncrFallsBackToFull(t *testing.T) {
	labels := []string{"20260101-000000F", "20260102-000000F"}
	got, ok := FindPrior(labels, Incr)
	if !ok {
		t.Fatalf("expected a prior")
	}
	if got != "20260102-000000F" {
		t.Fatalf("got %q want most recent full", got)
	}
}

func TestFindPriorDiffAndFullAlwaysUseFull(t *testing.T) {
	labels := []string{
		"20260101-000000F",
		"20260101-000000F_20260105-000000I",
		"20260102-000000F",
	}
	for _, bt := range []string{Diff, Full} {
		got, ok := FindPrior(labels, bt)
		if !ok {
			t.Fatalf("type %s: expected a prior", bt)
		}
		if got != "20260102-000000F" {
			t.Fatalf("type %s: got %q want most recent full", bt, got)
		}
	}
}

func TestFindPriorNoneExists(t *testing.T) {
	_, ok := FindPrior(nil, Full)
	if ok {
		t.Fatalf("expected no prior on empty repo")
	}
}

func TestPredicateRequiresAtLeastOneType(t *testing.T) {
	if _, err := Predicate(false, false, false); err == nil {
		t.Fatalf("expected error when no type requested")
	}
}

func TestPredicateMatchesOnlyRequestedTypes(t *testing.T) {
	re, err := Predicate(true, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !re.MatchString("20260101-000000F") {
		t.Fatalf("expected full label to match full-only predicate")
	}
	if re.MatchString("20260101-000000F_20260102-000000D") {
		t.Fatalf("expected diff label to not match full-only predicate")
	}
}

func TestSortDescending(t *testing.T) {
	labels := []string{"20260101-000000F", "20260103-000000F", "20260102-000000F"}
	SortDescending(labels)
	want := []string{"20260103-000000F", "20260102-000000F", "20260101-000000F"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("index %d: got %q want %q", i, labels[i], want[i])
		}
	}
}
