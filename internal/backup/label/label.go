/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Backup label grammar: generation, parsing, and prior-backup discovery.
*/
package label

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Backup types, matching the manifest's backup:type attribute.
const (
	Full = "full"
	Diff = "diff"
	Incr = "incr"
)

// layout is the timestamp format used inside a label: YYYYMMDD-HHMMSS.
const layout = "20060102-150405"

const (
	fullSuffix = "F"
	diffSuffix = "D"
	incrSuffix = "I"
)

var (
	fullRe = regexp.MustCompile(`^\d{8}-\d{6}F$`)
	diffRe = regexp.MustCompile(`^\d{8}-\d{6}F_\d{8}-\d{6}D$`)
	incrRe = regexp.MustCompile(`^\d{8}-\d{6}F_\d{8}-\d{6}I$`)
)

// Predicate returns an anchored regex matching labels of the requested
// kinds. At least one of includeFull/includeDiff/includeIncr must be true.
func Predicate(includeFull, includeDiff, includeIncr bool) (*regexp.Regexp, error) {
	if !includeFull && !includeDiff && !includeIncr {
		return nil, fmt.Errorf("label: at least one backup type must be requested")
	}
	var alts []string
	if includeFull {
		alts = append(alts, fullRe.String()[1:len(fullRe.String())-1])
	}
	if includeDiff {
		alts = append(alts, diffRe.String()[1:len(diffRe.String())-1])
	}
	if includeIncr {
		alts = append(alts, incrRe.String()[1:len(incrRe.String())-1])
	}
	pattern := "^(?:"
	for i, a := range alts {
		if i > 0 {
			pattern += "|"
		}
		pattern += a
	}
	pattern += ")$"
	return regexp.MustCompile(pattern), nil
}

// IsFull reports whether label matches the full-backup grammar.
func IsFull(l string) bool { return fullRe.MatchString(l) }

// IsDiff reports whether label matches the differential grammar.
func IsDiff(l string) bool { return diffRe.MatchString(l) }

// IsIncr reports whether label matches the incremental grammar.
func IsIncr(l string) bool { return incrRe.MatchString(l) }

// TypeOf returns the backup type encoded by label, or "" if label matches
// none of the three grammars.
func TypeOf(l string) string {
	switch {
	case IsFull(l):
		return Full
	case IsDiff(l):
		return Diff
	case IsIncr(l):
		return Incr
	default:
		return ""
	}
}

// AncestorFull returns the 16-character full-backup prefix of label,
// which for a full backup is the label itself.
func AncestorFull(l string) string {
	if len(l) < 16 {
		return l
	}
	return l[:16]
}

// SortDescending sorts labels in reverse lexicographic order, which is
// reverse chronological order within a single full-backup chain.
func SortDescending(labels []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(labels)))
}

// FindPrior returns the most recent label eligible to be the prior backup
// for a new backup of the given type, per spec.md §4.1:
//
//   - type=incr: most recent label matching {full|diff|incr}; if none,
//     fall back to the most recent full.
//   - type=diff or type=full: most recent full.
//
// The caller, not FindPrior, is responsible for coercing type to full when
// no full backup exists at all (ok=false).
func FindPrior(labels []string, backupType string) (string, bool) {
	sorted := append([]string(nil), labels...)
	SortDescending(sorted)

	if backupType == Incr {
		for _, l := range sorted {
			if IsFull(l) || IsDiff(l) || IsIncr(l) {
				return l, true
			}
		}
	}
	for _, l := range sorted {
		if IsFull(l) {
			return l, true
		}
	}
	return "", false
}

// New composes a new backup label per the label grammar in spec.md §3.
//
// For backupType=full, prior is ignored and the label is
// "YYYYMMDD-HHMMSSF". For backupType in {diff,incr}, prior must be a valid
// label (any type) and the new label is
// "<ancestor-full-prefix>_YYYYMMDD-HHMMSSX" where X is D or I.
func New(prior string, backupType string, now time.Time) (string, error) {
	ts := now.UTC().Format(layout)
	switch backupType {
	case Full:
		return ts + fullSuffix, nil
	case Diff, Incr:
		if prior == "" {
			return "", fmt.Errorf("label: prior label required for type %q", backupType)
		}
		ancestor := AncestorFull(prior)
		suffix := diffSuffix
		if backupType == Incr {
			suffix = incrSuffix
		}
		return ancestor + "_" + ts + suffix, nil
	default:
		return "", fmt.Errorf("label: unknown backup type %q", backupType)
	}
}
