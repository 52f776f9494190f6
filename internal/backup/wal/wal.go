/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

C7: WAL segment range derivation and collection. A segment name is
TTTTTTTTMMMMMMMMmmmmmmmm — timeline, major, minor, each 8 hex chars
(spec.md §4.7).
*/
package wal

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pig/internal/backup/errs"
	"pig/internal/backup/fs"
)

const segmentLen = 24

// maxSteps bounds Range's loop so a malformed or unreachable stop cannot
// spin forever.
const maxSteps = 1 << 20

// parseSegment splits a 24-hex-char segment name into its timeline,
// major, and minor components.
func parseSegment(seg string) (timeline, major, minor uint32, err error) {
	if len(seg) != segmentLen {
		return 0, 0, 0, fmt.Errorf("wal: %w: segment %q is not %d hex chars", errs.ErrParam, seg, segmentLen)
	}
	parts := make([]uint32, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(seg[i*8:i*8+8], 16, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("wal: %w: segment %q: %v", errs.ErrParam, seg, err)
		}
		parts[i] = uint32(v)
	}
	return parts[0], parts[1], parts[2], nil
}

// formatSegment renders a segment name from its components.
func formatSegment(timeline, major, minor uint32) string {
	return fmt.Sprintf("%08x%08x%08x", timeline, major, minor)
}

// Range returns every segment from start to stop inclusive, incrementing
// minor by one each step and carrying into major once minor would reach
// 256 (or 255 when skipFF is set, modeling the historical quirk where
// older database versions never wrote the minor value 0xFF). start and
// stop must share a timeline.
func Range(start, stop string, skipFF bool) ([]string, error) {
	startTL, startMajor, startMinor, err := parseSegment(start)
	if err != nil {
		return nil, err
	}
	stopTL, stopMajor, stopMinor, err := parseSegment(stop)
	if err != nil {
		return nil, err
	}
	if startTL != stopTL {
		return nil, fmt.Errorf("wal: %w: start and stop segments have different timelines (%08x vs %08x)", errs.ErrParam, startTL, stopTL)
	}

	limit := uint32(256)
	if skipFF {
		limit = 255
	}

	var segs []string
	major, minor := startMajor, startMinor
	for step := 0; ; step++ {
		if step > maxSteps {
			return nil, fmt.Errorf("wal: %w: range from %s to %s did not converge", errs.ErrAssert, start, stop)
		}
		segs = append(segs, formatSegment(startTL, major, minor))
		if major == stopMajor && minor == stopMinor {
			return segs, nil
		}
		minor++
		if minor == limit {
			major++
			minor = 0
		}
	}
}

// CollectOptions parameterizes Collect.
type CollectOptions struct {
	ArchiveRoot  string        // root of the "<TTTTTTTTMMMMMMMM>/<segment>[...]" archive tree
	DestDir      string        // base/pg_xlog destination directory
	CompressExt  string        // archive compression extension, e.g. "gz"
	Compress     bool          // whether the destination copy should itself be compressed
	WaitTimeout  time.Duration // defaults to 600s if zero
	PollInterval time.Duration // defaults to 1s if zero
}

// Collect waits for exactly one archived file matching seg in its
// timeline/major directory under opts.ArchiveRoot, then copies it into
// opts.DestDir/seg, transparently decompressing if the archived file
// carries opts.CompressExt. Zero or more than one match is fatal, as is
// exceeding opts.WaitTimeout.
func Collect(ctx context.Context, f fs.FS, seg string, opts CollectOptions) error {
	timeout := opts.WaitTimeout
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	if len(seg) != segmentLen {
		return fmt.Errorf("wal: %w: segment %q is not %d hex chars", errs.ErrParam, seg, segmentLen)
	}
	archiveDir := filepath.Join(opts.ArchiveRoot, seg[:16])

	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(seg) + `(-[0-9a-f]+)?(\.` + regexp.QuoteMeta(opts.CompressExt) + `)?$`)
	if err != nil {
		return fmt.Errorf("wal: %w: bad segment pattern: %v", errs.ErrAssert, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		entries, err := f.List(archiveDir)
		if err != nil {
			return fmt.Errorf("wal: list archive dir %q: %w", archiveDir, err)
		}
		var match *fs.Entry
		matchCount := 0
		for i := range entries {
			if pattern.MatchString(entries[i].Name) {
				matchCount++
				match = &entries[i]
			}
		}
		switch {
		case matchCount == 1:
			return copyMatch(f, opts, archiveDir, seg, match.Name)
		case matchCount > 1:
			return fmt.Errorf("wal: %w: segment %q has %d archive matches, want exactly one", errs.ErrProtocol, seg, matchCount)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("wal: %w: timed out waiting for segment %q", errs.ErrProtocol, seg)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

func copyMatch(f fs.FS, opts CollectOptions, archiveDir, seg, matchName string) error {
	srcCompressed := opts.CompressExt != "" && strings.HasSuffix(matchName, "."+opts.CompressExt)
	srcPath := filepath.Join(archiveDir, matchName)
	dstPath := filepath.Join(opts.DestDir, seg)
	_, err := f.Copy(srcPath, dstPath, srcCompressed, opts.Compress, false, false, true)
	if err != nil {
		return fmt.Errorf("wal: copy segment %q: %w", seg, err)
	}
	return nil
}

// CollectRange waits for and copies every segment in segs, in order.
func CollectRange(ctx context.Context, f fs.FS, segs []string, opts CollectOptions) error {
	for _, seg := range segs {
		if err := Collect(ctx, f, seg, opts); err != nil {
			return err
		}
	}
	return nil
}
