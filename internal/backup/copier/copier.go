/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

C6: the parallel copy executor. Runs C5's job list across a worker pool,
respecting the dual-bin size partitioning in spec.md §4.6, and reports
intended manifest mutations back to the coordinator via per-worker
channels so the manifest itself stays single-writer.
*/
package copier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"pig/internal/backup/errs"
	"pig/internal/backup/fs"
	"pig/internal/backup/manifest"
	"pig/internal/backup/planner"
)

// smallLargeThreshold is the byte boundary splitting jobs into the small
// and large bins (spec.md §4.6).
const smallLargeThreshold = 65536

// maxWorkers is the hard ceiling on worker count regardless of request.
const maxWorkers = 32

// Options controls the copy phase.
type Options struct {
	Workers  int           // requested worker count, clamped per WorkerCount
	Checksum bool          // hash destination on success
	Compress bool          // gzip-compress destination writes
	Timeout  time.Duration // 0 disables the per-backup copy timeout
}

// messageKind identifies the manifest mutation a worker is requesting.
type messageKind int

const (
	msgNone messageKind = iota
	msgRemove
	msgChecksum
)

// message is one worker→coordinator report. Messages within a single
// worker's channel preserve emission order; across workers no order is
// guaranteed or required, since each message names its own target entry.
type message struct {
	kind     messageKind
	section  string
	key      string
	checksum string
}

// WorkerCount computes min(requested, 32) further capped by
// ceil(totalFiles/10), per spec.md §4.6.
func WorkerCount(requested, totalFiles int) int {
	if requested <= 0 {
		requested = 1
	}
	if requested > maxWorkers {
		requested = maxWorkers
	}
	if totalFiles <= 0 {
		return 1
	}
	ceiling := (totalFiles + 9) / 10
	if ceiling < 1 {
		ceiling = 1
	}
	if requested > ceiling {
		requested = ceiling
	}
	return requested
}

// partition splits jobs (already sorted by the planner into
// (tablespaceIdx, size, fileSeq) order) into per-worker slices using the
// dual-bin round-robin scheme: large jobs advance a worker once its
// accumulated bytes cross totalLargeBytes/workers, small jobs advance
// once its accumulated count crosses totalSmall/workers. This avoids a
// single multi-GB file stalling one worker while others idle, without a
// global size sort that would break resume determinism.
func partition(jobs []planner.Job, workers int) [][]planner.Job {
	out := make([][]planner.Job, workers)
	if workers <= 1 {
		out[0] = jobs
		return out
	}

	var large, small []planner.Job
	var totalLarge int64
	var totalSmall int
	for _, j := range jobs {
		if j.Size >= smallLargeThreshold {
			large = append(large, j)
			totalLarge += j.Size
		} else {
			small = append(small, j)
			totalSmall++
		}
	}

	dealLarge := func() {
		if len(large) == 0 {
			return
		}
		perWorker := totalLarge / int64(workers)
		if perWorker <= 0 {
			perWorker = 1
		}
		w := 0
		var acc int64
		for _, j := range large {
			out[w] = append(out[w], j)
			acc += j.Size
			if acc >= perWorker && w < workers-1 {
				w++
				acc = 0
			}
		}
	}
	dealSmall := func() {
		if len(small) == 0 {
			return
		}
		perWorker := totalSmall / workers
		if perWorker <= 0 {
			perWorker = 1
		}
		w := 0
		acc := 0
		for _, j := range small {
			out[w] = append(out[w], j)
			acc++
			if acc >= perWorker && w < workers-1 {
				w++
				acc = 0
			}
		}
	}
	dealLarge()
	dealSmall()
	return out
}

// Run executes jobs against f, applying hard links directly on the
// coordinator (cheap, no worker needed) and fanning copy/checksum-only
// jobs out across a worker pool. On success it mutates m with every
// reported remove/checksum message. On any worker error it cancels the
// remaining workers, waits for them to exit, and returns without
// mutating m further — the temp directory is left intact for a later
// resume.
func Run(ctx context.Context, m *manifest.Manifest, jobs []planner.Job, f fs.FS, opts Options) error {
	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("copier: mint run id: %w", err)
	}
	log := logrus.WithField("run", runID.String())

	var workJobs []planner.Job
	for _, j := range jobs {
		switch j.Action {
		case planner.ActionHardLink:
			if err := f.LinkCreate(j.SrcPath, j.DstPath, true, false); err != nil {
				return fmt.Errorf("copier: hard link %s: %w", j.Key, err)
			}
		case planner.ActionSkip:
			// nothing to do; bytes live under the referenced backup.
		case planner.ActionCopy, planner.ActionChecksumOnly:
			workJobs = append(workJobs, j)
		}
	}
	if len(workJobs) == 0 {
		return nil
	}

	workers := WorkerCount(opts.Workers, len(workJobs))
	buckets := partition(workJobs, workers)
	log.WithField("workers", workers).WithField("jobs", len(workJobs)).Info("copy: starting worker pool")

	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	} else {
		runCtx, cancel = context.WithCancel(ctx)
		defer cancel()
	}

	results := make([]chan message, workers)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i, bucket := range buckets {
		results[i] = make(chan message, len(bucket))
		wg.Add(1)
		go func(idx int, jobs []planner.Job, out chan<- message) {
			defer wg.Done()
			defer close(out)
			workerFS := f.Clone(idx)
			for _, j := range jobs {
				select {
				case <-runCtx.Done():
					return
				default:
				}
				msg, err := runJob(workerFS, j, opts)
				if err != nil {
					errCh <- fmt.Errorf("copier: worker %d job %s: %w", idx, j.Key, err)
					cancel()
					return
				}
				out <- msg
			}
		}(i, bucket, results[i])
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
waitLoop:
	for {
		select {
		case <-done:
			break waitLoop
		case <-runCtx.Done():
			wg.Wait()
			break waitLoop
		case <-ticker.C:
			// polling per spec.md §5: checks worker errors, joinability,
			// timeout each tick via the other select cases.
		}
	}

	select {
	case err := <-errCh:
		return err
	default:
	}
	if runCtx.Err() != nil && ctx.Err() == nil {
		return fmt.Errorf("copier: %w: copy phase timed out", errs.ErrProtocol)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, ch := range results {
		for msg := range ch {
			applyMessage(m, msg)
		}
	}
	return nil
}

// runJob performs one copy or checksum-only job and translates its
// outcome into the message the coordinator will apply to the manifest.
func runJob(f fs.FS, j planner.Job, opts Options) (message, error) {
	if j.Action == planner.ActionChecksumOnly {
		sum, err := f.Hash(j.SrcPath, opts.Compress)
		if err != nil {
			return message{}, err
		}
		return message{kind: msgChecksum, section: j.Section, key: j.Key, checksum: sum}, nil
	}

	result, err := f.Copy(j.SrcPath, j.DstPath, false, opts.Compress, true, opts.Checksum, true)
	if err != nil {
		return message{}, err
	}
	if result.Missing {
		// The database removed this file mid-backup. Not an error: the
		// coordinator drops the manifest entry instead.
		return message{kind: msgRemove, section: j.Section, key: j.Key}, nil
	}
	if opts.Checksum {
		return message{kind: msgChecksum, section: j.Section, key: j.Key, checksum: result.Checksum}, nil
	}
	return message{kind: msgNone, section: j.Section, key: j.Key}, nil
}

// applyMessage mutates m per one worker-reported message. msgNone is a
// successful copy with checksum mode off: nothing needs writing back.
func applyMessage(m *manifest.Manifest, msg message) {
	switch msg.kind {
	case msgRemove:
		m.DeleteEntry(msg.section, msg.key)
	case msgChecksum:
		m.Set(msg.section, msg.key, "checksum", manifest.String(msg.checksum))
	}
}
