// Package acquire drives one material acquisition run: local library or remote search,
// dedupe across terms, download through the cache, stop once the duration budget is met.
package acquire

import (
	"context"
	"errors"
	"log"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/snapetech/clipstock/internal/aspect"
	"github.com/snapetech/clipstock/internal/ledger"
	"github.com/snapetech/clipstock/internal/library"
	"github.com/snapetech/clipstock/internal/material"
	"github.com/snapetech/clipstock/internal/materializer"
	"github.com/snapetech/clipstock/internal/metrics"
	"github.com/snapetech/clipstock/internal/safeurl"
)

// Acquisition owns the [ProgressStart, ProgressStart+ProgressSpan] slice of the caller's 0-100
// progress scale; earlier and later pipeline phases report the rest.
const (
	ProgressStart = 40
	ProgressSpan  = 45

	// DefaultMaxClipDuration is the per-clip contribution cap (seconds) when Options leaves it unset.
	DefaultMaxClipDuration = 5.0
)

// Options is the read-only per-run configuration.
type Options struct {
	Aspect aspect.Aspect
	// MinClipDuration filters catalog items; 0 = MaxClipDuration.
	MinClipDuration float64
	// MaxClipDuration caps how much one clip counts toward the target; 0 = DefaultMaxClipDuration.
	MaxClipDuration  float64
	UseLocalLibrary  bool
	LocalLibraryPath string
}

func (o Options) maxClip() float64 {
	if o.MaxClipDuration > 0 {
		return o.MaxClipDuration
	}
	return DefaultMaxClipDuration
}

func (o Options) minClip() float64 {
	if o.MinClipDuration > 0 {
		return o.MinClipDuration
	}
	return o.maxClip()
}

// Request is one acquisition: search terms in priority order and the total duration to cover.
type Request struct {
	Terms          []string
	TargetDuration float64
	Options        Options
}

type Source string

const (
	SourceNone   Source = "none"
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Result lists accepted clips in acceptance order. It may be shorter than requested
// when material runs out; callers decide whether that is enough.
type Result struct {
	RunID string
	Paths []string
	// TotalDuration is the capped duration credited for remote clips (0 for local material).
	TotalDuration float64
	Source        Source
}

// Searcher is the part of a catalog client the orchestrator needs.
type Searcher interface {
	Name() string
	Search(ctx context.Context, term string, minDuration float64, a aspect.Aspect) ([]material.Candidate, error)
}

// Recorder persists accepted clips (see ledger.Store).
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

type Orchestrator struct {
	Searcher Searcher
	Fetcher  materializer.Fetcher
	// Scan lists a local library; nil = library.Scan.
	Scan    func(dir string) ([]string, error)
	Ledger  Recorder
	Metrics *metrics.Metrics
}

// Progress is the value reported after the i-th (0-based) of total candidates.
func Progress(i, total int) int {
	if total <= 0 {
		return ProgressStart + ProgressSpan
	}
	return ProgressStart + (i+1)*ProgressSpan/total
}

// Acquire runs req. onProgress may be nil. Per-term and per-candidate failures are logged
// and skipped; Acquire itself never fails. Cancelling ctx stops between network operations
// and returns what was collected so far.
func (o *Orchestrator) Acquire(ctx context.Context, req Request, onProgress func(int)) Result {
	start := time.Now()
	res := Result{RunID: uuid.NewString(), Source: SourceNone}
	defer func() {
		o.Metrics.ObserveAcquire(time.Since(start).Seconds())
		o.Metrics.Accepted(string(res.Source), len(res.Paths))
		log.Printf("acquire: done run=%s source=%s clips=%d duration=%.1fs target=%.1fs elapsed=%s",
			res.RunID, res.Source, len(res.Paths), res.TotalDuration, req.TargetDuration, time.Since(start).Round(time.Millisecond))
	}()

	opts := req.Options
	if opts.UseLocalLibrary && opts.LocalLibraryPath != "" {
		if paths := o.scanLocal(opts.LocalLibraryPath); len(paths) > 0 {
			res.Paths = paths
			res.Source = SourceLocal
			return res
		}
		log.Printf("acquire: local library %q has no material; falling back to remote search", opts.LocalLibraryPath)
	}

	candidates := o.search(ctx, req.Terms, opts)
	if len(candidates) == 0 {
		return res
	}
	res.Source = SourceRemote
	maxClip := opts.maxClip()
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			log.Printf("acquire: stopped run=%s after %d/%d candidates: %v", res.RunID, i, len(candidates), err)
			break
		}
		path, err := o.Fetcher.Fetch(ctx, c.URL)
		if err != nil {
			log.Printf("acquire: skip candidate %d/%d %s err=%v", i+1, len(candidates), redacted(c), err)
			continue
		}
		res.Paths = append(res.Paths, path)
		if onProgress != nil {
			onProgress(Progress(i, len(candidates)))
		}
		res.TotalDuration += math.Min(maxClip, c.Duration)
		o.record(ctx, res.RunID, c, path)
		if res.TotalDuration >= req.TargetDuration {
			break
		}
	}
	return res
}

func (o *Orchestrator) scanLocal(dir string) []string {
	scan := o.Scan
	if scan == nil {
		scan = library.Scan
	}
	paths, err := scan(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("acquire: local library missing dir=%q", dir)
		} else {
			log.Printf("acquire: local library scan failed dir=%q err=%v", dir, err)
		}
		return nil
	}
	log.Printf("acquire: local library dir=%q clips=%d", dir, len(paths))
	return paths
}

// search collects deduplicated candidates, term order first, catalog order within a term.
func (o *Orchestrator) search(ctx context.Context, terms []string, opts Options) []material.Candidate {
	var dedup material.Dedup
	var all []material.Candidate
	for _, term := range terms {
		if ctx.Err() != nil {
			break
		}
		found, err := o.Searcher.Search(ctx, term, opts.minClip(), opts.Aspect)
		if err != nil {
			log.Printf("acquire: search %s term=%q failed: %v", o.Searcher.Name(), term, err)
			continue
		}
		fresh := dedup.Accept(found)
		log.Printf("acquire: search %s term=%q found=%d new=%d", o.Searcher.Name(), term, len(found), len(fresh))
		all = append(all, fresh...)
	}
	return all
}

func (o *Orchestrator) record(ctx context.Context, runID string, c material.Candidate, path string) {
	if o.Ledger == nil {
		return
	}
	err := o.Ledger.Record(ctx, ledger.Entry{
		RunID:     runID,
		Provider:  c.Provider,
		SourceURL: c.URL,
		LocalPath: path,
		Duration:  c.Duration,
	})
	if err != nil {
		log.Printf("acquire: ledger record failed path=%q err=%v", path, err)
	}
}

func redacted(c material.Candidate) material.Candidate {
	c.URL = safeurl.Redact(c.URL)
	return c
}
