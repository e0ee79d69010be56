// Package batch dispatches several PDFs as independent extractions.
package batch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akashicode/pdf2text/internal/extract"
	"github.com/akashicode/pdf2text/internal/reader"
)

// ErrNoPDFs is returned when none of the submitted files is a PDF.
var ErrNoPDFs = errors.New("no PDF files selected")

// Runner is the part of extract.Extractor a batch needs.
type Runner interface {
	Run(ctx context.Context, data []byte, mode extract.Mode, obs extract.Observer) (string, error)
}

// File is one submitted document.
type File struct {
	Name string
	Data []byte
}

// Job identifies one file's extraction.
type Job struct {
	ID    string
	Name  string
	Size  int
	Index int
}

// Result is the outcome of one file.
type Result struct {
	Job      Job
	Text     string
	Err      error
	Duration time.Duration
}

// Failed reports whether the extraction failed.
func (r Result) Failed() bool { return r.Err != nil }

// Observer receives events for every job. Calls for different jobs may
// arrive concurrently; calls for one job are sequential.
type Observer interface {
	Started(job Job)
	Progress(job Job, percent float64)
	Notice(job Job, msg string)
	Finished(res Result)
}

// Options configures Run.
type Options struct {
	// Jobs is the number of files processed at once; <= 0 means one.
	Jobs int
	// Observer is optional.
	Observer Observer
	// Logger is optional.
	Logger *zap.Logger
}

// Run extracts every PDF in files with mode. Non-PDF names are skipped. One
// file failing never stops the others; results keep the order of the
// accepted files.
func Run(ctx context.Context, r Runner, files []File, mode extract.Mode, opts Options) ([]Result, error) {
	var pdfs []File
	for _, f := range files {
		if reader.IsPDF(f.Name) {
			pdfs = append(pdfs, f)
		}
	}
	if len(pdfs) == 0 {
		return nil, ErrNoPDFs
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	limit := opts.Jobs
	if limit <= 0 {
		limit = 1
	}

	results := make([]Result, len(pdfs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, f := range pdfs {
		job := Job{ID: uuid.NewString(), Name: f.Name, Size: len(f.Data), Index: i}
		g.Go(func() error {
			results[i] = runOne(ctx, r, f.Data, job, mode, obs, logger)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func runOne(ctx context.Context, r Runner, data []byte, job Job, mode extract.Mode, obs Observer, logger *zap.Logger) Result {
	log := logger.With(zap.String("job", job.ID), zap.String("file", job.Name))
	log.Info("extraction started", zap.Stringer("mode", mode), zap.Int("bytes", job.Size))
	obs.Started(job)

	start := time.Now()
	text, err := r.Run(ctx, data, mode, extract.Observer{
		Progress: func(p float64) { obs.Progress(job, p) },
		Notice:   func(msg string) { obs.Notice(job, msg) },
	})
	res := Result{Job: job, Text: text, Err: err, Duration: time.Since(start)}

	if err != nil {
		log.Error("extraction failed", zap.Stringer("kind", extract.KindOf(err)), zap.Error(err))
	} else {
		log.Info("extraction finished", zap.Duration("took", res.Duration), zap.Int("chars", len(text)))
	}
	obs.Finished(res)
	return res
}

// OutputName returns the .txt file name for a source PDF name.
func OutputName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "output"
	}
	return base + ".txt"
}

type nopObserver struct{}

func (nopObserver) Started(Job)           {}
func (nopObserver) Progress(Job, float64) {}
func (nopObserver) Notice(Job, string)    {}
func (nopObserver) Finished(Result)       {}
