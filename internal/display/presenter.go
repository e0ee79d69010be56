package display

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/akashicode/pdf2text/internal/batch"
	"github.com/akashicode/pdf2text/internal/extract"
)

// progressStep is the bar granularity; only crossing a step prints a line.
const progressStep = 10

// Presenter renders batch events as CLI lines. It is safe for concurrent
// use by several jobs.
type Presenter struct {
	mu    sync.Mutex
	w     io.Writer
	total int
	steps map[string]int
}

// NewPresenter returns a Presenter for a batch of total files.
func NewPresenter(w io.Writer, total int) *Presenter {
	return &Presenter{w: w, total: total, steps: make(map[string]int)}
}

var _ batch.Observer = (*Presenter)(nil)

// Started prints the file header.
func (p *Presenter) Started(job batch.Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps[job.ID] = -1
	Step(p.w, job.Index+1, p.total, fmt.Sprintf("%s %s(%s)%s", job.Name, dim, HumanSize(int64(job.Size)), reset))
}

// Progress prints a bar each time the job crosses a 10% step.
func (p *Presenter) Progress(job batch.Job, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	step := int(math.Floor(percent / progressStep))
	if last, ok := p.steps[job.ID]; ok && step <= last {
		return
	}
	p.steps[job.ID] = step
	StepDetail(p.w, fmt.Sprintf("%-24s %s %3.0f%%", truncate(job.Name, 24), Bar(percent, 20), percent))
}

// Notice prints an advisory badge.
func (p *Presenter) Notice(job batch.Job, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	StepWarn(p.w, fmt.Sprintf("%s: %s", job.Name, msg))
}

// Finished prints the final status of a job.
func (p *Presenter) Finished(res batch.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.steps, res.Job.ID)
	if res.Err != nil {
		ErrorMsg(p.w, fmt.Sprintf("%s failed [%s]: %v", res.Job.Name, extract.KindOf(res.Err), res.Err))
		return
	}
	Success(p.w, fmt.Sprintf("%s done in %s (%d chars)",
		res.Job.Name, formatDuration(res.Duration), len([]rune(res.Text))))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
