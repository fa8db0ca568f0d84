// Package catalog runs conformance suites: named collections of
// expressions paired with the type they must resolve to or the error
// kind they must fail with. Suites load from YAML files, txtar
// archives or a SQLite store, and a runner checks them in parallel.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quangis/cct/internal/typesystem"
)

// Checker is the slice of the expression checker the runner needs.
type Checker interface {
	Check(expression string) (typesystem.Type, error)
}

// Case pairs one expression with its expected outcome. Exactly one of
// WantType and WantError is set: WantType is the canonical rendering
// of the expected type, WantError the name of the expected error kind.
type Case struct {
	ID         string `yaml:"id,omitempty"`
	Expression string `yaml:"expr"`
	WantType   string `yaml:"type,omitempty"`
	WantError  string `yaml:"error,omitempty"`
}

// Validate rejects cases the runner could not judge.
func (c Case) Validate() error {
	if c.Expression == "" {
		return fmt.Errorf("case %s: empty expression", c.ID)
	}
	if (c.WantType == "") == (c.WantError == "") {
		return fmt.Errorf("case %s: exactly one of type and error must be set", c.ID)
	}
	if c.WantError != "" {
		if _, ok := typesystem.KindByName(c.WantError); !ok {
			return fmt.Errorf("case %s: unknown error kind %q", c.ID, c.WantError)
		}
	}
	return nil
}

// Suite is a named, ordered list of cases.
type Suite struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// Validate checks every case.
func (s Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite without a name")
	}
	for _, c := range s.Cases {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("suite %s: %w", s.Name, err)
		}
	}
	return nil
}

// Result is the outcome of one case.
type Result struct {
	Case    Case
	Pass    bool
	Got     string // rendered type or error kind
	Detail  string // mismatch explanation, empty on pass
	Elapsed time.Duration
}

// Report is the outcome of one suite run.
type Report struct {
	RunID   uuid.UUID
	Suite   string
	Started time.Time
	Elapsed time.Duration
	Results []Result
}

// Passed counts passing cases.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Pass {
			n++
		}
	}
	return n
}

// Failed counts failing cases.
func (r Report) Failed() int { return len(r.Results) - r.Passed() }

// Ok reports whether every case passed.
func (r Report) Ok() bool { return r.Failed() == 0 }

func (r Report) Summary() string {
	return fmt.Sprintf("suite %s: %d/%d passed in %s (run %s)",
		r.Suite, r.Passed(), len(r.Results), r.Elapsed.Round(time.Millisecond), r.RunID)
}

// Runner checks suites against one checker. Checkers are stateless
// per call, so cases run concurrently.
type Runner struct {
	checker Checker
	workers int
	log     *slog.Logger
}

type RunnerOption func(*Runner)

// Workers caps the number of concurrent cases. Defaults to GOMAXPROCS.
func Workers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger routes the runner's progress logging.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

func NewRunner(c Checker, opts ...RunnerOption) *Runner {
	r := &Runner{
		checker: c,
		workers: runtime.GOMAXPROCS(0),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run checks every case of the suite and reports. Results keep the
// suite's case order regardless of scheduling; a cancelled context
// marks the remaining cases failed.
func (r *Runner) Run(ctx context.Context, s Suite) (Report, error) {
	if err := s.Validate(); err != nil {
		return Report{}, err
	}
	report := Report{
		RunID:   uuid.New(),
		Suite:   s.Name,
		Started: time.Now(),
		Results: make([]Result, len(s.Cases)),
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				report.Results[i] = r.runCase(ctx, s.Cases[i])
			}
		}()
	}
	for i := range s.Cases {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	report.Elapsed = time.Since(report.Started)
	r.log.Info("suite finished",
		"run", report.RunID, "suite", s.Name,
		"passed", report.Passed(), "failed", report.Failed(),
		"elapsed", report.Elapsed)
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, c Case) Result {
	start := time.Now()
	res := Result{Case: c}
	if err := ctx.Err(); err != nil {
		res.Detail = err.Error()
		return res
	}

	got, err := r.checker.Check(c.Expression)
	res.Elapsed = time.Since(start)
	switch {
	case err != nil:
		kind, ok := typesystem.KindOf(err)
		if !ok {
			res.Got = err.Error()
			res.Detail = fmt.Sprintf("unclassified error: %v", err)
			return res
		}
		res.Got = kind.String()
		if c.WantError == kind.String() {
			res.Pass = true
			return res
		}
		res.Detail = fmt.Sprintf("got %v, want %s", err, want(c))
	case c.WantError != "":
		res.Got = got.String()
		res.Detail = fmt.Sprintf("resolved to %s, want error %s", got, c.WantError)
	default:
		res.Got = got.String()
		if res.Got == c.WantType {
			res.Pass = true
			return res
		}
		res.Detail = fmt.Sprintf("resolved to %s, want %s", got, c.WantType)
	}
	return res
}

func want(c Case) string {
	if c.WantError != "" {
		return "error " + c.WantError
	}
	return c.WantType
}
