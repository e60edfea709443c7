// Package report turns the event stream of go test -json into an HTML test report.
package report

import (
	"bufio"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
)

// Action is the kind of a test2json event.
type Action string

const (
	ActionStart  Action = "start"
	ActionRun    Action = "run"
	ActionPause  Action = "pause"
	ActionCont   Action = "cont"
	ActionPass   Action = "pass"
	ActionBench  Action = "bench"
	ActionFail   Action = "fail"
	ActionOutput Action = "output"
	ActionSkip   Action = "skip"
)

// Event is one line of go test -json output.
type Event struct {
	Time    time.Time `json:"Time"`
	Action  Action    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// Status is the outcome of a test.
type Status string

const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TestResult is the outcome and output of one test or subtest.
type TestResult struct {
	Package string
	Name    string
	Status  Status
	Started time.Time
	Elapsed time.Duration
	Output  strings.Builder
}

// Parent returns the name of the enclosing test, or "" for a top-level test.
func (t *TestResult) Parent() string {
	i := strings.LastIndex(t.Name, "/")
	if i < 0 {
		return ""
	}
	return t.Name[:i]
}

// Counts summarizes the outcomes of a run.
type Counts struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Running int
}

// Run collects the results of one go test invocation.
type Run struct {
	ID       uuid.UUID
	Suite    string
	Browser  string
	Started  time.Time
	Finished time.Time

	// Output holds lines that are not part of any test, e.g. build errors.
	Output strings.Builder

	tests          []*TestResult
	index          map[string]*TestResult
	failedPackages []string
}

// NewRun creates an empty run.
func NewRun(suite, browser string) *Run {
	id, _ := uuid.NewV7()
	return &Run{
		ID:      id,
		Suite:   suite,
		Browser: browser,
		index:   make(map[string]*TestResult),
	}
}

func testKey(pkg, test string) string {
	return pkg + "\x00" + test
}

// Apply updates the run with e.
func (r *Run) Apply(e Event) {
	if r.Started.IsZero() || (!e.Time.IsZero() && e.Time.Before(r.Started)) {
		r.Started = e.Time
	}
	if e.Time.After(r.Finished) {
		r.Finished = e.Time
	}

	if e.Test == "" {
		switch e.Action {
		case ActionOutput:
			r.Output.WriteString(e.Output)
		case ActionFail:
			r.failedPackages = append(r.failedPackages, e.Package)
		}
		return
	}

	t := r.test(e)
	switch e.Action {
	case ActionOutput:
		t.Output.WriteString(e.Output)
	case ActionPass:
		t.Status = StatusPassed
		t.Elapsed = seconds(e.Elapsed)
	case ActionFail:
		t.Status = StatusFailed
		t.Elapsed = seconds(e.Elapsed)
	case ActionSkip:
		t.Status = StatusSkipped
		t.Elapsed = seconds(e.Elapsed)
	}
}

func (r *Run) test(e Event) *TestResult {
	key := testKey(e.Package, e.Test)
	if t, ok := r.index[key]; ok {
		return t
	}
	t := &TestResult{
		Package: e.Package,
		Name:    e.Test,
		Status:  StatusRunning,
		Started: e.Time,
	}
	r.index[key] = t
	r.tests = append(r.tests, t)
	return t
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Tests returns all tests in the order they started.
func (r *Run) Tests() []*TestResult {
	return slices.Clone(r.tests)
}

// Test returns the result of test in pkg.
func (r *Run) Test(pkg, test string) (*TestResult, bool) {
	t, ok := r.index[testKey(pkg, test)]
	return t, ok
}

// Leaves returns the tests without subtests. Their outcomes are what the summary counts.
func (r *Run) Leaves() []*TestResult {
	parents := lo.SliceToMap(r.tests, func(t *TestResult) (string, bool) {
		return testKey(t.Package, t.Parent()), true
	})
	return lo.Filter(r.tests, func(t *TestResult, _ int) bool {
		return !parents[testKey(t.Package, t.Name)]
	})
}

// Counts summarizes the outcomes of all leaf tests.
func (r *Run) Counts() Counts {
	var c Counts
	for _, t := range r.Leaves() {
		c.Total++
		switch t.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		default:
			c.Running++
		}
	}
	return c
}

// Failed reports whether any test or package failed.
func (r *Run) Failed() bool {
	return len(r.failedPackages) > 0 || lo.SomeBy(r.tests, func(t *TestResult) bool {
		return t.Status == StatusFailed
	})
}

// Duration is the time between the first and the last event.
func (r *Run) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Parse reads go test -json output from rd into run.
// Lines that are not JSON events are kept as run output. onEvent, if set, sees every event.
func Parse(rd io.Reader, run *Run, onEvent func(Event)) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var e Event
		if len(line) == 0 || line[0] != '{' || json.Unmarshal(line, &e) != nil {
			run.Output.Write(line)
			run.Output.WriteByte('\n')
			continue
		}
		run.Apply(e)
		if onEvent != nil {
			onEvent(e)
		}
	}
	return scanner.Err()
}
