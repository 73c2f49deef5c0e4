// hkxconvert/batch_test.go

package hkxconvert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner is an in-memory TaskRunner: no processes, no filesystem. It
// fails the inputs listed in fail, tracks how many runs overlap, and can
// hold each run open for delay.
type fakeRunner struct {
	fail  map[string]string
	delay time.Duration

	mu      sync.Mutex
	calls   int
	running int
	maxSeen int
	done    sync.WaitGroup
}

func (f *fakeRunner) Run(ctx context.Context, t *Task) TaskResult {
	f.mu.Lock()
	f.calls++
	f.running++
	if f.running > f.maxSeen {
		f.maxSeen = f.running
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.running--
	f.mu.Unlock()
	f.done.Done()

	if reason, bad := f.fail[t.Input]; bad {
		return TaskResult{Err: errors.New(reason)}
	}
	return TaskResult{OutputSize: 1}
}

func testConfig() Config {
	return Config{
		Tool:   ToolHkxCmd,
		Mode:   ModeRegular,
		Format: FormatSkyrimSE,
		Output: OutputSpec{Root: "/out"},
	}
}

func collectEvents(t *testing.T, b *Batch) []ProgressEvent {
	t.Helper()
	var events []ProgressEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-b.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("event stream did not close; got %d events so far", len(events))
		}
	}
}

func countStates(events []ProgressEvent) map[EventState]int {
	counts := make(map[EventState]int)
	for _, ev := range events {
		counts[ev.State]++
	}
	return counts
}

func TestBatchAllSucceed(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/b.hkx", "/in/c.hkx", "/in/d.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{}
	runner.done.Add(len(inputs))
	b.SetRunner(runner)
	b.Start()

	events := collectEvents(t, b)
	counts := countStates(events)
	if counts[StateStarted] != 4 || counts[StateSucceeded] != 4 {
		t.Errorf("started=%d succeeded=%d, want 4/4", counts[StateStarted], counts[StateSucceeded])
	}
	if counts[StateBatchCompleted] != 1 {
		t.Fatalf("got %d terminal events", counts[StateBatchCompleted])
	}

	last := events[len(events)-1]
	if last.State != StateBatchCompleted || last.Succeeded != 4 || last.Total != 4 {
		t.Errorf("terminal event = %+v", last)
	}
}

func TestBatchPerFileOrdering(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/b.hkx", "/in/c.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{delay: 5 * time.Millisecond}
	runner.done.Add(len(inputs))
	b.SetRunner(runner)
	b.Start()

	started := make(map[int]bool)
	for _, ev := range collectEvents(t, b) {
		switch ev.State {
		case StateStarted:
			started[ev.FileIndex] = true
		case StateSucceeded, StateFailed:
			if !started[ev.FileIndex] {
				t.Errorf("file %d resolved before it started", ev.FileIndex)
			}
		}
	}
}

func TestBatchPartialFailure(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/broken.hkx", "/in/c.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{fail: map[string]string{"/in/broken.hkx": "converter refused the file"}}
	runner.done.Add(len(inputs))
	b.SetRunner(runner)
	b.Start()

	events := collectEvents(t, b)
	counts := countStates(events)
	if counts[StateSucceeded] != 2 || counts[StateFailed] != 1 {
		t.Errorf("succeeded=%d failed=%d, want 2/1", counts[StateSucceeded], counts[StateFailed])
	}

	// One failed file never cancels the rest of the batch.
	last := events[len(events)-1]
	if last.State != StateBatchCompleted || last.Succeeded != 2 || last.Total != 3 {
		t.Errorf("terminal event = %+v", last)
	}

	for _, ev := range events {
		if ev.State == StateFailed && !strings.Contains(ev.Message, "refused") {
			t.Errorf("failure event lost its reason: %+v", ev)
		}
	}
}

func TestBatchCancelBeforeStart(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/b.hkx", "/in/c.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{}
	b.SetRunner(runner)
	b.Cancel()
	b.Start()

	events := collectEvents(t, b)
	counts := countStates(events)
	if counts[StateStarted] != 0 {
		t.Errorf("%d tasks started after cancellation", counts[StateStarted])
	}
	if counts[StateFailed] != 3 {
		t.Errorf("failed=%d, want every task reported as cancelled", counts[StateFailed])
	}
	for _, ev := range events {
		if ev.State == StateFailed && ev.Message != "cancelled" {
			t.Errorf("cancelled task message = %q", ev.Message)
		}
	}
	if events[len(events)-1].State != StateBatchCancelled {
		t.Errorf("terminal event = %+v", events[len(events)-1])
	}

	runner.mu.Lock()
	calls := runner.calls
	runner.mu.Unlock()
	if calls != 0 {
		t.Errorf("runner was invoked %d times after cancellation", calls)
	}
}

func TestBatchDerivationFailureIsPerFile(t *testing.T) {
	// "/" has no file stem, so its output path cannot be derived; the batch
	// still runs and the other file converts.
	inputs := []string{"/in/a.hkx", "/"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	tasks := b.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	if tasks[0].deriveErr != nil || tasks[1].deriveErr == nil {
		t.Errorf("derivation errors landed on the wrong tasks: %v / %v", tasks[0].deriveErr, tasks[1].deriveErr)
	}
}

func TestBatchDedupesInputs(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/b.hkx", "/in/a.hkx", "", "/in/b.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	tasks := b.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].Input != "/in/a.hkx" || tasks[1].Input != "/in/b.hkx" {
		t.Errorf("dedupe changed the input order: %s, %s", tasks[0].Input, tasks[1].Input)
	}
}

func TestBatchMaxParallel(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/b.hkx", "/in/c.hkx", "/in/d.hkx", "/in/e.hkx", "/in/f.hkx"}
	cfg := testConfig()
	cfg.MaxParallel = 2
	b, err := NewBatch(cfg, inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{delay: 20 * time.Millisecond}
	runner.done.Add(len(inputs))
	b.SetRunner(runner)
	b.Start()
	collectEvents(t, b)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.calls != 6 {
		t.Errorf("calls = %d, want 6", runner.calls)
	}
	if runner.maxSeen > 2 {
		t.Errorf("observed %d concurrent runs, cap is 2", runner.maxSeen)
	}
}

func TestBatchProducersNeverBlock(t *testing.T) {
	// Nothing reads the stream until every task already resolved; the batch
	// must still reach its terminal event and close the channel.
	inputs := []string{"/in/a.hkx", "/in/b.hkx", "/in/c.hkx", "/in/d.hkx", "/in/e.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{}
	runner.done.Add(len(inputs))
	b.SetRunner(runner)
	b.Start()

	runner.done.Wait()

	events := collectEvents(t, b)
	if len(events) != 2*len(inputs)+1 {
		t.Errorf("got %d events, want %d", len(events), 2*len(inputs)+1)
	}
}

func TestBatchStartIsIdempotent(t *testing.T) {
	inputs := []string{"/in/a.hkx", "/in/b.hkx"}
	b, err := NewBatch(testConfig(), inputs, NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	runner := &fakeRunner{}
	runner.done.Add(len(inputs))
	b.SetRunner(runner)
	b.Start()
	b.Start()

	events := collectEvents(t, b)
	if countStates(events)[StateBatchCompleted] != 1 {
		t.Errorf("double Start produced %d terminal events", countStates(events)[StateBatchCompleted])
	}
	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.calls != 2 {
		t.Errorf("runner ran %d times, want 2", runner.calls)
	}
}

func TestConfigValidate(t *testing.T) {
	reg := NewRegistry()
	inputs := []string{"/in/a.kf"}

	cases := []struct {
		name   string
		cfg    Config
		inputs []string
		want   string
	}{
		{"no inputs", testConfig(), nil, "no input files"},
		{"no output", Config{Tool: ToolHkxCmd, Mode: ModeRegular}, inputs, "no output folder"},
		{"unknown tool", Config{Tool: "nosuch", Output: OutputSpec{Root: "/out"}}, inputs, "no converter tool"},
		{"skeleton missing", Config{Tool: ToolHkxCmd, Mode: ModeKfToHkx, Output: OutputSpec{Root: "/out"}}, inputs, "skeleton"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate(tc.inputs, reg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate = %v, want error containing %q", err, tc.want)
			}
		})
	}

	cfg := testConfig()
	cfg.Mode = ModeKfToHkx
	cfg.Skeleton = "/sk/skeleton.hkx"
	if err := cfg.Validate(inputs, reg); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
