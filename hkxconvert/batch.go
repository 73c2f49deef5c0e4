// hkxconvert/batch.go

package hkxconvert

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"HkxToolbox/common"
)

// Config is the immutable per-batch configuration. It is captured once when
// the batch is created and passed into every task; no task can observe a
// change mid-batch.
type Config struct {
	Tool     ToolKind
	Mode     Mode
	Format   Format
	Output   OutputSpec
	Skeleton string
	// ToolsDir is the directory holding the converter executables; empty
	// resolves them on PATH.
	ToolsDir string
	// MaxParallel caps concurrently running tasks. Zero starts one worker
	// per file immediately.
	MaxParallel int
	// ToolTimeout bounds each converter run. Zero disables the bound.
	ToolTimeout time.Duration
}

// Validate checks the batch preconditions. Precondition failures abort the
// batch before any task is created; everything that can fail per file
// (capability, path derivation) is deliberately not checked here.
func (c Config) Validate(inputs []string, reg *Registry) error {
	if len(inputs) == 0 {
		return errors.New("no input files selected")
	}
	if c.Output.Root == "" {
		return errors.New("no output folder selected")
	}
	if _, ok := reg.Lookup(c.Tool); !ok {
		return errors.New("no converter tool selected")
	}
	if c.Mode.RequiresSkeleton() && c.Skeleton == "" {
		return errors.New("the selected conversion mode requires a skeleton file")
	}
	return nil
}

// Batch owns one conversion run: the task list, the cancellation signal and
// the progress event stream. It lives from Start until the terminal event;
// a new run means a new Batch.
type Batch struct {
	cfg    Config
	runner TaskRunner
	logger *common.Logger
	tasks  []*Task
	events chan ProgressEvent

	ctx       context.Context
	cancel    context.CancelFunc
	startedAt time.Time
	startOnce sync.Once
}

// NewBatch validates the preconditions, de-duplicates the input list
// (insertion order kept, membership by full path) and derives every output
// path up front. A file whose path cannot be derived still gets a task; it
// fails individually when the batch runs.
func NewBatch(cfg Config, inputs []string, reg *Registry, logger *common.Logger) (*Batch, error) {
	deduped := dedupePaths(inputs)
	if err := cfg.Validate(deduped, reg); err != nil {
		return nil, err
	}

	tasks := make([]*Task, 0, len(deduped))
	for i, input := range deduped {
		task := &Task{
			Index:    i,
			Input:    input,
			Tool:     cfg.Tool,
			Mode:     cfg.Mode,
			Format:   cfg.Format,
			Skeleton: cfg.Skeleton,
		}
		output, err := DeriveOutputPath(input, cfg.Output, deduped, cfg.Mode, cfg.Format)
		if err != nil {
			task.deriveErr = err
		} else {
			task.Output = output
		}
		tasks = append(tasks, task)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Batch{
		cfg:    cfg,
		logger: logger,
		tasks:  tasks,
		// Capacity covers every event the batch can emit (two per file plus
		// the terminal one), so producers never block on send.
		events: make(chan ProgressEvent, 2*len(tasks)+1),
		ctx:    ctx,
		cancel: cancel,
		runner: &ProcessTaskRunner{
			Registry: reg,
			ToolsDir: cfg.ToolsDir,
			Timeout:  cfg.ToolTimeout,
			Logger:   logger,
		},
	}, nil
}

// SetRunner replaces the task runner. Must be called before Start.
func (b *Batch) SetRunner(r TaskRunner) {
	b.runner = r
}

// Tasks returns the derived task list in input order.
func (b *Batch) Tasks() []*Task {
	out := make([]*Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Events returns the progress stream. It is closed after the batch terminal
// event.
func (b *Batch) Events() <-chan ProgressEvent {
	return b.events
}

// Cancel signals cooperative cancellation. Tasks that have not started yet
// are skipped; a task already inside a converter run finishes. This is a
// best-effort contract, chosen over forcibly killing child processes.
func (b *Batch) Cancel() {
	b.cancel()
}

// Start launches one worker per task and returns immediately. Calling Start
// more than once is a no-op.
func (b *Batch) Start() {
	b.startOnce.Do(func() {
		b.startedAt = time.Now()
		go b.run()
	})
}

func (b *Batch) run() {
	defer close(b.events)

	total := len(b.tasks)
	var sem chan struct{}
	if b.cfg.MaxParallel > 0 {
		sem = make(chan struct{}, b.cfg.MaxParallel)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for _, task := range b.tasks {
		wg.Add(1)
		go func(t *Task) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			name := filepath.Base(t.Input)

			// Checked before any filesystem or process work; a task that
			// observes cancellation here does nothing but report its slot.
			if b.ctx.Err() != nil {
				b.events <- ProgressEvent{State: StateFailed, FileIndex: t.Index, FileName: name, TotalFiles: total, Message: "cancelled"}
				return
			}

			b.events <- ProgressEvent{State: StateStarted, FileIndex: t.Index, FileName: name, TotalFiles: total}

			res := b.runner.Run(b.ctx, t)
			if res.Err != nil {
				if b.logger != nil {
					b.logger.Error("conversion of %s failed: %v", t.Input, res.Err)
				}
				b.events <- ProgressEvent{State: StateFailed, FileIndex: t.Index, FileName: name, TotalFiles: total, Message: res.Err.Error()}
				return
			}

			mu.Lock()
			successes++
			mu.Unlock()
			b.events <- ProgressEvent{State: StateSucceeded, FileIndex: t.Index, FileName: name, TotalFiles: total, Message: res.Warning}
		}(task)
	}

	// Fan-in barrier: the terminal event fires strictly after every task
	// resolved. A batch with failed files is still "completed"; per-file
	// failures were already reported individually.
	wg.Wait()

	mu.Lock()
	done := successes
	mu.Unlock()

	state := StateBatchCompleted
	if b.ctx.Err() != nil {
		state = StateBatchCancelled
	}
	if b.logger != nil {
		b.logger.Info("batch finished: %d/%d converted in %s (%s)", done, total, time.Since(b.startedAt).Round(time.Millisecond), state)
	}
	b.events <- ProgressEvent{State: state, Succeeded: done, Total: total}
}

// dedupePaths keeps the first occurrence of each path, preserving order.
func dedupePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
