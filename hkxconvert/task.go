// hkxconvert/task.go

package hkxconvert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"HkxToolbox/common"
)

// Task is the unit of work: one input/output pair bound to a tool, mode and
// format. Tasks are built by the orchestrator at batch start and immutable
// afterwards; each is consumed exactly once by a worker.
type Task struct {
	Index    int
	Input    string
	Output   string
	Tool     ToolKind
	Mode     Mode
	Format   Format
	Skeleton string

	// deriveErr is set when the output path could not be computed. The
	// runner fails such a task without touching the filesystem.
	deriveErr error
}

// TaskResult reports the outcome of one task.
type TaskResult struct {
	Err error
	// OutputSize is the size of the produced file, diagnostic only.
	OutputSize int64
	// Warning carries advisory findings that do not fail the task, such as
	// an in-place transform leaving the file size unchanged.
	Warning  string
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// TaskRunner executes a single task. The orchestrator only depends on this
// interface; the production implementation spawns real converter processes.
type TaskRunner interface {
	Run(ctx context.Context, task *Task) TaskResult
}

// ProcessTaskRunner runs tasks by invoking the external converter described
// by the registry entry.
type ProcessTaskRunner struct {
	Registry *Registry
	// ToolsDir is where converter executables live; empty resolves them on
	// PATH.
	ToolsDir string
	// Timeout bounds a single converter run. Zero means no timeout: a hung
	// tool hangs its task, matching the historical behavior.
	Timeout time.Duration
	Logger  *common.Logger
}

// Run performs one conversion: ensure the destination directory, build the
// process spec, spawn the tool, and verify that an output file materialized.
// External tools are not trusted blindly; a zero exit without an output file
// still fails the task.
func (r *ProcessTaskRunner) Run(ctx context.Context, task *Task) TaskResult {
	started := time.Now()
	res := r.run(ctx, task)
	res.Duration = time.Since(started)
	return res
}

func (r *ProcessTaskRunner) run(ctx context.Context, task *Task) TaskResult {
	if task.deriveErr != nil {
		return TaskResult{Err: task.deriveErr}
	}

	spec, ok := r.Registry.Lookup(task.Tool)
	if !ok {
		return TaskResult{Err: &CapabilityError{Tool: task.Tool, Mode: task.Mode, Format: task.Format, Reason: "unknown tool"}}
	}

	if err := common.EnsureDirectoryExists(filepath.Dir(task.Output)); err != nil {
		return TaskResult{Err: fmt.Errorf("failed to create output directory for %s: %w", task.Output, err)}
	}

	ps, err := BuildInvocation(spec, task.Mode, task.Format, r.ToolsDir, task.Input, task.Output, task.Skeleton)
	if err != nil {
		return TaskResult{Err: err}
	}

	var preSize int64 = -1
	if ps.ScratchDir != "" {
		if err := os.MkdirAll(ps.ScratchDir, 0755); err != nil {
			return TaskResult{Err: fmt.Errorf("failed to create scratch directory: %w", err)}
		}
		// Scratch artifacts never outlive the task, success or not.
		defer os.RemoveAll(ps.ScratchDir)
	}
	if ps.InPlace {
		if err := common.CopyFile(task.Input, task.Output); err != nil {
			return TaskResult{Err: fmt.Errorf("failed to stage %s for in-place conversion: %w", task.Input, err)}
		}
		if info, err := os.Stat(task.Output); err == nil {
			preSize = info.Size()
		}
	}

	stdout, stderr, runErr := r.execute(ctx, ps)
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return TaskResult{
				Err:    &ToolFailedError{Tool: task.Tool, ExitCode: exitErr.ExitCode(), Stderr: stderr},
				Stdout: stdout,
				Stderr: stderr,
			}
		}
		return TaskResult{Err: fmt.Errorf("failed to run %s: %w", task.Tool, runErr), Stdout: stdout, Stderr: stderr}
	}

	if ps.StagedOutput != "" {
		if _, err := os.Stat(ps.StagedOutput); err != nil {
			return TaskResult{Err: &OutputMissingError{Path: ps.StagedOutput}, Stdout: stdout, Stderr: stderr}
		}
		if err := common.MoveFile(ps.StagedOutput, task.Output); err != nil {
			return TaskResult{Err: fmt.Errorf("failed to relocate staged output: %w", err), Stdout: stdout, Stderr: stderr}
		}
	}

	info, err := os.Stat(task.Output)
	if err != nil {
		return TaskResult{Err: &OutputMissingError{Path: task.Output}, Stdout: stdout, Stderr: stderr}
	}

	result := TaskResult{OutputSize: info.Size(), Stdout: stdout, Stderr: stderr}
	if ps.InPlace && preSize >= 0 && info.Size() == preSize {
		// A same-size in-place transform is suspicious but valid.
		result.Warning = fmt.Sprintf("%s left %s at its original size (%d bytes)", task.Tool, filepath.Base(task.Output), preSize)
	}
	if r.Logger != nil {
		r.Logger.Debug("%s: %s -> %s (%d bytes)", task.Tool, task.Input, task.Output, info.Size())
	}
	return result
}

// execute spawns the converter and waits for it, capturing both streams.
// Waiting on the child is the task's only blocking point; an optional
// timeout bounds it.
func (r *ProcessTaskRunner) execute(ctx context.Context, ps *ProcessSpec) (stdout, stderr string, err error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, ps.Executable, ps.Args...)
	cmd.Dir = ps.Dir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	if runErr != nil && ctx.Err() == context.DeadlineExceeded {
		runErr = fmt.Errorf("converter timed out after %s", r.Timeout)
	}
	return outBuf.String(), errBuf.String(), runErr
}
