package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Step is one named stage of a generation run.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Engine runs steps strictly in order and reports a status line for each.
// The first failing step stops the run.
type Engine struct {
	out    io.Writer
	logger *slog.Logger
}

// NewEngine creates a new engine writing status lines to out.
func NewEngine(out io.Writer, logger *slog.Logger) *Engine {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		out:    out,
		logger: logger,
	}
}

// Execute runs the steps sequentially.
// A cancelled context stops the run before the next step starts.
func (e *Engine) Execute(ctx context.Context, steps []Step) error {
	if len(steps) == 0 {
		return errors.New("no steps to execute")
	}

	e.logger.Info("starting run", "step_count", len(steps))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("run cancelled", "step", step.Name)
			return err
		}

		e.logger.Debug("running step", "step", step.Name, "index", i+1)

		if err := step.Run(ctx); err != nil {
			e.Failed(step.Name, err)
			e.logger.Error("step failed", "step", step.Name, "error", err)
			return fmt.Errorf("%s: %w", step.Name, err)
		}

		e.Succeeded(step.Name)
	}

	e.logger.Info("run complete", "step_count", len(steps))
	return nil
}

// Succeeded prints a success status line.
func (e *Engine) Succeeded(name string) {
	_, _ = fmt.Fprintf(e.out, "%s %s succeeded\n", green("✔"), bold(name))
}

// Failed prints a failure status line.
func (e *Engine) Failed(name string, err error) {
	_, _ = fmt.Fprintf(e.out, "%s %s failed: %v\n", red("✘"), bold(name), err)
}

// Warn prints a warning line.
func (e *Engine) Warn(msg string) {
	_, _ = fmt.Fprintf(e.out, "%s %s\n", yellow("!"), msg)
}
