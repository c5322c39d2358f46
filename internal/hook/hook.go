// SPDX-License-Identifier: MPL-2.0

// Package hook runs post-build shell snippets in an embedded POSIX shell
// interpreter (mvdan.cc/sh), so hooks behave the same on every host and do
// not depend on a system shell.
package hook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrHookFailed is wrapped when a hook exits with a non-zero status.
	ErrHookFailed = errors.New("hook failed")
	// ErrInvalidScript is wrapped when a hook does not parse as shell.
	ErrInvalidScript = errors.New("invalid hook script")
)

type (
	// Hook is one snippet to run.
	Hook struct {
		// Name identifies the hook in errors (e.g. "probe post_build").
		Name string
		// Script is the shell source.
		Script string
		// Dir is the working directory.
		Dir string
		// Env is added to (and overrides) the inherited environment.
		Env map[string]string
	}

	// Result is the outcome of a hook run.
	Result struct {
		ExitCode  int
		Output    string
		ErrOutput string
	}

	// ExitError is returned when a hook exits with a non-zero status.
	// It wraps ErrHookFailed for errors.Is() compatibility.
	ExitError struct {
		Name     string
		ExitCode int
	}

	// Option configures a Runner.
	Option func(*Runner)

	// Runner executes hooks.
	Runner struct {
		stdout     io.Writer
		stderr     io.Writer
		inheritEnv bool
	}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
}

// Unwrap returns ErrHookFailed for errors.Is() compatibility.
func (e *ExitError) Unwrap() error { return ErrHookFailed }

// WithOutput also streams hook output to the given writers.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithInheritEnv controls whether hooks see the process environment.
// Default is true.
func WithInheritEnv(inherit bool) Option {
	return func(r *Runner) {
		r.inheritEnv = inherit
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{inheritEnv: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate reports whether script parses as POSIX shell.
func Validate(script string) error {
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "hook"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return nil
}

// Run executes h and returns its captured output. A non-zero exit status is
// reported both in the Result and as an *ExitError.
func (r *Runner) Run(ctx context.Context, h Hook) (*Result, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(h.Script), h.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}

	var stdout, stderr bytes.Buffer
	var out, errOut io.Writer = &stdout, &stderr
	if r.stdout != nil {
		out = io.MultiWriter(&stdout, r.stdout)
	}
	if r.stderr != nil {
		errOut = io.MultiWriter(&stderr, r.stderr)
	}

	runner, err := interp.New(
		interp.Dir(h.Dir),
		interp.Env(expand.ListEnviron(r.environ(h.Env)...)),
		interp.StdIO(nil, out, errOut),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	result := &Result{}
	err = runner.Run(ctx, prog)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			result.ExitCode = int(exitStatus)
			return result, &ExitError{Name: h.Name, ExitCode: result.ExitCode}
		}
		result.ExitCode = 1
		return result, fmt.Errorf("%s: %w", h.Name, err)
	}
	return result, nil
}

// environ builds the KEY=VALUE list for a hook. Later entries win in
// expand.ListEnviron, so hook variables override inherited ones.
func (r *Runner) environ(extra map[string]string) []string {
	var env []string
	if r.inheritEnv {
		env = append(env, os.Environ()...)
	}
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}
	return env
}
