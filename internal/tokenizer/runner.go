package tokenizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// WorkerCommand is the hidden CLI command that serves one tokenization request.
const WorkerCommand = "tokenize-worker"

const stderrTail = 512

var commandContext = exec.CommandContext

// ErrTokenize wraps failures reported by the encoder itself.
var ErrTokenize = errors.New("tokenization failed")

// Runner executes one tokenization at a time behind an isolation boundary.
type Runner interface {
	Tokenize(ctx context.Context, text string) (models.Encoding, error)
}

// ProcessRunner runs every request in a fresh worker process.
type ProcessRunner struct {
	binary  string
	args    []string
	timeout time.Duration
}

// NewProcessRunner creates a runner that starts binary with args per request.
func NewProcessRunner(binary string, args []string, timeout time.Duration) *ProcessRunner {
	return &ProcessRunner{binary: binary, args: args, timeout: timeout}
}

// Tokenize implements [Runner].
//
// Returns [shared.ErrWorkerTimeout] when the worker exceeds the timeout and
// [shared.ErrWorkerCrashed] when it exits abnormally or replies with garbage.
func (p *ProcessRunner) Tokenize(ctx context.Context, text string) (models.Encoding, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(WorkerRequest{Text: text})
	if err != nil {
		return models.Encoding{}, fmt.Errorf("encode worker request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := commandContext(ctx, p.binary, p.args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return models.Encoding{}, fmt.Errorf("%w after %s", shared.ErrWorkerTimeout, p.timeout)
		}
		return models.Encoding{}, ctxErr
	}
	if runErr != nil {
		return models.Encoding{}, fmt.Errorf("%w: %v: %s", shared.ErrWorkerCrashed, runErr, tail(stderr.String()))
	}

	var resp WorkerResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return models.Encoding{}, fmt.Errorf("%w: malformed response: %v", shared.ErrWorkerCrashed, err)
	}
	if resp.Error != "" {
		return models.Encoding{}, fmt.Errorf("%w: %s", ErrTokenize, resp.Error)
	}
	return resp.Encoding, nil
}

// GoroutineRunner runs the tokenizer in-process on a guarded goroutine.
//
// A hung encoder keeps its goroutine alive after the timeout fires.
type GoroutineRunner struct {
	tok     Tokenizer
	timeout time.Duration
}

// NewGoroutineRunner wraps tok.
func NewGoroutineRunner(tok Tokenizer, timeout time.Duration) *GoroutineRunner {
	return &GoroutineRunner{tok: tok, timeout: timeout}
}

type outcome struct {
	enc models.Encoding
	err error
}

// Tokenize implements [Runner]. A panic in the encoder is reported as [shared.ErrWorkerCrashed].
func (g *GoroutineRunner) Tokenize(ctx context.Context, text string) (models.Encoding, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: panic: %v", shared.ErrWorkerCrashed, r)}
			}
		}()
		enc, err := g.tok.Encode(text)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrTokenize, err)
		}
		done <- outcome{enc: enc, err: err}
	}()

	select {
	case out := <-done:
		return out.enc, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.Encoding{}, fmt.Errorf("%w after %s", shared.ErrWorkerTimeout, g.timeout)
		}
		return models.Encoding{}, ctx.Err()
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}

var (
	_ Runner = (*ProcessRunner)(nil)
	_ Runner = (*GoroutineRunner)(nil)
)
