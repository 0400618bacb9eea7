package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"time"

	"teamjoin/internal/models"
)

var ErrWorkerTimeout = errors.New("worker timed out")

// WorkerRunner runs one login+join attempt for a single invite link.
type WorkerRunner interface {
	Attempt(ctx context.Context, email, code, link string) (models.JoinOutcome, error)
}

type execWorkerRunner struct {
	command string
	args    []string
	timeout time.Duration
}

// NewExecWorkerRunner запускает внешний процесс: <command> [args...] -- <email> <code> <link>
func NewExecWorkerRunner(command string, timeout time.Duration, args ...string) WorkerRunner {
	return &execWorkerRunner{command: command, args: args, timeout: timeout}
}

func (r *execWorkerRunner) Attempt(ctx context.Context, email, code, link string) (models.JoinOutcome, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// "--": email может начинаться с "-", воркер не должен принять его за флаг
	args := append(append([]string{}, r.args...), "--", email, code, link)
	cmd := exec.CommandContext(ctx, r.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	took := time.Since(start).Truncate(time.Millisecond)

	if ctx.Err() == context.DeadlineExceeded {
		log.Printf("[worker][run] timeout link=%s took=%s", link, took)
		return models.JoinOutcome{}, ErrWorkerTimeout
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return models.JoinOutcome{}, fmt.Errorf("start worker: %w", err)
		}
		// ненулевой код тоже результат, если воркер что-то напечатал
		if stdout.Len() == 0 {
			return models.JoinOutcome{}, fmt.Errorf("worker exited %d: %s", exitErr.ExitCode(), bytes.TrimSpace(stderr.Bytes()))
		}
	}

	outcome := models.ParseOutcome(stdout.String())
	log.Printf("[worker][run] link=%s outcome=%q took=%s", link, outcome.String(), took)
	return outcome, nil
}
