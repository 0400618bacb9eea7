package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamjoin/internal/browser"
	"teamjoin/internal/config"
	"teamjoin/internal/models"
)

type recordingJoin struct {
	outcome models.JoinOutcome
	calls   []browser.Credentials
}

func (r *recordingJoin) join(_ context.Context, _ config.BrowserConfig, cred browser.Credentials) models.JoinOutcome {
	r.calls = append(r.calls, cred)
	return r.outcome
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestRunUsage(t *testing.T) {
	cases := map[string][]string{
		"no args":      {},
		"two args":     {"a@b.co", "123456"},
		"four args":    {"a@b.co", "123456", "https://x.test/i", "extra"},
		"unknown flag": {"--nope", "a@b.co", "123456", "https://x.test/i"},
	}
	for name, argv := range cases {
		t.Run(name, func(t *testing.T) {
			rec := &recordingJoin{outcome: models.Success()}
			var out bytes.Buffer
			assert.Equal(t, 1, run(context.Background(), argv, &out, rec.join))
			assert.Equal(t, usage+"\n", out.String())
			assert.Empty(t, rec.calls)
		})
	}
}

func TestRunOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		outcome models.JoinOutcome
		line    string
		code    int
	}{
		{"success", models.Success(), "success\n", 0},
		{"rejected invite", models.InviteRejected(), "failed: team full or invite expired\n", 1},
		{"no join button", models.Failed("join button not found"), "failed: join button not found\n", 0},
		{"browser error", models.Errored(errors.New("boom")), "error: boom\n", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recordingJoin{outcome: tc.outcome}
			var out bytes.Buffer
			argv := []string{"--config", missingConfig(t), "a@b.co", "123456", "https://x.test/i"}

			assert.Equal(t, tc.code, run(context.Background(), argv, &out, rec.join))
			assert.Equal(t, tc.line, out.String())
			require.Len(t, rec.calls, 1)
			assert.Equal(t, browser.Credentials{Email: "a@b.co", Code: "123456", InviteURL: "https://x.test/i"}, rec.calls[0])
		})
	}
}

func TestRunDashEmailAfterTerminator(t *testing.T) {
	rec := &recordingJoin{outcome: models.Success()}
	var out bytes.Buffer
	argv := []string{"--config", missingConfig(t), "--", "-ab@c.co", "123456", "https://x.test/i"}

	assert.Equal(t, 0, run(context.Background(), argv, &out, rec.join))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "-ab@c.co", rec.calls[0].Email)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(models.InviteRejected()))
	assert.Equal(t, 0, exitCode(models.Success()))
	assert.Equal(t, 0, exitCode(models.Failed("join button not found")))
	assert.Equal(t, 0, exitCode(models.Errored(errors.New("x"))))
}
