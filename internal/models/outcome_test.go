package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
		want   JoinOutcome
	}{
		{"plain success", "success\n", Success()},
		{"success any case", "SUCCESS", Success()},
		{"team full", "failed: team full or invite expired\n", Failed("team full or invite expired")},
		{"no button", "failed: join button not found", Failed("join button not found")},
		{"error line", "error: context deadline exceeded", JoinOutcome{Status: OutcomeError, Detail: "context deadline exceeded"}},
		{"empty", "", Failed("empty worker output")},
		{"garbage", "something odd", JoinOutcome{Status: OutcomeFailed, Detail: "something odd"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseOutcome(tc.stdout))
		})
	}
}

func TestJoinOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success().String())
	assert.Equal(t, "failed: join button not found", Failed("join button not found").String())
	assert.Equal(t, "error: boom", Errored(errors.New("boom")).String())
	assert.True(t, ParseOutcome(Success().String()).OK())
}

func TestInviteActiveOn(t *testing.T) {
	inv := Invite{Link: "https://www.canva.com/brand/join?token=abc", Expiry: "15-03-25"}

	exp, err := inv.ExpiryDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), exp)

	assert.True(t, inv.ActiveOn(time.Date(2025, time.March, 14, 23, 0, 0, 0, time.UTC)))
	assert.True(t, inv.ActiveOn(time.Date(2025, time.March, 15, 18, 30, 0, 0, time.UTC)), "expiry day is still valid")
	assert.False(t, inv.ActiveOn(time.Date(2025, time.March, 16, 0, 0, 1, 0, time.UTC)))
}

func TestInviteActiveOnBadDate(t *testing.T) {
	inv := Invite{Link: "https://x.test/i", Expiry: "31-02-25"}
	_, err := inv.ExpiryDate()
	assert.Error(t, err)
	assert.False(t, inv.ActiveOn(time.Now()))
}

func TestNewMember(t *testing.T) {
	m := NewMember("a@b.co", time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), Invite{Expiry: "01-02-25"})
	assert.Equal(t, Member{Email: "a@b.co", Joined: "2025-01-02", Expiry: "01-02-25"}, m)
}

func TestJoinOutcomeRejected(t *testing.T) {
	assert.True(t, ParseOutcome("failed: team full or invite expired").Rejected())
	assert.False(t, Failed("join button not found").Rejected())
	assert.False(t, Success().Rejected())
}
