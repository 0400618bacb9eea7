package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamjoin/internal/models"
)

func TestGenerateMembersReport(t *testing.T) {
	dir := t.TempDir()
	g := NewReportGenerator(dir, "")

	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	path, err := g.GenerateMembersReport(
		[]models.MemberRecord{{UserID: "42", Member: models.Member{Email: "a@b.co", Joined: "2025-03-01", Expiry: "30-04-25"}}},
		[]models.InviteStatus{{Invite: models.Invite{Link: "https://www.canva.com/brand/join?token=" + strings.Repeat("x", 80), Expiry: "30-04-25"}, Active: true}},
		at,
	)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "members_20250310_093000.pdf"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	got := truncate("пользователь@почта.рф", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "пользов...", got)
	assert.Equal(t, "привет", truncate("привет", 6))
}
