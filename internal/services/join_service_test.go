package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"teamjoin/internal/models"
	"teamjoin/internal/repositories"
)

// --- mocks ---

type mockWorker struct{ mock.Mock }

func (m *mockWorker) Attempt(ctx context.Context, email, code, link string) (models.JoinOutcome, error) {
	args := m.Called(ctx, email, code, link)
	return args.Get(0).(models.JoinOutcome), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyJoined(userID string, mem models.Member) error {
	return m.Called(userID, mem).Error(0)
}

func (m *mockNotifier) NotifyExhausted(userID, email string, tried int) error {
	return m.Called(userID, email, tried).Error(0)
}

// --- helpers ---

const (
	linkExpired = "https://www.canva.com/brand/join?token=old"
	linkFull    = "https://www.canva.com/brand/join?token=full"
	linkGood    = "https://www.canva.com/brand/join?token=good"
	linkLater   = "https://www.canva.com/brand/join?token=later"
)

var testToday = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *JoinService
	worker   *mockWorker
	members  repositories.MemberRepository
	sessions *repositories.SessionStore
	invites  string
}

func newFixture(t *testing.T, invitesText string, notifier AdminNotifier) *fixture {
	t.Helper()
	dir := t.TempDir()
	invitesPath := filepath.Join(dir, "invites.txt")
	require.NoError(t, os.WriteFile(invitesPath, []byte(invitesText), 0o644))

	members, err := repositories.NewFileMemberRepository(filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	w := &mockWorker{}
	sessions := repositories.NewSessionStore()
	svc := NewJoinService(members, repositories.NewFileInviteRepository(invitesPath), sessions, w, notifier, nil)
	svc.now = func() time.Time { return testToday }
	return &fixture{svc: svc, worker: w, members: members, sessions: sessions, invites: invitesPath}
}

const fourInvites = `Link: ` + linkExpired + `
Expiry: 09-03-25
---
Link: ` + linkFull + `
Expiry: 10-03-25
---
Link: ` + linkGood + `
Expiry: 30-04-25
---
Link: ` + linkLater + `
Expiry: 30-06-25
`

func (f *fixture) toCodeStage(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	assert.Equal(t, msgAskEmail, f.svc.Start(ctx, userID))
	reply, ok := f.svc.HandleText(ctx, userID, " user@gmail.com ")
	require.True(t, ok)
	assert.Equal(t, "📨 Invite sent to user@gmail.com. Please send the 6-digit Canva code you received.", reply)
}

// --- tests ---

func TestJoinFlowFirstSuccessWins(t *testing.T) {
	f := newFixture(t, fourInvites, nil)
	ctx := context.Background()
	f.toCodeStage(t, "42")

	f.worker.On("Attempt", mock.Anything, "user@gmail.com", "123456", linkFull).
		Return(models.Failed("team full or invite expired"), nil).Once()
	f.worker.On("Attempt", mock.Anything, "user@gmail.com", "123456", linkGood).
		Return(models.Success(), nil).Once()

	reply, ok := f.svc.HandleText(ctx, "42", "123456")
	require.True(t, ok)
	assert.Equal(t, "✅ Joined Canva team! Access valid till 30-04-25.", reply)

	f.worker.AssertExpectations(t)
	f.worker.AssertNotCalled(t, "Attempt", mock.Anything, mock.Anything, mock.Anything, linkExpired)
	f.worker.AssertNotCalled(t, "Attempt", mock.Anything, mock.Anything, mock.Anything, linkLater)

	m, err := f.members.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.Member{Email: "user@gmail.com", Joined: "2025-03-10", Expiry: "30-04-25"}, *m)

	_, active := f.sessions.Get("42")
	assert.False(t, active)

	assert.Equal(t, "🛑 You already joined a team. Access valid till 30-04-25.", f.svc.Start(ctx, "42"))
}

func TestJoinFlowWorkerErrorSkipped(t *testing.T) {
	f := newFixture(t, fourInvites, nil)
	f.toCodeStage(t, "1")

	f.worker.On("Attempt", mock.Anything, mock.Anything, mock.Anything, linkFull).
		Return(models.JoinOutcome{}, ErrWorkerTimeout).Once()
	f.worker.On("Attempt", mock.Anything, mock.Anything, mock.Anything, linkGood).
		Return(models.Errored(errors.New("selector not found")), nil).Once()
	f.worker.On("Attempt", mock.Anything, mock.Anything, mock.Anything, linkLater).
		Return(models.Success(), nil).Once()

	reply, _ := f.svc.HandleText(context.Background(), "1", "654321")
	assert.Equal(t, "✅ Joined Canva team! Access valid till 30-06-25.", reply)
	f.worker.AssertExpectations(t)
}

func TestJoinFlowExhausted(t *testing.T) {
	n := &mockNotifier{}
	f := newFixture(t, fourInvites, n)
	ctx := context.Background()
	f.toCodeStage(t, "9")

	f.worker.On("Attempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.Failed("join button not found"), nil)
	n.On("NotifyExhausted", "9", "user@gmail.com", 3).Return(nil).Once()

	reply, _ := f.svc.HandleText(ctx, "9", "111111")
	assert.Equal(t, msgExhausted, reply)
	f.worker.AssertNumberOfCalls(t, "Attempt", 3)
	n.AssertExpectations(t)

	_, err := f.members.Get(ctx, "9")
	assert.ErrorIs(t, err, repositories.ErrMemberNotFound)
	_, active := f.sessions.Get("9")
	assert.False(t, active)
}

func TestJoinFlowNoInvitesFile(t *testing.T) {
	f := newFixture(t, "", nil)
	require.NoError(t, os.Remove(f.invites))
	f.toCodeStage(t, "5")

	reply, _ := f.svc.HandleText(context.Background(), "5", "123456")
	assert.Equal(t, msgExhausted, reply)
	f.worker.AssertNotCalled(t, "Attempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinFlowInvalidInputKeepsStage(t *testing.T) {
	f := newFixture(t, fourInvites, nil)
	ctx := context.Background()

	f.svc.Start(ctx, "7")
	reply, ok := f.svc.HandleText(ctx, "7", "not-an-email")
	require.True(t, ok)
	assert.Equal(t, msgInvalidEmail, reply)
	sess, _ := f.sessions.Get("7")
	assert.Equal(t, models.StageAwaitingEmail, sess.Stage)

	f.svc.HandleText(ctx, "7", "user@gmail.com")
	reply, _ = f.svc.HandleText(ctx, "7", "12345")
	assert.Equal(t, msgInvalidCode, reply)
	sess, _ = f.sessions.Get("7")
	assert.Equal(t, models.StageAwaitingCode, sess.Stage)
	assert.Equal(t, "user@gmail.com", sess.Email)

	f.worker.AssertNotCalled(t, "Attempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTextWithoutSessionIgnored(t *testing.T) {
	f := newFixture(t, fourInvites, nil)
	reply, ok := f.svc.HandleText(context.Background(), "100", "hello")
	assert.False(t, ok)
	assert.Empty(t, reply)
}

func TestRecordJoinIdempotent(t *testing.T) {
	n := &mockNotifier{}
	f := newFixture(t, fourInvites, n)
	ctx := context.Background()

	first := models.Member{Email: "first@gmail.com", Joined: "2025-03-01", Expiry: "30-04-25"}
	n.On("NotifyJoined", "42", first).Return(nil).Once()

	assert.Equal(t, "30-04-25", f.svc.recordJoin(ctx, "t1", "42", first))
	second := models.Member{Email: "second@gmail.com", Joined: "2025-03-10", Expiry: "30-06-25"}
	assert.Equal(t, "30-04-25", f.svc.recordJoin(ctx, "t2", "42", second))

	m, err := f.members.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, first, *m)
	n.AssertExpectations(t)
	n.AssertNumberOfCalls(t, "NotifyJoined", 1)
}

func TestJoinFlowThrottled(t *testing.T) {
	f := newFixture(t, fourInvites, nil)
	f.svc.limiter = NewAttemptLimiter(1, 1)
	ctx := context.Background()
	f.toCodeStage(t, "3")

	f.worker.On("Attempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.Failed("join button not found"), nil)

	reply, _ := f.svc.HandleText(ctx, "3", "123456")
	assert.Equal(t, msgExhausted, reply)

	f.toCodeStage(t, "3")
	reply, _ = f.svc.HandleText(ctx, "3", "123456")
	assert.Equal(t, msgThrottled, reply)
	sess, ok := f.sessions.Get("3")
	require.True(t, ok)
	assert.Equal(t, models.StageAwaitingCode, sess.Stage)
}

func TestCancelAndStatus(t *testing.T) {
	f := newFixture(t, fourInvites, nil)
	ctx := context.Background()

	assert.Equal(t, msgNotJoined, f.svc.Status(ctx, "8"))
	f.svc.Start(ctx, "8")
	assert.Equal(t, msgCancelled, f.svc.Cancel("8"))
	_, ok := f.sessions.Get("8")
	assert.False(t, ok)

	require.NoError(t, f.members.Create(ctx, "8", models.Member{Email: "x@y.io", Joined: "2025-03-01", Expiry: "01-04-25"}))
	assert.Equal(t, "✅ You joined on 2025-03-01 with x@y.io. Access valid till 01-04-25.", f.svc.Status(ctx, "8"))
}
