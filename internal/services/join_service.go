package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"teamjoin/internal/models"
	"teamjoin/internal/repositories"
	"teamjoin/internal/utils"
)

const (
	msgAskEmail     = "📧 Please send your email address (Gmail preferred)."
	msgInvalidEmail = "❌ Invalid email. Please try again."
	msgInvalidCode  = "❌ Invalid code. Please send a 6-digit number."
	msgExhausted    = "❌ All invite links are either expired or full. Please try again later."
	msgThrottled    = "⏳ Too many attempts. Please wait a while and send the code again."
	msgInternal     = "⚠️ Something went wrong. Please try again later."
	msgCancelled    = "👌 Cancelled. Send /joincanva to start again."
	msgNotJoined    = "ℹ️ You have not joined a team yet. Send /joincanva to start."
)

// JoinService ведёт диалог "email -> код" и перебирает инвайты.
type JoinService struct {
	members  repositories.MemberRepository
	invites  repositories.InviteRepository
	sessions *repositories.SessionStore
	worker   WorkerRunner
	notifier AdminNotifier
	limiter  *AttemptLimiter
	now      func() time.Time
}

func NewJoinService(
	members repositories.MemberRepository,
	invites repositories.InviteRepository,
	sessions *repositories.SessionStore,
	worker WorkerRunner,
	notifier AdminNotifier,
	limiter *AttemptLimiter,
) *JoinService {
	return &JoinService{
		members:  members,
		invites:  invites,
		sessions: sessions,
		worker:   worker,
		notifier: notifier,
		limiter:  limiter,
		now:      time.Now,
	}
}

// Start begins the flow for a user, or tells an existing member when their
// access ends.
func (s *JoinService) Start(ctx context.Context, userID string) string {
	m, err := s.members.Get(ctx, userID)
	switch {
	case err == nil:
		return fmt.Sprintf("🛑 You already joined a team. Access valid till %s.", m.Expiry)
	case !errors.Is(err, repositories.ErrMemberNotFound):
		log.Printf("[join][start] member lookup failed userID=%s: %v", userID, err)
		return msgInternal
	}
	s.sessions.Set(userID, models.Session{Stage: models.StageAwaitingEmail})
	log.Printf("[join][start] userID=%s stage=%s", userID, models.StageAwaitingEmail)
	return msgAskEmail
}

// HandleText routes a plain message by the user's stage. ok is false when
// the user has no active flow and the message should be ignored.
func (s *JoinService) HandleText(ctx context.Context, userID, text string) (reply string, ok bool) {
	sess, found := s.sessions.Get(userID)
	if !found {
		return "", false
	}
	switch sess.Stage {
	case models.StageAwaitingEmail:
		return s.SubmitEmail(userID, text), true
	case models.StageAwaitingCode:
		return s.SubmitCode(ctx, userID, text), true
	}
	return "", false
}

func (s *JoinService) SubmitEmail(userID, text string) string {
	email, valid := ValidateEmail(text)
	if !valid {
		log.Printf("[join][email] invalid userID=%s", userID)
		return msgInvalidEmail
	}
	s.sessions.Set(userID, models.Session{Stage: models.StageAwaitingCode, Email: email})
	log.Printf("[join][email] userID=%s email=%q stage=%s", userID, email, models.StageAwaitingCode)
	return fmt.Sprintf("📨 Invite sent to %s. Please send the 6-digit Canva code you received.", email)
}

// SubmitCode tries every active invite in file order until the worker
// reports success. The first success wins; failures just move on.
func (s *JoinService) SubmitCode(ctx context.Context, userID, text string) string {
	code, valid := ValidateCode(text)
	if !valid {
		log.Printf("[join][code] invalid userID=%s", userID)
		return msgInvalidCode
	}
	sess, found := s.sessions.Get(userID)
	if !found || sess.Stage != models.StageAwaitingCode {
		return msgAskEmail
	}
	if !s.limiter.Allow(userID) {
		log.Printf("[join][code] throttled userID=%s", userID)
		return msgThrottled
	}

	attemptID := utils.NewAttemptID()
	start := time.Now()
	today := s.now()

	invites, err := s.invites.List(ctx)
	if err != nil {
		log.Printf("[join][%s] load invites failed: %v", attemptID, err)
	}
	log.Printf("[join][%s] start userID=%s email=%q invites=%d", attemptID, userID, sess.Email, len(invites))

	tried := 0
	for i, inv := range invites {
		if !inv.ActiveOn(today) {
			log.Printf("[join][%s] skip #%d expired=%s", attemptID, i, inv.Expiry)
			continue
		}
		if ctx.Err() != nil {
			break
		}
		tried++
		outcome, err := s.worker.Attempt(ctx, sess.Email, code, inv.Link)
		if err != nil {
			log.Printf("[join][%s] #%d worker error: %v", attemptID, i, err)
			continue
		}
		if !outcome.OK() {
			log.Printf("[join][%s] #%d not joined: %s", attemptID, i, outcome)
			continue
		}

		expiry := s.recordJoin(ctx, attemptID, userID, models.NewMember(sess.Email, today, inv))
		s.sessions.Delete(userID)
		log.Printf("[join][%s] success userID=%s invite=#%d took=%s", attemptID, userID, i, time.Since(start).Truncate(time.Millisecond))
		return fmt.Sprintf("✅ Joined Canva team! Access valid till %s.", expiry)
	}

	s.sessions.Delete(userID)
	log.Printf("[join][%s] exhausted userID=%s tried=%d took=%s", attemptID, userID, tried, time.Since(start).Truncate(time.Millisecond))
	if s.notifier != nil {
		if err := s.notifier.NotifyExhausted(userID, sess.Email, tried); err != nil {
			log.Printf("[join][%s] warning: %v", attemptID, err)
		}
	}
	return msgExhausted
}

// recordJoin writes the member once. A record that already exists is kept
// as is and its expiry is reported.
func (s *JoinService) recordJoin(ctx context.Context, attemptID, userID string, m models.Member) string {
	err := s.members.Create(ctx, userID, m)
	switch {
	case errors.Is(err, repositories.ErrMemberExists):
		if existing, gerr := s.members.Get(ctx, userID); gerr == nil {
			log.Printf("[join][%s] member already recorded userID=%s", attemptID, userID)
			return existing.Expiry
		}
		return m.Expiry
	case err != nil:
		log.Printf("[join][%s] save member failed userID=%s: %v", attemptID, userID, err)
		return m.Expiry
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyJoined(userID, m); err != nil {
			log.Printf("[join][%s] warning: %v", attemptID, err)
		}
	}
	return m.Expiry
}

func (s *JoinService) Cancel(userID string) string {
	s.sessions.Delete(userID)
	return msgCancelled
}

func (s *JoinService) Status(ctx context.Context, userID string) string {
	m, err := s.members.Get(ctx, userID)
	switch {
	case errors.Is(err, repositories.ErrMemberNotFound):
		return msgNotJoined
	case err != nil:
		log.Printf("[join][status] member lookup failed userID=%s: %v", userID, err)
		return msgInternal
	}
	return fmt.Sprintf("✅ You joined on %s with %s. Access valid till %s.", m.Joined, m.Email, m.Expiry)
}
