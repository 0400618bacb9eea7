package models

import (
	"fmt"
	"strings"
)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeError   OutcomeStatus = "error"
)

// DetailInviteRejected: инвайт недействителен или команда заполнена
const DetailInviteRejected = "team full or invite expired"

// JoinOutcome is the result of one worker attempt.
type JoinOutcome struct {
	Status OutcomeStatus
	Detail string
}

func Success() JoinOutcome { return JoinOutcome{Status: OutcomeSuccess} }

func Failed(format string, args ...any) JoinOutcome {
	return JoinOutcome{Status: OutcomeFailed, Detail: fmt.Sprintf(format, args...)}
}

func Errored(err error) JoinOutcome {
	return JoinOutcome{Status: OutcomeError, Detail: err.Error()}
}

func InviteRejected() JoinOutcome {
	return JoinOutcome{Status: OutcomeFailed, Detail: DetailInviteRejected}
}

func (o JoinOutcome) OK() bool { return o.Status == OutcomeSuccess }

func (o JoinOutcome) Rejected() bool {
	return o.Status == OutcomeFailed && o.Detail == DetailInviteRejected
}

// String renders the single stdout line the worker prints.
func (o JoinOutcome) String() string {
	if o.Status == OutcomeSuccess || o.Detail == "" {
		return string(o.Status)
	}
	return string(o.Status) + ": " + o.Detail
}

// ParseOutcome classifies worker stdout. Explicit "failed:"/"error:" lines win,
// otherwise any case-insensitive "success" counts as success.
func ParseOutcome(stdout string) JoinOutcome {
	text := strings.TrimSpace(stdout)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "failed:"):
			return JoinOutcome{Status: OutcomeFailed, Detail: strings.TrimSpace(line[len("failed:"):])}
		case strings.HasPrefix(lower, "error:"):
			return JoinOutcome{Status: OutcomeError, Detail: strings.TrimSpace(line[len("error:"):])}
		}
	}
	if strings.Contains(strings.ToLower(text), "success") {
		return Success()
	}
	if text == "" {
		return Failed("empty worker output")
	}
	return JoinOutcome{Status: OutcomeFailed, Detail: text}
}
