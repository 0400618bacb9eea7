package browser

import (
	"fmt"
	"net/url"
	"strings"

	"teamjoin/internal/models"
)

// Тексты и селекторы страницы Canva. Вёрстка чужая, поэтому всё в одном месте.
const (
	emailInputSel = `input[type=email]`
	codeInputSel  = `input[aria-label='Enter code']`

	loginText    = "Log in"
	continueText = "Continue"
	submitText   = "Submit"
	joinTeamText = "Join team"

	homePathSuffix = "/home"
)

var inviteRejectedMarkers = []string{
	"This invite link is invalid",
	"team is full",
}

// clickableByText matches buttons and links whose visible text contains text.
func clickableByText(text string) string {
	return fmt.Sprintf(`//*[(self::button or self::a or @role='button') and contains(normalize-space(.), %s)]`, xpathLiteral(text))
}

func buttonByText(text string) string {
	return fmt.Sprintf(`//button[contains(normalize-space(.), %s)]`, xpathLiteral(text))
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

// InviteRejected reports whether the invite page says the link is invalid or
// the team has no free seats.
func InviteRejected(pageText string) (models.JoinOutcome, bool) {
	lower := strings.ToLower(pageText)
	for _, marker := range inviteRejectedMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return models.InviteRejected(), true
		}
	}
	return models.JoinOutcome{}, false
}

// reachedHome: аналог ожидания URL "**/home"
func reachedHome(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(u.Path, "/"), homePathSuffix)
}
