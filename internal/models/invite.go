package models

import (
	"fmt"
	"time"
)

// InviteExpiryLayout: DD-MM-YY, как в invites.txt
const InviteExpiryLayout = "02-01-06"

type Invite struct {
	Link   string `json:"link" validate:"required,url"`
	Expiry string `json:"expiry" validate:"required,len=8"`
}

func (i Invite) ExpiryDate() (time.Time, error) {
	t, err := time.Parse(InviteExpiryLayout, i.Expiry)
	if err != nil {
		return time.Time{}, fmt.Errorf("invite expiry %q: %w", i.Expiry, err)
	}
	return t, nil
}

// ActiveOn reports whether the invite can still be used on the given day.
// The expiry day itself is still valid. Unparsable expiry is never active.
func (i Invite) ActiveOn(day time.Time) bool {
	exp, err := i.ExpiryDate()
	if err != nil {
		return false
	}
	y, m, d := day.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !today.After(exp)
}

// InviteStatus: инвайт с признаком активности на сегодня (для админки)
type InviteStatus struct {
	Invite
	Active bool `json:"active"`
}
