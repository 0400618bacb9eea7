package models

import "time"

// JoinedLayout: формат даты вступления в users.json
const JoinedLayout = "2006-01-02"

// Member: пользователь бота, успешно вступивший в команду.
// Ключ (Telegram user id) хранится отдельно, как ключ мапы в users.json.
type Member struct {
	Email  string `json:"email"`
	Joined string `json:"joined"`
	Expiry string `json:"expiry"` // DD-MM-YY, копия срока инвайта
}

// MemberRecord is a Member with its user id, used in admin listings.
type MemberRecord struct {
	UserID string `json:"user_id"`
	Member
}

func NewMember(email string, joinedAt time.Time, invite Invite) Member {
	return Member{
		Email:  email,
		Joined: joinedAt.Format(JoinedLayout),
		Expiry: invite.Expiry,
	}
}
