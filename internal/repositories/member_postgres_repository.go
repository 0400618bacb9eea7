package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"teamjoin/internal/models"
)

const membersSchema = `
CREATE TABLE IF NOT EXISTS members (
	user_id    TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	joined     TEXT NOT NULL,
	expiry     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type postgresMemberRepository struct {
	db *sql.DB
}

// NewPostgresMemberRepository creates the members table if needed.
func NewPostgresMemberRepository(ctx context.Context, db *sql.DB) (MemberRepository, error) {
	if _, err := db.ExecContext(ctx, membersSchema); err != nil {
		return nil, fmt.Errorf("create members table: %w", err)
	}
	return &postgresMemberRepository{db: db}, nil
}

func (r *postgresMemberRepository) Get(ctx context.Context, userID string) (*models.Member, error) {
	var m models.Member
	err := r.db.QueryRowContext(ctx, `
		SELECT email, joined, expiry
		FROM members
		WHERE user_id = $1
	`, userID).Scan(&m.Email, &m.Joined, &m.Expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresMemberRepository) Create(ctx context.Context, userID string, m models.Member) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO members (user_id, email, joined, expiry)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, m.Email, m.Joined, m.Expiry)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberExists
	}
	return nil
}

func (r *postgresMemberRepository) List(ctx context.Context) ([]models.MemberRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, email, joined, expiry
		FROM members
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MemberRecord
	for rows.Next() {
		var rec models.MemberRecord
		if err := rows.Scan(&rec.UserID, &rec.Email, &rec.Joined, &rec.Expiry); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
