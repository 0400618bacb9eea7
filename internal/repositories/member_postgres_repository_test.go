package repositories

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamjoin/internal/models"
	"teamjoin/internal/utils"
)

// нужен живой postgres: DATABASE_URL=postgres://... go test ./internal/repositories
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(context.Background()))
	return db
}

func TestPostgresMemberRepositoryCreateOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo, err := NewPostgresMemberRepository(ctx, db)
	require.NoError(t, err)

	userID := "test-" + utils.NewAttemptID()
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM members WHERE user_id = $1`, userID)
	})

	_, err = repo.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	first := models.Member{Email: "a@b.co", Joined: "2025-01-02", Expiry: "01-02-25"}
	require.NoError(t, repo.Create(ctx, userID, first))

	err = repo.Create(ctx, userID, models.Member{Email: "other@b.co", Joined: "2025-01-03", Expiry: "09-09-25"})
	assert.ErrorIs(t, err, ErrMemberExists)

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, *got)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, models.MemberRecord{UserID: userID, Member: first})
}

func TestPostgresMemberRepositorySchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := NewPostgresMemberRepository(ctx, db)
	require.NoError(t, err)
	_, err = NewPostgresMemberRepository(ctx, db)
	assert.NoError(t, err)
}
