package datastore

import (
	"context"
	"testing"
	"time"

	"flirtquest/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	return bun.NewDB(sqldb, pgdialect.New()), mock
}

func TestInsertUserAchievementCreatesOnce(t *testing.T) {
	db, mock := newMockDB(t)

	// each unlock attempt builds a fresh row, the way the service layer does
	newUnlock := func() *models.UserAchievement {
		return &models.UserAchievement{
			UserID:          "user-1",
			AchievementSlug: "first-interaction",
			UnlockedAt:      time.Now(),
		}
	}

	// first insert lands and returns the generated id
	mock.ExpectQuery(`INSERT INTO "user_achievement"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	created, err := InsertUserAchievement(context.Background(), db, newUnlock())
	require.NoError(t, err)
	assert.True(t, created)

	// duplicate hits ON CONFLICT DO NOTHING and returns no row
	mock.ExpectQuery(`INSERT INTO "user_achievement"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	created, err = InsertUserAchievement(context.Background(), db, newUnlock())
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUserAchievementInTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "user_achievement"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := db.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := InsertUserAchievement(ctx, tx, &models.UserAchievement{
			UserID:          "user-1",
			AchievementSlug: "charmer",
			UnlockedAt:      time.Now(),
		})
		if err != nil {
			return err
		}
		// the caller skips the XP award when nothing was inserted
		assert.False(t, created)
		return context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, mock.ExpectationsWereMet())
}
