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
)

func TestInsertUserMissionRejectsDuplicateStart(t *testing.T) {
	db, mock := newMockDB(t)

	// a start attempt always builds a fresh instance, mirroring the service
	newInstance := func() *models.UserMission {
		return &models.UserMission{
			UserID:      "user-1",
			MissionSlug: "daily-compliment",
			PeriodStart: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			StartedAt:   time.Now(),
		}
	}

	mock.ExpectQuery(`INSERT INTO "user_mission"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	created, err := InsertUserMission(context.Background(), db, newInstance())
	require.NoError(t, err)
	assert.True(t, created)

	// same user, mission and period — the unique index swallows the insert
	mock.ExpectQuery(`INSERT INTO "user_mission"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	created, err = InsertUserMission(context.Background(), db, newInstance())
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteUserMissionFlipsOnlyOpenInstances(t *testing.T) {
	db, mock := newMockDB(t)

	completedAt := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "user_mission"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	flipped, err := CompleteUserMission(context.Background(), db, 7, completedAt)
	require.NoError(t, err)
	assert.True(t, flipped)

	// already completed: the completed_at IS NULL guard matches no row
	mock.ExpectExec(`UPDATE "user_mission"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	flipped, err = CompleteUserMission(context.Background(), db, 7, completedAt)
	require.NoError(t, err)
	assert.False(t, flipped)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteUserMissionAwardsInsideTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "user_mission"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "user_stats"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		flipped, err := CompleteUserMission(ctx, tx, 7, time.Now())
		if err != nil {
			return err
		}
		require.True(t, flipped)
		return AddUserXP(ctx, tx, "user-1", 25)
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
