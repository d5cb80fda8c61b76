package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewNotificationRepository(mockDB)

	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := &models.Notification{
		VisaApplicationID: uuid.New(),
		To:                models.NotifyUser,
		Title:             "Please upload document: Bank Statement",
	}
	err = repo.Create(n)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewNotificationRepository(mockDB)

		id := uuid.New()
		userID := uuid.New()

		mock.ExpectExec("UPDATE notifications").
			WithArgs(id, models.NotifyUser, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.MarkRead(id, userID)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Owner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewNotificationRepository(mockDB)

		mock.ExpectExec("UPDATE notifications").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.MarkRead(uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrNotificationNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
