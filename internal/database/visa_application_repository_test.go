package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisaApplicationRepository_CreateDraft(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewVisaApplicationRepository(mockDB)

	mock.ExpectExec("INSERT INTO visa_applications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	app := &models.VisaApplication{
		UserID:             uuid.New(),
		DestinationCountry: models.NewNullString("France"),
	}
	err = repo.CreateDraft(app)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.True(t, app.IsDraft)
	assert.Equal(t, models.StatusPending, app.ApplicationStatus)
	assert.Equal(t, models.PaymentUnpaid, app.PaymentStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisaApplicationRepository_UpdateDraft(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_applications SET (.+) is_draft = true").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.UpdateDraft(uuid.New(), uuid.New(), map[string]interface{}{
			"destination_country": "Germany",
		})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejects Unknown Column", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		err = repo.UpdateDraft(uuid.New(), uuid.New(), map[string]interface{}{
			"payment_status": "Paid",
		})
		assert.Error(t, err)
	})

	t.Run("Wrong Owner Or Submitted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_applications SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdateDraft(uuid.New(), uuid.New(), map[string]interface{}{"notes": "x"})
		assert.ErrorIs(t, err, ErrApplicationNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVisaApplicationRepository_Submit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		id := uuid.New()
		userID := uuid.New()

		mock.ExpectExec("UPDATE visa_applications").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Submit(id, userID, "FRA0703251405TOU")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Application ID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_applications").
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "visa_applications_application_id_key"`))

		err = repo.Submit(uuid.New(), uuid.New(), "FRA0703251405TOU")
		assert.ErrorIs(t, err, ErrDuplicateApplicationID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_applications").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Submit(uuid.New(), uuid.New(), "FRA0703251405TOU")
		assert.ErrorIs(t, err, ErrApplicationNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVisaApplicationRepository_ApplicationIDExists(t *testing.T) {
	t.Run("Taken", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectQuery("SELECT COUNT(.+) FROM visa_applications WHERE application_id").
			WithArgs("FRA0703251405TOU").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ApplicationIDExists("FRA0703251405TOU")
		require.NoError(t, err)
		assert.True(t, exists)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Free", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectQuery("SELECT COUNT(.+) FROM visa_applications WHERE application_id").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ApplicationIDExists("GER0102030405BUS")
		require.NoError(t, err)
		assert.False(t, exists)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVisaApplicationRepository_UpdateStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		id := uuid.New()
		mock.ExpectExec("UPDATE visa_applications SET application_status").
			WithArgs(models.StatusVisaApproved, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.UpdateStatus(id, models.StatusVisaApproved)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_applications SET application_status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdateStatus(uuid.New(), models.StatusVisaApproved)
		assert.ErrorIs(t, err, ErrApplicationNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVisaApplicationRepository_MarkPaidByProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		appID := uuid.New()
		userID := uuid.New()

		mock.ExpectExec("UPDATE visa_applications SET payment_status").
			WithArgs(models.PaymentPaid, sqlmock.AnyArg(), appID.String(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.MarkPaidByProduct(appID.String(), userID)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Owner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_applications SET payment_status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.MarkPaidByProduct(uuid.New().String(), uuid.New())
		assert.ErrorIs(t, err, ErrApplicationNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVisaApplicationRepository_SetChecklistFile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		itemID := uuid.New()
		mock.ExpectExec("UPDATE visa_checklist_items").
			WithArgs("/uploads/checklist/abc.pdf", models.ChecklistPending, sqlmock.AnyArg(), itemID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SetChecklistFile(itemID, "/uploads/checklist/abc.pdf")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewVisaApplicationRepository(mockDB)

		mock.ExpectExec("UPDATE visa_checklist_items").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SetChecklistFile(uuid.New(), "/uploads/checklist/abc.pdf")
		assert.ErrorIs(t, err, ErrChecklistItemNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVisaApplicationRepository_AddChecklistItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewVisaApplicationRepository(mockDB)

	mock.ExpectExec("INSERT INTO visa_checklist_items").
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := &models.ChecklistItem{
		VisaApplicationID: uuid.New(),
		Note:              "Bank Statement",
	}
	err = repo.AddChecklistItem(item)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, models.ChecklistPending, item.Accepted)

	assert.NoError(t, mock.ExpectationsWereMet())
}
