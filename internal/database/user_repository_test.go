package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("INSERT INTO users").
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := repo.CreateUser("Priya Sharma", "Priya@Example.com ", "+91 98765 43210", "hashed-password", "USER")
		require.NoError(t, err)

		assert.Equal(t, "Priya Sharma", user.Name)
		assert.Equal(t, "priya@example.com", user.Email)
		assert.Equal(t, "USER", user.Role)
		assert.True(t, user.Active)
		assert.NotEqual(t, uuid.Nil, user.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

		user, err := repo.CreateUser("Priya Sharma", "priya@example.com", "", "hashed-password", "USER")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("connection refused"))

		user, err := repo.CreateUser("Priya Sharma", "priya@example.com", "", "hashed-password", "USER")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		userID := uuid.New()
		rows := userRows(userID, "Priya Sharma", "priya@example.com", "USER", true)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("priya@example.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(" Priya@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "priya@example.com", user.Email)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		userID := uuid.New()
		rows := userRows(userID, "Priya Sharma", "priya@example.com", "EXPERT", true)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
			WithArgs(userID).
			WillReturnRows(rows)

		user, err := repo.GetByID(userID)
		require.NoError(t, err)
		assert.Equal(t, "EXPERT", user.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByID(uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("UPDATE users SET").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.UpdateProfile(uuid.New(), map[string]interface{}{"name": "New Name"})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejects Unknown Column", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		err = repo.UpdateProfile(uuid.New(), map[string]interface{}{"role": "ADMIN"})
		assert.Error(t, err)
	})

	t.Run("No Updates Is A Noop", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		err = repo.UpdateProfile(uuid.New(), map[string]interface{}{})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("UPDATE users SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdateProfile(uuid.New(), map[string]interface{}{"name": "New Name"})
		assert.ErrorIs(t, err, ErrUserNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SetOTP(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("UPDATE users SET otp").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SetOTP("priya@example.com", "123456", time.Now().Add(10*time.Minute))
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("UPDATE users SET otp").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SetOTP("nobody@example.com", "123456", time.Now().Add(10*time.Minute))
		assert.ErrorIs(t, err, ErrUserNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SetActive(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("UPDATE users SET active").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SetActive(uuid.New(), false)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB := &mockDatabase{db: db}
		repo := NewUserRepository(mockDB)

		mock.ExpectExec("UPDATE users SET active").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SetActive(uuid.New(), true)
		assert.ErrorIs(t, err, ErrUserNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_CountByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewUserRepository(mockDB)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("EXPERT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByRole("EXPERT")
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func userRows(id uuid.UUID, name, email, role string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "password", "role", "nationality", "country",
		"address", "profile_pic", "expertise", "active", "google_id", "otp", "otp_expiry",
		"created_at", "updated_at",
	}).AddRow(id, name, email, nil, "hashed-password", role, nil, nil, nil, nil, nil,
		active, nil, nil, nil, now, now)
}

// Mock database implementation for testing. Get and Select run through
// sqlx so struct scanning behaves like the real connection.
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) sqlx() *sqlx.DB {
	return sqlx.NewDb(m.db, "sqlmock")
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.sqlx().Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.sqlx().Select(dest, query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
