package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGetTableColumns(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("ID", "VARCHAR(36)", "NO", "PRI", nil, "")
	rows.AddRow("status", "varchar(32)", "YES", "", nil, "")

	mock.ExpectQuery("SHOW COLUMNS FROM `merge_jobs`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "merge_jobs")
	assert.NoError(t, err)
	assert.Len(t, columns, 2)

	// Field and type are normalized to lowercase.
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "varchar(36)", columns[0].Type)
}

func TestVerifyColumns(t *testing.T) {
	t.Run("All Present", func(t *testing.T) {
		db, mock := setupMockDB(t)

		rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
		rows.AddRow("id", "varchar(36)", "NO", "PRI", nil, "")
		rows.AddRow("status", "varchar(32)", "YES", "", nil, "")
		rows.AddRow("created_at", "datetime", "YES", "", nil, "")

		mock.ExpectQuery("SHOW COLUMNS FROM `merge_jobs`").WillReturnRows(rows)

		missing, err := VerifyColumns(db, "merge_jobs", []string{"id", "status"})
		assert.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("Missing Column", func(t *testing.T) {
		db, mock := setupMockDB(t)

		rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
		rows.AddRow("id", "varchar(36)", "NO", "PRI", nil, "")

		mock.ExpectQuery("SHOW COLUMNS FROM `merge_jobs`").WillReturnRows(rows)

		missing, err := VerifyColumns(db, "merge_jobs", []string{"id", "status", "strategy"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"status", "strategy"}, missing)
	})

	t.Run("Query Error", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectQuery("SHOW COLUMNS FROM `nope`").WillReturnError(assert.AnError)

		missing, err := VerifyColumns(db, "nope", []string{"id"})
		assert.Error(t, err)
		assert.Nil(t, missing)
	})
}
