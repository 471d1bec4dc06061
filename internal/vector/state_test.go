package vector_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"knowpilot/backend/internal/vector"
)

func TestPostgresStateRepo_Active(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := vector.NewPostgresStateRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT active_class FROM vector_index_state WHERE id = 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"active_class"}).AddRow(vector.ClassA))

	class, err := repo.Active(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, vector.ClassA, class)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateRepo_SetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := vector.NewPostgresStateRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE vector_index_state SET active_class = $1, updated_at = NOW() WHERE id = 1`)).
		WithArgs(vector.ClassB).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetActive(context.Background(), vector.ClassB)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
