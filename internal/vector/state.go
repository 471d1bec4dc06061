package vector

import (
	"context"
	"database/sql"
)

// PostgresStateRepo persists the active-class pointer in a single-row table.
// Rebuilds happen in a separate process, so the pointer lives in the shared
// database rather than process memory.
type PostgresStateRepo struct {
	db *sql.DB
}

func NewPostgresStateRepo(db *sql.DB) *PostgresStateRepo {
	return &PostgresStateRepo{db: db}
}

func (r *PostgresStateRepo) Active(ctx context.Context) (string, error) {
	var class string
	query := `SELECT active_class FROM vector_index_state WHERE id = 1`
	if err := r.db.QueryRowContext(ctx, query).Scan(&class); err != nil {
		return "", err
	}
	return class, nil
}

func (r *PostgresStateRepo) SetActive(ctx context.Context, class string) error {
	query := `UPDATE vector_index_state SET active_class = $1, updated_at = NOW() WHERE id = 1`
	_, err := r.db.ExecContext(ctx, query, class)
	return err
}
