package ticket

import (
	"context"
	"database/sql"
)

type Repository interface {
	Save(ctx context.Context, description string) (int64, error)
	List(ctx context.Context) ([]Ticket, error)
	Get(ctx context.Context, id int64) (*Ticket, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, description string) (int64, error) {
	var id int64
	query := `INSERT INTO tickets (description, status) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, description, StatusOpen).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Ticket, error) {
	query := `SELECT id, description, status, created_at FROM tickets ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (*Ticket, error) {
	t := &Ticket{}
	query := `SELECT id, description, status, created_at FROM tickets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Description, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count)
	return count, err
}
