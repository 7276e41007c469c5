package customers

import (
	"context"
	"database/sql"
	"strings"

	"github.com/joao-fontenele/storefront-orders/internal/database"
	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type CustomerRepository struct {
	db database.DBTX
}

func NewCustomerRepository(db database.DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO customers (email_address, full_name)
		VALUES ($1, $2)
		RETURNING customer_id
	`, c.Email, c.FullName).Scan(&c.ID)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.getOne(ctx, `
		SELECT customer_id, email_address, full_name
		FROM customers
		WHERE customer_id = $1
	`, id)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, `
		SELECT customer_id, email_address, full_name
		FROM customers
		WHERE lower(email_address) = lower($1)
	`, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Email, &c.FullName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// SearchByName matches fragment literally anywhere in the name, ignoring case.
func (r *CustomerRepository) SearchByName(ctx context.Context, fragment string) ([]domain.Customer, error) {
	return r.list(ctx, `
		SELECT customer_id, email_address, full_name
		FROM customers
		WHERE full_name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY customer_id
	`, escapeLike(fragment))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, `
		SELECT customer_id, email_address, full_name
		FROM customers
		ORDER BY customer_id
	`)
}

func (r *CustomerRepository) list(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.FullName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Update returns false when no customer has the given id.
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE customers SET email_address = $1, full_name = $2
		WHERE customer_id = $3
	`, c.Email, c.FullName, c.ID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
