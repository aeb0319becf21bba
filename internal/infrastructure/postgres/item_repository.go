package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"banklink/internal/domain/linking"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// ItemRepository implements the linking.Repository interface for PostgreSQL
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new linked item. The items.id column carries the
// provider's globally unique item identifier; a conflict means the same
// institution connection was already linked and surfaces as
// linking.ErrDuplicateItem instead of overwriting the existing row.
func (r *ItemRepository) Create(ctx context.Context, params linking.CreateItemParams) (*linking.BankItem, error) {
	query := `
		INSERT INTO items (id, user_id, access_token)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, access_token, created_at, updated_at
	`

	var item linking.BankItem
	err := r.db.QueryRowContext(ctx, query, params.ID, params.UserID, params.AccessToken).Scan(
		&item.ID, &item.UserID, &item.AccessToken, &item.CreatedAt, &item.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, linking.ErrDuplicateItem
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return &item, nil
}

// GetByID retrieves a linked item by its provider item identifier
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*linking.BankItem, error) {
	query := `
		SELECT id, user_id, access_token, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var item linking.BankItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.UserID, &item.AccessToken, &item.CreatedAt, &item.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, linking.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

// ListByUserID retrieves all linked items for a user, newest first
func (r *ItemRepository) ListByUserID(ctx context.Context, userID int64) ([]*linking.BankItem, error) {
	query := `
		SELECT id, user_id, access_token, created_at, updated_at
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*linking.BankItem
	for rows.Next() {
		var item linking.BankItem
		err := rows.Scan(&item.ID, &item.UserID, &item.AccessToken, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}
