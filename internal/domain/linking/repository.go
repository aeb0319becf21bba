package linking

import "context"

// Repository defines the interface for linked-item data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create inserts a new linked item. Returns ErrDuplicateItem when the
	// item identifier is already present.
	Create(ctx context.Context, params CreateItemParams) (*BankItem, error)

	// GetByID retrieves a linked item by its provider item identifier.
	GetByID(ctx context.Context, id string) (*BankItem, error)

	// ListByUserID retrieves all linked items for a specific user, newest first.
	ListByUserID(ctx context.Context, userID int64) ([]*BankItem, error)
}
