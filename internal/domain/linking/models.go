package linking

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrInvalidUser        = errors.New("valid user ID is required")
	ErrMissingPublicToken = errors.New("public token is required")
	ErrDuplicateItem      = errors.New("item already linked")
	ErrItemNotFound       = errors.New("item not found")
	ErrForbidden          = errors.New("access forbidden")
)

// BankItem represents one linked financial institution connection.
// The ID is the provider's item identifier and is globally unique.
// AccessToken holds the durable provider credential, encrypted at rest;
// it is never serialized and never returned by listing operations.
type BankItem struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateItemParams struct {
	ID          string
	UserID      int64
	AccessToken string
}

// ExchangeResult is returned after a successful public-token exchange.
type ExchangeResult struct {
	ItemID  string `json:"itemId"`
	Message string `json:"message"`
}

// ConnectedBanks lists a user's linked item identifiers. Access tokens are
// deliberately absent from this type.
type ConnectedBanks struct {
	ConnectedBanks []string `json:"connectedBanks"`
	Message        string   `json:"message"`
}
