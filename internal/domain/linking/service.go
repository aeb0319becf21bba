package linking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"banklink/internal/infrastructure/plaid"
)

// Encryptor protects access tokens before they reach the repository.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Service contains the business logic bridging authenticated users to the
// Plaid API and the persistence store. Each operation issues exactly one
// external call and at most one store write; nothing is retried.
type Service struct {
	client    plaid.ClientInterface
	repo      Repository
	encryptor Encryptor
}

// NewService creates a new linking service
func NewService(client plaid.ClientInterface, repo Repository, encryptor Encryptor) *Service {
	return &Service{client: client, repo: repo, encryptor: encryptor}
}

// CreateLinkToken requests a short-lived link token authorizing a linking
// session for the given user. The provider response is passed through verbatim.
func (s *Service) CreateLinkToken(ctx context.Context, userID int64) (*plaid.LinkTokenResponse, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}

	return s.client.CreateLinkToken(ctx, strconv.FormatInt(userID, 10))
}

// ExchangePublicToken trades a public token from a completed linking session
// for a durable access token and persists the resulting item for the user.
// The access token is encrypted before it is stored. The external call failing
// means nothing is written; a duplicate item identifier fails with
// ErrDuplicateItem and leaves the existing row untouched.
func (s *Service) ExchangePublicToken(ctx context.Context, userID int64, publicToken string) (*ExchangeResult, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	if strings.TrimSpace(publicToken) == "" {
		return nil, ErrMissingPublicToken
	}

	exchanged, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryptor.Encrypt(exchanged.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	item, err := s.repo.Create(ctx, CreateItemParams{
		ID:          exchanged.ItemID,
		UserID:      userID,
		AccessToken: encrypted,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateItem) {
			return nil, ErrDuplicateItem
		}
		return nil, fmt.Errorf("failed to save linked item: %w", err)
	}

	return &ExchangeResult{
		ItemID:  item.ID,
		Message: "bank linked successfully",
	}, nil
}

// ListConnectedBanks returns the item identifiers linked by the user, newest
// first. An empty result is a valid outcome, not an error. Access tokens are
// never included.
func (s *Service) ListConnectedBanks(ctx context.Context, userID int64) (*ConnectedBanks, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}

	items, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked items: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	return &ConnectedBanks{
		ConnectedBanks: ids,
		Message:        fmt.Sprintf("%d connected bank(s)", len(ids)),
	}, nil
}

// GetItemDetails fetches provider metadata for one linked item after
// verifying ownership. The stored access token is decrypted only for the
// duration of the provider call.
func (s *Service) GetItemDetails(ctx context.Context, userID int64, itemID string) (*plaid.ItemResponse, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	if itemID == "" {
		return nil, ErrItemNotFound
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.UserID != userID {
		return nil, ErrForbidden
	}

	accessToken, err := s.encryptor.Decrypt(item.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return s.client.GetItem(ctx, accessToken)
}
