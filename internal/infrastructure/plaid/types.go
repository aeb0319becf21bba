package plaid

import (
	"fmt"
	"time"
)

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenCreateRequest struct {
	ClientID     string        `json:"client_id"`
	Secret       string        `json:"secret"`
	ClientName   string        `json:"client_name"`
	User         linkTokenUser `json:"user"`
	Products     []string      `json:"products"`
	Language     string        `json:"language"`
	RedirectURI  string        `json:"redirect_uri,omitempty"`
	CountryCodes []string      `json:"country_codes"`
}

// LinkTokenResponse is Plaid's /link/token/create response, passed through to
// the caller verbatim.
type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"request_id"`
}

type publicTokenExchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

// ExchangeResponse is Plaid's /item/public_token/exchange response.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

type itemGetRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

// Item is the metadata Plaid returns for one linked institution connection.
type Item struct {
	ItemID            string   `json:"item_id"`
	InstitutionID     string   `json:"institution_id"`
	AvailableProducts []string `json:"available_products"`
	BilledProducts    []string `json:"billed_products"`
	ConsentExpiration *string  `json:"consent_expiration_time"`
}

// ItemResponse is Plaid's /item/get response.
type ItemResponse struct {
	Item      Item   `json:"item"`
	RequestID string `json:"request_id"`
}

// APIError is a structured error returned by the Plaid API on non-200
// responses. It carries the upstream error payload to the caller.
type APIError struct {
	StatusCode   int    `json:"-"`
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid API error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.ErrorMessage)
}
