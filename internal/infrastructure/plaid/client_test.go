package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testCredentials() map[Environment]Credentials {
	return map[Environment]Credentials{
		EnvSandbox:     {ClientID: "sandbox-id", Secret: "sandbox-secret"},
		EnvDevelopment: {ClientID: "dev-id", Secret: "dev-secret"},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{
		Credentials: testCredentials(),
		ClientName:  "Plaid Test App",
		RedirectURI: "http://localhost:3000/oauth",
		BaseURLs: map[Environment]string{
			EnvSandbox:     srv.URL,
			EnvDevelopment: srv.URL,
		},
	}, EnvSandbox)
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}

	return client, srv
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Environment
		wantErr bool
	}{
		{name: "sandbox", input: "sandbox", want: EnvSandbox},
		{name: "development", input: "development", want: EnvDevelopment},
		{name: "production", input: "production", want: EnvProduction},
		{name: "unknown", input: "staging", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnvironment(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownEnvironment) {
					t.Errorf("ParseEnvironment(%q) error = %v, want ErrUnknownEnvironment", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEnvironment(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseEnvironment(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewClient_MissingDefaultCredentials(t *testing.T) {
	_, err := NewClient(Options{
		Credentials: map[Environment]Credentials{
			EnvSandbox: {ClientID: "id", Secret: "secret"},
		},
	}, EnvProduction)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("NewClient() error = %v, want ErrMissingCredentials", err)
	}
}

func TestNewClient_UnknownDefaultEnvironment(t *testing.T) {
	_, err := NewClient(Options{Credentials: testCredentials()}, Environment("staging"))
	if !errors.Is(err, ErrUnknownEnvironment) {
		t.Errorf("NewClient() error = %v, want ErrUnknownEnvironment", err)
	}
}

func TestCreateLinkToken_PassesRequestFields(t *testing.T) {
	var captured map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/link/token/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"link_token": "link-sandbox-53b50685",
			"expiration": time.Now().Add(4 * time.Hour).UTC().Format(time.RFC3339),
			"request_id": "AbUcba2WxQl7KTP",
		})
	})

	resp, err := client.CreateLinkToken(context.Background(), "42")
	if err != nil {
		t.Fatalf("CreateLinkToken() failed: %v", err)
	}

	if resp.LinkToken != "link-sandbox-53b50685" {
		t.Errorf("LinkToken = %q, want link-sandbox-53b50685", resp.LinkToken)
	}
	if resp.RequestID != "AbUcba2WxQl7KTP" {
		t.Errorf("RequestID = %q, want AbUcba2WxQl7KTP", resp.RequestID)
	}

	if captured["client_id"] != "sandbox-id" {
		t.Errorf("client_id = %v, want sandbox-id", captured["client_id"])
	}
	if captured["secret"] != "sandbox-secret" {
		t.Errorf("secret = %v, want sandbox-secret", captured["secret"])
	}
	user, _ := captured["user"].(map[string]any)
	if user["client_user_id"] != "42" {
		t.Errorf("client_user_id = %v, want 42", user["client_user_id"])
	}
	if captured["language"] != "en" {
		t.Errorf("language = %v, want en", captured["language"])
	}
	if captured["client_name"] != "Plaid Test App" {
		t.Errorf("client_name = %v, want Plaid Test App", captured["client_name"])
	}
}

func TestExchangePublicToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item/public_token/exchange" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "access-sandbox-abc",
			"item_id":      "x8DzxW5Kogfr33E44K5xuee5jDvlGAunyV87V",
			"request_id":   "req-1",
		})
	})

	resp, err := client.ExchangePublicToken(context.Background(), "public-sandbox-xyz")
	if err != nil {
		t.Fatalf("ExchangePublicToken() failed: %v", err)
	}
	if resp.AccessToken != "access-sandbox-abc" {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}
	if resp.ItemID != "x8DzxW5Kogfr33E44K5xuee5jDvlGAunyV87V" {
		t.Errorf("ItemID = %q", resp.ItemID)
	}
}

func TestPost_APIErrorDecoded(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error_type":    "INVALID_REQUEST",
			"error_code":    "INVALID_FIELD",
			"error_message": "client_user_id is required",
			"request_id":    "req-err",
		})
	})

	_, err := client.CreateLinkToken(context.Background(), "")
	if err == nil {
		t.Fatal("CreateLinkToken() expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.ErrorCode != "INVALID_FIELD" {
		t.Errorf("ErrorCode = %q, want INVALID_FIELD", apiErr.ErrorCode)
	}
	if apiErr.RequestID != "req-err" {
		t.Errorf("RequestID = %q, want req-err", apiErr.RequestID)
	}
}

func TestSetEnvironment_SwitchesCredentials(t *testing.T) {
	var captured map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]string{
			"link_token": "link-dev-1",
			"request_id": "req-2",
		})
	})

	env, err := client.SetEnvironment(EnvDevelopment)
	if err != nil {
		t.Fatalf("SetEnvironment() failed: %v", err)
	}
	if env != EnvDevelopment {
		t.Errorf("SetEnvironment() = %v, want development", env)
	}

	// The very next call must use the new environment's credentials.
	if _, err := client.CreateLinkToken(context.Background(), "42"); err != nil {
		t.Fatalf("CreateLinkToken() failed: %v", err)
	}
	if captured["client_id"] != "dev-id" {
		t.Errorf("client_id = %v, want dev-id (stale configuration read)", captured["client_id"])
	}
}

func TestSetEnvironment_FailureKeepsPrevious(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	// No production credentials configured.
	env, err := client.SetEnvironment(EnvProduction)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("SetEnvironment() error = %v, want ErrMissingCredentials", err)
	}
	if env != EnvSandbox {
		t.Errorf("SetEnvironment() returned %v, want previous environment sandbox", env)
	}
	if got := client.CurrentEnvironment(); got != EnvSandbox {
		t.Errorf("CurrentEnvironment() = %v, want sandbox", got)
	}
}

func TestSetEnvironment_UnknownEnvironment(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := client.SetEnvironment(Environment("staging")); !errors.Is(err, ErrUnknownEnvironment) {
		t.Errorf("SetEnvironment() error = %v, want ErrUnknownEnvironment", err)
	}
	if got := client.CurrentEnvironment(); got != EnvSandbox {
		t.Errorf("CurrentEnvironment() = %v, want sandbox", got)
	}
}
