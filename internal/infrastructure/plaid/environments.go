package plaid

import (
	"errors"
	"fmt"
)

// Environment selects which Plaid host and credential pair the client uses.
type Environment string

const (
	EnvSandbox     Environment = "sandbox"
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// environmentHosts is the single source of truth for supported environments.
var environmentHosts = map[Environment]string{
	EnvSandbox:     "https://sandbox.plaid.com",
	EnvDevelopment: "https://development.plaid.com",
	EnvProduction:  "https://production.plaid.com",
}

var (
	ErrUnknownEnvironment = errors.New("unknown environment")
	ErrMissingCredentials = errors.New("no credentials configured for environment")
)

// ParseEnvironment validates an environment name.
func ParseEnvironment(name string) (Environment, error) {
	env := Environment(name)
	if _, ok := environmentHosts[env]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return env, nil
}

// Credentials is the client identifier / secret pair for one environment.
type Credentials struct {
	ClientID string
	Secret   string
}
