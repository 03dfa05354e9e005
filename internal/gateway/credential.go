package gateway

import (
	"os"
	"strings"

	"github.com/and161185/typestate-monitor/internal/errs"
)

// CredentialFunc returns the API key appended to the RPC endpoint.
type CredentialFunc func() (string, error)

// EnvCredential reads the credential from the named environment variable at call time.
func EnvCredential(name string) CredentialFunc {
	return func() (string, error) {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return "", errs.ErrCredentialMissing
		}
		return v, nil
	}
}

// StaticCredential always returns key.
func StaticCredential(key string) CredentialFunc {
	return func() (string, error) {
		if strings.TrimSpace(key) == "" {
			return "", errs.ErrCredentialMissing
		}
		return key, nil
	}
}
