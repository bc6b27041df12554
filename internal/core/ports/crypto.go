package ports

import "github.com/nextcloud/ncp-activation/internal/core/domain"

// CryptoHandle gives access to key material derived from the master password.
type CryptoHandle interface {
	// Secret derives the named secret. The same name always yields the same value.
	Secret(name string) (string, error)
}

// CryptoService derives key material and the configuration bundle from a password.
type CryptoService interface {
	Derive(version, password string) (CryptoHandle, error)
	BuildConfig(version string, h CryptoHandle) (domain.NcpConfig, error)
	Secrets(cfg domain.NcAioConfig, h CryptoHandle) (domain.NcAioSecrets, error)
}
