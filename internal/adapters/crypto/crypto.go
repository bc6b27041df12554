// Package crypto derives the NCP key material and configuration bundle from
// the master password.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
	"github.com/nextcloud/ncp-activation/internal/core/ports"
)

// Params are the argon2id cost parameters.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams: time=3, memory=64MB, parallelism=4.
var DefaultParams = Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}

const (
	masterKeyLength = 32
	secretBytes     = 16 // rendered as 32 hex characters
)

// ErrEmptyPassword is returned when deriving from an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// instanceNamespace scopes instance ids generated from derived key material.
var instanceNamespace = uuid.MustParse("6c1b7a9e-4f0d-5d8a-9a43-3e2f5b7c0d11")

// Secret names used for HKDF expansion.
const (
	secretInstanceID   = "instance_id"
	secretDatabase     = "database_password"
	secretRedis        = "redis_password"
	secretAdmin        = "admin_password"
	secretTurn         = "turn_secret"
	secretSignaling    = "signaling_secret"
	secretTalkInternal = "talk_internal_secret"
	secretOnlyoffice   = "onlyoffice_secret"
	secretImaginary    = "imaginary_secret"
	secretWhiteboard   = "whiteboard_secret"
)

// Handle holds the master key derived from the password.
type Handle struct {
	version string
	key     []byte
}

// Secret expands the master key into the named secret with HKDF-SHA256.
func (h *Handle) Secret(name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name must not be empty")
	}
	r := hkdf.New(sha256.New, h.key, nil, []byte("ncp/v"+h.version+"/"+name))
	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("expand secret %s: %w", name, err)
	}
	return hex.EncodeToString(buf), nil
}

// Service implements ports.CryptoService.
type Service struct {
	params Params
}

// New creates a crypto service with the given argon2id parameters.
func New(params Params) *Service {
	return &Service{params: params}
}

// Derive stretches the password into a master key. The salt is fixed per
// protocol version so the same password always yields the same secrets.
func (s *Service) Derive(version, password string) (ports.CryptoHandle, error) {
	if password == "" {
		return nil, &domain.CryptoError{Err: ErrEmptyPassword}
	}
	if version == "" {
		return nil, &domain.CryptoError{Err: errors.New("protocol version must not be empty")}
	}
	salt := sha256.Sum256([]byte("ncp-activation/v" + version))
	key := argon2.IDKey([]byte(password), salt[:], s.params.Time, s.params.MemoryKiB, s.params.Threads, masterKeyLength)
	return &Handle{version: version, key: key}, nil
}

// BuildConfig creates the configuration bundle with the default AIO settings.
func (s *Service) BuildConfig(version string, h ports.CryptoHandle) (domain.NcpConfig, error) {
	seed, err := h.Secret(secretInstanceID)
	if err != nil {
		return domain.NcpConfig{}, &domain.CryptoError{Err: err}
	}
	return domain.NcpConfig{
		Version:    version,
		InstanceID: uuid.NewSHA1(instanceNamespace, []byte(seed)).String(),
		NcAio:      DefaultAioConfig(),
	}, nil
}

// Secrets derives every AIO secret.
func (s *Service) Secrets(cfg domain.NcAioConfig, h ports.CryptoHandle) (domain.NcAioSecrets, error) {
	var out domain.NcAioSecrets
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{secretDatabase, &out.DatabasePassword},
		{secretRedis, &out.RedisPassword},
		{secretAdmin, &out.AdminPassword},
		{secretTurn, &out.TurnSecret},
		{secretSignaling, &out.SignalingSecret},
		{secretTalkInternal, &out.TalkInternalSecret},
		{secretOnlyoffice, &out.OnlyofficeSecret},
		{secretImaginary, &out.ImaginarySecret},
		{secretWhiteboard, &out.WhiteboardSecret},
	} {
		v, err := h.Secret(f.name)
		if err != nil {
			return domain.NcAioSecrets{}, &domain.CryptoError{Err: err}
		}
		*f.dst = v
	}
	return out, nil
}

// DefaultAioConfig returns the AIO settings of a fresh NextcloudPi.
func DefaultAioConfig() domain.NcAioConfig {
	return domain.NcAioConfig{
		Domain:            "nextcloudpi.local",
		ApachePort:        11000,
		ApacheIPBinding:   "127.0.0.1",
		DataDir:           "/mnt/ncdata",
		MountDir:          "/mnt",
		Timezone:          "Etc/UTC",
		PHPMemoryLimitMB:  512,
		UploadLimitGB:     10,
		ImaginaryEnabled:  true,
		TalkEnabled:       true,
		TalkPort:          3478,
		ClamavEnabled:     false,
		WhiteboardEnabled: false,
	}
}
