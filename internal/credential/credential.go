// Package credential is the boundary the account-management collaborator
// uses for hosted-backend keys: sealing for storage, display forms, and
// liveness validation. The game engine never touches it; it only receives
// an already-decrypted key as a credential scope.
package credential

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the credential lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

var (
	// ErrEmptyOwner indicates an owner user id is required.
	ErrEmptyOwner = errors.New("owner user id is required")
	// ErrEmptyKey indicates a key is required.
	ErrEmptyKey = errors.New("key is required")
)

// Credential is a stored hosted-backend key. The plaintext never persists:
// only the sealed form, a lookup hash, and the display suffix do.
type Credential struct {
	ID        string
	OwnerID   string
	Sealed    string
	KeyHash   string
	KeyLast4  string
	Status    Status
	CreatedAt time.Time
}

// HashKey returns the hex SHA-256 digest of a key, used for lookups without
// decryption.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Last4 returns the display suffix of a key.
func Last4(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}

// New seals a raw key into a storable credential record.
func New(ownerID, rawKey string, sealer *Sealer) (Credential, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Credential{}, ErrEmptyOwner
	}
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return Credential{}, ErrEmptyKey
	}

	sealed, err := sealer.Seal(rawKey)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Sealed:    sealed,
		KeyHash:   HashKey(rawKey),
		KeyLast4:  Last4(rawKey),
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// KeyValidator checks a key against the hosted backend.
type KeyValidator interface {
	ValidateKey(ctx context.Context, key string) bool
}

// Service seals, opens, and validates credentials for the account
// collaborator.
type Service struct {
	sealer    *Sealer
	validator KeyValidator
}

// NewService builds a credential service.
func NewService(sealer *Sealer, validator KeyValidator) *Service {
	return &Service{sealer: sealer, validator: validator}
}

// Create validates a raw key against the hosted backend and seals it.
func (s *Service) Create(ctx context.Context, ownerID, rawKey string) (Credential, error) {
	if !s.validator.ValidateKey(ctx, strings.TrimSpace(rawKey)) {
		return Credential{}, errors.New("key failed hosted-backend validation")
	}
	return New(ownerID, rawKey, s.sealer)
}

// Open recovers the plaintext key from a stored credential.
func (s *Service) Open(cred Credential) (string, error) {
	if cred.Status != StatusActive {
		return "", errors.New("credential is revoked")
	}
	return s.sealer.Open(cred.Sealed)
}
