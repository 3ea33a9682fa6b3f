package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

const (
	// Interactive login parameters used by the CLI when none are configured.
	DefaultN      = 16384 // CPU/memory cost parameter
	DefaultR      = 8     // block size parameter
	DefaultP      = 1     // parallelization parameter
	DefaultKeyLen = 32    // derived key length

	// DefaultSaltSize is the 128-bit minimum of NIST SP 800-132.
	DefaultSaltSize = 16
)

// Errors
var (
	ErrInvalidBlockSize   = errors.New("r must be positive")
	ErrInvalidParallelism = errors.New("p must be positive")
	ErrInvalidKeyLength   = errors.New("dkLen must be positive")
	ErrInvalidSaltSize    = errors.New("salt size must be positive")
)

// ScryptDeriver derives keys with golang.org/x/crypto/scrypt.
type ScryptDeriver struct{}

// NewScryptDeriver creates a scrypt deriver.
func NewScryptDeriver() Deriver {
	return ScryptDeriver{}
}

// DeriveKey runs scrypt. N must be a power of two greater than 1; scrypt
// itself enforces that and the memory limits.
func (ScryptDeriver) DeriveKey(password, salt []byte, n, r, p, dkLen int) ([]byte, error) {
	switch {
	case r <= 0:
		return nil, models.NewDerivationError(fmt.Sprintf("r=%d", r), ErrInvalidBlockSize)
	case p <= 0:
		return nil, models.NewDerivationError(fmt.Sprintf("p=%d", p), ErrInvalidParallelism)
	case dkLen <= 0:
		return nil, models.NewDerivationError(fmt.Sprintf("dkLen=%d", dkLen), ErrInvalidKeyLength)
	}

	key, err := scrypt.Key(password, salt, n, r, p, dkLen)
	if err != nil {
		return nil, models.NewDerivationError("scrypt key derivation", err)
	}

	return key, nil
}

// GenerateSalt returns size random bytes.
func GenerateSalt(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidSaltSize
	}

	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
