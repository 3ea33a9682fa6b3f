package crypto

// Deriver computes a password-based derived key.
type Deriver interface {
	// DeriveKey returns a key of exactly dkLen bytes, or a DerivationError
	// when the parameters are rejected or the computation fails.
	DeriveKey(password, salt []byte, n, r, p, dkLen int) ([]byte, error)
}

// DeriverFunc adapts a function to the Deriver interface.
type DeriverFunc func(password, salt []byte, n, r, p, dkLen int) ([]byte, error)

// DeriveKey calls f.
func (f DeriverFunc) DeriveKey(password, salt []byte, n, r, p, dkLen int) ([]byte, error) {
	return f(password, salt, n, r, p, dkLen)
}
