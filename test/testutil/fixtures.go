package testutil

import (
	"crypto/rand"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// FastOptions is a cheap but valid option bag.
func FastOptions(dkLen int) map[string]interface{} {
	return map[string]interface{}{
		models.ParamN:     16,
		models.ParamR:     1,
		models.ParamP:     1,
		models.ParamDKLen: dkLen,
	}
}

// InteractiveOptions are the common interactive-login parameters.
func InteractiveOptions() map[string]interface{} {
	return map[string]interface{}{
		models.ParamN:     16384,
		models.ParamR:     8,
		models.ParamP:     1,
		models.ParamDKLen: 64,
	}
}

// RandomSalt returns 16 random bytes.
func RandomSalt() []byte {
	salt := make([]byte, 16)
	_, _ = rand.Read(salt)
	return salt
}

// ByteValues converts b to the integer list form a host runtime sends.
func ByteValues(b []byte) []interface{} {
	values := make([]interface{}, len(b))
	for i, v := range b {
		values[i] = float64(v)
	}
	return values
}
