package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *models.Error
		want string
	}{
		{
			name: "encoding",
			err:  models.NewEncodingError("unsupported input shape"),
			want: "EncodingError: unsupported input shape",
		},
		{
			name: "missing parameters",
			err:  models.NewMissingParameterError("N", "dkLen"),
			want: "MissingParameterError: missing N, dkLen",
		},
		{
			name: "derivation with cause",
			err:  models.NewDerivationError("scrypt", errors.New("N must be > 1 and a power of 2")),
			want: "DerivationError: scrypt: N must be > 1 and a power of 2",
		},
		{
			name: "cause only",
			err:  &models.Error{Kind: models.ErrCodeDerivation, Err: errors.New("boom")},
			want: "DerivationError: boom",
		},
		{
			name: "dispatch",
			err:  models.NewDispatchError(errors.New("pool closed")),
			want: "DispatchError: submit task: pool closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("cause")
	wrapped := fmt.Errorf("derive: %w", models.NewDerivationError("scrypt", cause))

	assert.ErrorIs(t, wrapped, models.ErrDerivation)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, models.ErrEncoding)

	assert.ErrorIs(t, models.NewEncodingError("x"), models.ErrEncoding)
	assert.ErrorIs(t, models.NewMissingParameterError("r"), models.ErrMissingParameter)
	assert.ErrorIs(t, models.NewDispatchError(cause), models.ErrDispatch)
}

func TestKind(t *testing.T) {
	assert.Equal(t, models.ErrCodeMissingParameter, models.Kind(fmt.Errorf("wrapped: %w", models.NewMissingParameterError("p"))))
	assert.Equal(t, models.ErrCodeEncoding, models.Kind(models.NewEncodingError("x")))
	assert.Empty(t, models.Kind(errors.New("plain")))
	assert.Empty(t, models.Kind(nil))
}
