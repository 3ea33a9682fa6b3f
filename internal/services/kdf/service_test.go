package kdf_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/scrypt"

	"github.com/TheMichaelB/scryptbridge/internal/codec"
	"github.com/TheMichaelB/scryptbridge/internal/crypto"
	"github.com/TheMichaelB/scryptbridge/internal/dispatch"
	"github.com/TheMichaelB/scryptbridge/internal/events"
	"github.com/TheMichaelB/scryptbridge/internal/metrics"
	"github.com/TheMichaelB/scryptbridge/internal/models"
	"github.com/TheMichaelB/scryptbridge/internal/services/kdf"
)

// fakeDeriver returns dkLen bytes of (len(password)+len(salt)+i) and counts calls.
type fakeDeriver struct {
	calls atomic.Int32
	err   error
}

func (f *fakeDeriver) DeriveKey(password, salt []byte, n, r, p, dkLen int) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	key := make([]byte, dkLen)
	for i := range key {
		key[i] = byte(len(password) + len(salt) + i)
	}
	return key, nil
}

func newService(t *testing.T, deriver crypto.Deriver, opts ...kdf.Option) *kdf.Service {
	t.Helper()
	d := dispatch.NewDispatcher(dispatch.GoroutinePool{}, events.Discard())
	return kdf.NewService(d, deriver, events.Discard(), opts...)
}

func wait(t *testing.T, r *dispatch.Result) models.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome, err := r.Wait(ctx)
	require.NoError(t, err)
	return outcome
}

func fullOptions(dkLen int) map[string]interface{} {
	return map[string]interface{}{"N": 16384, "r": 8, "p": 1, "dkLen": dkLen}
}

func TestService_DeriveRaw_PasswordSalt(t *testing.T) {
	svc := newService(t, crypto.NewScryptDeriver())

	var delivered []models.Outcome
	var mu sync.Mutex
	r := svc.DeriveRaw(context.Background(), "password", "salt", fullOptions(64), func(o models.Outcome) {
		mu.Lock()
		delivered = append(delivered, o)
		mu.Unlock()
	})

	outcome := wait(t, r)
	require.True(t, outcome.OK, outcome.Message)
	assert.Len(t, outcome.Hex, 128)
	assert.Equal(t, strings.ToLower(outcome.Hex), outcome.Hex)

	want, err := scrypt.Key([]byte("password"), []byte("salt"), 16384, 8, 1, 64)
	require.NoError(t, err)
	assert.Equal(t, codec.HexEncode(want), outcome.Hex)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.Outcome{outcome}, delivered)
}

func TestService_DeriveRaw_RFCVector(t *testing.T) {
	svc := newService(t, crypto.NewScryptDeriver())

	outcome := wait(t, svc.DeriveRaw(context.Background(), "pleaseletmein", "SodiumChloride", fullOptions(64), nil))

	require.True(t, outcome.OK, outcome.Message)
	assert.Equal(t,
		"7023bdcb3afd7348461c06cd81fd38ebfda8fbba904f8e3ea9b543f6545da1f2"+
			"d5432955613f0fcf62d49705242a9af9e61e85dc0d651e40dfcf017b45575887",
		outcome.Hex)
}

func TestService_ByteListMatchesText(t *testing.T) {
	svc := newService(t, crypto.NewScryptDeriver())

	byteList := wait(t, svc.DeriveRaw(context.Background(),
		[]interface{}{112, 97, 115, 115}, []interface{}{115, 97, 108, 116}, fullOptions(32), nil))
	text := wait(t, svc.DeriveRaw(context.Background(), "pass", "salt", fullOptions(32), nil))

	require.True(t, byteList.OK, byteList.Message)
	require.True(t, text.OK, text.Message)
	assert.Len(t, text.Hex, 64)
	assert.Equal(t, text.Hex, byteList.Hex)
}

func TestService_MissingParameter(t *testing.T) {
	deriver := &fakeDeriver{}
	svc := newService(t, deriver)

	tests := []struct {
		name    string
		options map[string]interface{}
		missing string
	}{
		{name: "dkLen omitted", options: map[string]interface{}{"N": 16384, "r": 8, "p": 1}, missing: "dkLen"},
		{name: "zero N", options: map[string]interface{}{"N": 0, "r": 8, "p": 1, "dkLen": 32}, missing: "N"},
		{name: "empty bag", options: nil, missing: "N, r, p, dkLen"},
		{name: "non numeric r", options: map[string]interface{}{"N": 16, "r": "eight", "p": 1, "dkLen": 32}, missing: "r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := wait(t, svc.DeriveRaw(context.Background(), "p", "s", tt.options, nil))
			assert.False(t, outcome.OK)
			assert.True(t, strings.HasPrefix(outcome.Message, models.ErrCodeMissingParameter), outcome.Message)
			assert.Contains(t, outcome.Message, tt.missing)
		})
	}

	assert.Zero(t, deriver.calls.Load(), "deriver must not run with absent parameters")
}

func TestService_EncodingError(t *testing.T) {
	deriver := &fakeDeriver{}
	svc := newService(t, deriver)

	outcome := wait(t, svc.DeriveRaw(context.Background(), map[string]interface{}{"x": 1}, "salt", fullOptions(32), nil))
	assert.False(t, outcome.OK)
	assert.Equal(t, "EncodingError: unsupported input shape", outcome.Message)

	outcome = wait(t, svc.DeriveRaw(context.Background(), "pw", 17, fullOptions(32), nil))
	assert.Equal(t, "EncodingError: unsupported input shape", outcome.Message)

	outcome = wait(t, svc.Derive(context.Background(), models.DerivationRequest{
		Password: models.Text("pw"),
		Params:   codec.ResolveParams(fullOptions(32)),
	}, nil))
	assert.Equal(t, "EncodingError: unsupported input shape", outcome.Message)

	assert.Zero(t, deriver.calls.Load())
}

func TestService_EncodingCheckedBeforeParameters(t *testing.T) {
	svc := newService(t, &fakeDeriver{})

	outcome := wait(t, svc.DeriveRaw(context.Background(), nil, "salt", nil, nil))
	assert.True(t, strings.HasPrefix(outcome.Message, models.ErrCodeEncoding), outcome.Message)
}

func TestService_DerivationError(t *testing.T) {
	t.Run("invalid N from scrypt", func(t *testing.T) {
		svc := newService(t, crypto.NewScryptDeriver())

		outcome := wait(t, svc.DeriveRaw(context.Background(), "p", "s",
			map[string]interface{}{"N": 1000, "r": 8, "p": 1, "dkLen": 32}, nil))
		assert.False(t, outcome.OK)
		assert.True(t, strings.HasPrefix(outcome.Message, models.ErrCodeDerivation), outcome.Message)
		assert.Contains(t, outcome.Message, "power of 2")
	})

	t.Run("negative dkLen", func(t *testing.T) {
		svc := newService(t, crypto.NewScryptDeriver())

		outcome := wait(t, svc.DeriveRaw(context.Background(), "p", "s",
			map[string]interface{}{"N": 16, "r": 8, "p": 1, "dkLen": -1}, nil))
		assert.True(t, strings.HasPrefix(outcome.Message, models.ErrCodeDerivation), outcome.Message)
	})

	t.Run("untyped collaborator error is tagged", func(t *testing.T) {
		svc := newService(t, &fakeDeriver{err: errors.New("out of memory")})

		outcome := wait(t, svc.DeriveRaw(context.Background(), "p", "s", fullOptions(32), nil))
		assert.Equal(t, "DerivationError: scrypt key derivation: out of memory", outcome.Message)
	})

	t.Run("collaborator panic", func(t *testing.T) {
		svc := newService(t, crypto.DeriverFunc(func(password, salt []byte, n, r, p, dkLen int) ([]byte, error) {
			panic("native crash")
		}))

		outcome := wait(t, svc.DeriveRaw(context.Background(), "p", "s", fullOptions(32), nil))
		assert.False(t, outcome.OK)
		assert.Contains(t, outcome.Message, "native crash")
	})
}

func TestService_TypedRequest(t *testing.T) {
	svc := newService(t, &fakeDeriver{})

	outcome := wait(t, svc.Derive(context.Background(), models.DerivationRequest{
		Password: models.ByteList([]int64{1, 2}),
		Salt:     models.Text("abc"),
		Params: models.DerivationParams{
			N: models.Set(16), R: models.Set(1), P: models.Set(1), DKLen: models.Set(3),
		},
	}, nil))

	require.True(t, outcome.OK)
	assert.Equal(t, "050607", outcome.Hex)
}

func TestService_OptionsResolvedBeforeDispatch(t *testing.T) {
	var queued []func()
	pool := dispatch.PoolFunc(func(task func()) error {
		queued = append(queued, task)
		return nil
	})
	svc := kdf.NewService(dispatch.NewDispatcher(pool, events.Discard()), &fakeDeriver{}, events.Discard())

	options := fullOptions(4)
	r := svc.DeriveRaw(context.Background(), "pw", "salt", options, nil)

	// The caller is free to reuse its bag once DeriveRaw returns.
	options["dkLen"] = 0
	assert.Equal(t, dispatch.StatePending, r.State())
	assert.Equal(t, 1, svc.InFlight())

	require.Len(t, queued, 1)
	queued[0]()

	outcome, ok := r.Outcome()
	require.True(t, ok)
	require.True(t, outcome.OK, outcome.Message)
	assert.Len(t, outcome.Hex, 8)
	assert.Zero(t, svc.InFlight())
}

func TestService_ConcurrentRequests(t *testing.T) {
	pool, err := dispatch.NewAntsPool(events.Discard())
	require.NoError(t, err)
	defer pool.Release()

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg, "kdf_test")
	require.NoError(t, err)

	svc := kdf.NewService(dispatch.NewDispatcher(pool, events.Discard()), &fakeDeriver{}, events.Discard(),
		kdf.WithMetrics(rec))

	const requests = 150
	counts := make([]atomic.Int32, requests)
	var wg sync.WaitGroup
	wg.Add(requests)

	for i := 0; i < requests; i++ {
		go func(i int) {
			options := fullOptions(8)
			if i%5 == 0 {
				delete(options, "dkLen")
			}
			svc.DeriveRaw(context.Background(), fmt.Sprintf("pw-%d", i), "salt", options, func(o models.Outcome) {
				counts[i].Add(1)
				assert.Equal(t, i%5 != 0, o.OK, o.Message)
				wg.Done()
			})
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("outcomes missing")
	}

	for i := range counts {
		assert.Equal(t, int32(1), counts[i].Load(), "request %d", i)
	}

	assert.Equal(t, float64(requests/5), failures(t, reg, "kdf_test_derivations_completed_total"))
	assert.Zero(t, svc.InFlight())
}

// failures sums the failure series of the completed counter.
func failures(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" && lp.GetValue() == metrics.ResultFailure {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}
