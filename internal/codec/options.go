package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// ResolveParam looks up name in options. A missing key, a value that is not
// integer-like and a value of zero all resolve to an absent Param, so zero
// can never be told apart from "not provided" here. Other values are
// returned unchanged, including negative ones.
func ResolveParam(name string, options map[string]interface{}) models.Param {
	v, ok := options[name]
	if !ok {
		return models.Param{}
	}

	n, ok := looseInt(v)
	if !ok || n == 0 {
		return models.Param{}
	}
	return models.Set(n)
}

// ResolveParams resolves N, r, p and dkLen independently. Keys other than
// these are ignored.
func ResolveParams(options map[string]interface{}) models.DerivationParams {
	return models.DerivationParams{
		N:     ResolveParam(models.ParamN, options),
		R:     ResolveParam(models.ParamR, options),
		P:     ResolveParam(models.ParamP, options),
		DKLen: ResolveParam(models.ParamDKLen, options),
	}
}

// looseInt converts integer-like values. Floats and decimal strings are
// truncated toward zero; booleans are not integer-like.
func looseInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseDecimal(val)
	case json.Number:
		return parseDecimal(val.String())
	case float64:
		return truncate(val)
	case float32:
		return truncate(float64(val))
	}

	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return truncate(f)
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}
