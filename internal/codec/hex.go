package codec

import (
	"encoding/hex"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

const hexDigits = "0123456789ABCDEF"

// HexEncode renders b as lowercase hex, high nibble first, no separators.
func HexEncode(b []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, v := range b {
		_ = buf.WriteByte(hexDigits[v>>4])
		_ = buf.WriteByte(hexDigits[v&0x0F])
	}

	return strings.ToLower(buf.String())
}

// HexDecode parses a hex string of even length in either case.
func HexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, models.NewEncodingError("hex string must be even length")
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &models.Error{Kind: models.ErrCodeEncoding, Message: "decode hex", Err: err}
	}
	return b, nil
}
