package models

// Option keys understood in a derivation option bag.
const (
	ParamN     = "N"
	ParamR     = "r"
	ParamP     = "p"
	ParamDKLen = "dkLen"
)

// ParamNames lists the option keys in resolution order.
var ParamNames = []string{ParamN, ParamR, ParamP, ParamDKLen}

// InputKind tags the shape of a RawInput.
type InputKind int

const (
	// InputUnknown is the zero value and is never a valid input.
	InputUnknown InputKind = iota
	InputText
	InputByteList
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputByteList:
		return "byte_list"
	default:
		return "unknown"
	}
}

// RawInput is a password or salt as supplied by the caller: either text or
// a list of integers, one per byte.
type RawInput struct {
	kind  InputKind
	text  string
	bytes []int64
}

// Text creates a textual RawInput.
func Text(s string) RawInput {
	return RawInput{kind: InputText, text: s}
}

// ByteList creates a RawInput from integer byte values. The slice is copied.
func ByteList(values []int64) RawInput {
	cp := make([]int64, len(values))
	copy(cp, values)
	return RawInput{kind: InputByteList, bytes: cp}
}

// Kind returns the input shape.
func (r RawInput) Kind() InputKind {
	return r.kind
}

// TextValue returns the text of a Text input.
func (r RawInput) TextValue() (string, bool) {
	return r.text, r.kind == InputText
}

// ByteValues returns a copy of the values of a ByteList input.
func (r RawInput) ByteValues() ([]int64, bool) {
	if r.kind != InputByteList {
		return nil, false
	}
	cp := make([]int64, len(r.bytes))
	copy(cp, r.bytes)
	return cp, true
}

// Param is an optional integer derivation parameter.
type Param struct {
	Value   int
	Present bool
}

// Set returns a present Param.
func Set(v int) Param {
	return Param{Value: v, Present: true}
}

// DerivationParams holds the resolved scrypt parameters. The zero value has
// every parameter absent.
type DerivationParams struct {
	N     Param
	R     Param
	P     Param
	DKLen Param
}

// Missing returns the option keys of absent parameters.
func (p DerivationParams) Missing() []string {
	var missing []string
	for i, param := range []Param{p.N, p.R, p.P, p.DKLen} {
		if !param.Present {
			missing = append(missing, ParamNames[i])
		}
	}
	return missing
}

// DerivationRequest is a single scrypt derivation as submitted by a caller.
type DerivationRequest struct {
	Password RawInput
	Salt     RawInput
	Params   DerivationParams
}

// Outcome is the single result delivered for a request.
type Outcome struct {
	OK      bool   `json:"ok"`
	Hex     string `json:"hex,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success creates a successful Outcome carrying the hex-encoded key.
func Success(hex string) Outcome {
	return Outcome{OK: true, Hex: hex}
}

// Failure creates a failed Outcome.
func Failure(message string) Outcome {
	return Outcome{OK: false, Message: message}
}
