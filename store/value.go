package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Kind tags the variant held by a Value. The scheduler and commands
// dispatch on Kind; it is never flattened away to untyped JSON on the
// channel-transport path, so a command that needs to know "is this an
// integer or a string" can always ask.
type Kind string

const (
	KindU8        Kind = "u8"
	KindU16       Kind = "u16"
	KindU64       Kind = "u64"
	KindI64       Kind = "i64"
	KindF32       Kind = "f32"
	KindF64       Kind = "f64"
	KindBool      Kind = "bool"
	KindString    Kind = "string"
	KindOptString Kind = "opt_string"
	KindJSON      Kind = "json"
	KindPubkey    Kind = "pubkey"
	KindKeypair   Kind = "keypair"
	KindSignature Kind = "signature"
	KindNodeID    Kind = "node_id"
	KindNFT       Kind = "nft_metadata"
	KindOperator  Kind = "operator"
	KindEmpty     Kind = "empty"
)

// CompareOp is the Value variant carrying a comparison operator, used by
// the catalog's "compare" command.
type CompareOp string

const (
	OpEq CompareOp = "=="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// NFTMetadata is the minimal Metaplex-style NFT metadata document carried
// by a Value of kind KindNFT. It round-trips through JSON like any other
// Value payload.
type NFTMetadata struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	URI         string  `json:"uri"`
	SellerFee   uint16  `json:"seller_fee_basis_points"`
	Description string  `json:"description,omitempty"`
	Collection  *string `json:"collection,omitempty"`
}

// Value is the single tagged variant that flows across flow edges and in
// and out of commands. Exactly one field is meaningful for a given Kind;
// Value is intentionally flat (no interface{} payload) so it stays
// trivially cloneable and comparable for tests.
type Value struct {
	Kind Kind

	U8  uint8
	U16 uint16
	U64 uint64
	I64 int64
	F32 float32
	F64 float64

	Bool bool

	Str    string
	OptStr *string

	JSON json.RawMessage

	// Pubkey holds 32 bytes of Ed25519 public key material.
	Pubkey [32]byte
	// Keypair holds a 64-byte Ed25519 private key (seed || public key).
	Keypair [64]byte
	// Signature holds a 64-byte Ed25519 signature.
	Signature [64]byte

	NodeID NodeID

	NFT *NFTMetadata

	Op CompareOp
}

// Empty is the canonical zero-information Value, used as the scheduler's
// synthetic start-node seed and as a command's output when it has
// nothing meaningful to report.
func Empty() Value { return Value{Kind: KindEmpty} }

func VString(s string) Value { return Value{Kind: KindString, Str: s} }
func VBool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func VU64(v uint64) Value    { return Value{Kind: KindU64, U64: v} }
func VI64(v int64) Value     { return Value{Kind: KindI64, I64: v} }
func VF64(v float64) Value   { return Value{Kind: KindF64, F64: v} }
func VJSON(raw json.RawMessage) Value { return Value{Kind: KindJSON, JSON: raw} }
func VOperator(op CompareOp) Value    { return Value{Kind: KindOperator, Op: op} }

// Clone returns a deep copy of v. Fixed-size array fields (NodeID
// included) already copy by value; OptStr, JSON and NFT need explicit copies since
// they hold references.
func (v Value) Clone() Value {
	out := v
	if v.JSON != nil {
		out.JSON = append(json.RawMessage(nil), v.JSON...)
	}
	if v.OptStr != nil {
		s := *v.OptStr
		out.OptStr = &s
	}
	if v.NFT != nil {
		nft := *v.NFT
		out.NFT = &nft
	}
	return out
}

// wireValue is the JSON-on-the-wire shape of a Value: a kind discriminant
// plus a single "value" payload, with fixed-size key material base58
// encoded per spec §4.4 ("keypair/signature are base58-encoded on the
// wire").
type wireValue struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// ToJSON converts v to its wire representation. Conversion is total on
// the JSON-representable subset of Value; every Kind defined above has a
// representation.
func (v Value) ToJSON() (json.RawMessage, error) {
	var payload interface{}
	switch v.Kind {
	case KindU8:
		payload = v.U8
	case KindU16:
		payload = v.U16
	case KindU64:
		payload = v.U64
	case KindI64:
		payload = v.I64
	case KindF32:
		payload = v.F32
	case KindF64:
		payload = v.F64
	case KindBool:
		payload = v.Bool
	case KindString:
		payload = v.Str
	case KindOptString:
		payload = v.OptStr
	case KindJSON:
		payload = v.JSON
	case KindPubkey:
		payload = base58.Encode(v.Pubkey[:])
	case KindKeypair:
		payload = base58.Encode(v.Keypair[:])
	case KindSignature:
		payload = base58.Encode(v.Signature[:])
	case KindNodeID:
		payload = v.NodeID.String()
	case KindNFT:
		payload = v.NFT
	case KindOperator:
		payload = v.Op
	case KindEmpty:
		payload = nil
	default:
		return nil, WrapErr(ErrInvalidConversion, fmt.Errorf("unknown value kind %q", v.Kind))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapErr(ErrInvalidConversion, err)
	}
	wire := wireValue{Kind: v.Kind, Value: raw}
	out, err := json.Marshal(wire)
	if err != nil {
		return nil, WrapErr(ErrInvalidConversion, err)
	}
	return out, nil
}

// ValueFromJSON is the inverse of Value.ToJSON. It fails with
// ErrInvalidConversion for malformed wire values or unknown kinds.
func ValueFromJSON(raw json.RawMessage) (Value, error) {
	var wire wireValue
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Value{}, WrapErr(ErrInvalidConversion, err)
	}

	v := Value{Kind: wire.Kind}
	switch wire.Kind {
	case KindU8:
		err := json.Unmarshal(wire.Value, &v.U8)
		return v, convErr(err)
	case KindU16:
		err := json.Unmarshal(wire.Value, &v.U16)
		return v, convErr(err)
	case KindU64:
		err := json.Unmarshal(wire.Value, &v.U64)
		return v, convErr(err)
	case KindI64:
		err := json.Unmarshal(wire.Value, &v.I64)
		return v, convErr(err)
	case KindF32:
		err := json.Unmarshal(wire.Value, &v.F32)
		return v, convErr(err)
	case KindF64:
		err := json.Unmarshal(wire.Value, &v.F64)
		return v, convErr(err)
	case KindBool:
		err := json.Unmarshal(wire.Value, &v.Bool)
		return v, convErr(err)
	case KindString:
		err := json.Unmarshal(wire.Value, &v.Str)
		return v, convErr(err)
	case KindOptString:
		err := json.Unmarshal(wire.Value, &v.OptStr)
		return v, convErr(err)
	case KindJSON:
		v.JSON = append(json.RawMessage(nil), wire.Value...)
		return v, nil
	case KindPubkey:
		return v, decodeFixed(wire.Value, v.Pubkey[:])
	case KindKeypair:
		return v, decodeFixed(wire.Value, v.Keypair[:])
	case KindSignature:
		return v, decodeFixed(wire.Value, v.Signature[:])
	case KindNodeID:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return v, convErr(err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return v, WrapErr(ErrInvalidConversion, err)
		}
		v.NodeID = NodeID(id)
		return v, nil
	case KindNFT:
		var nft NFTMetadata
		if err := json.Unmarshal(wire.Value, &nft); err != nil {
			return v, convErr(err)
		}
		v.NFT = &nft
		return v, nil
	case KindOperator:
		err := json.Unmarshal(wire.Value, &v.Op)
		return v, convErr(err)
	case KindEmpty:
		return v, nil
	default:
		return Value{}, WrapErr(ErrInvalidConversion, fmt.Errorf("unknown value kind %q", wire.Kind))
	}
}

// MarshalJSON makes Value satisfy json.Marshaler so it serializes to its
// wire shape (ToJSON) wherever it is embedded in a larger struct —
// command descriptors, static fields — without callers needing to call
// ToJSON explicitly.
func (v Value) MarshalJSON() ([]byte, error) { return v.ToJSON() }

// UnmarshalJSON makes Value satisfy json.Unmarshaler, the inverse of
// MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := ValueFromJSON(json.RawMessage(data))
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func convErr(err error) error {
	if err == nil {
		return nil
	}
	return WrapErr(ErrInvalidConversion, err)
}

// decodeFixed base58-decodes wire.Value (a JSON string) into dst, which
// must already be sized to the expected key-material length.
func decodeFixed(raw json.RawMessage, dst []byte) error {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return convErr(err)
	}
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return WrapErr(ErrInvalidConversion, err)
	}
	if len(decoded) != len(dst) {
		return WrapErr(ErrInvalidConversion, fmt.Errorf("expected %d bytes, got %d", len(dst), len(decoded)))
	}
	copy(dst, decoded)
	return nil
}
