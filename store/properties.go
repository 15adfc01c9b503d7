package store

import "encoding/json"

// Properties is a node's or edge's property map: string keys to JSON
// values (spec §3). The store never interprets these values — it copies
// them wholesale on update and reads them back verbatim — except for the
// small set of reserved keys the flow layer defines (command, start-node,
// input_name, output_name, state_id, is_graph_root; spec §6).
type Properties map[string]json.RawMessage

// Clone returns a shallow-keyed, deep-valued copy, since update_node and
// update_edge replace the whole map and the inverse action must retain
// the pre-update snapshot independent of further mutation.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		cp := append(json.RawMessage(nil), v...)
		out[k] = cp
	}
	return out
}

// PropString wraps s as a Properties value.
func PropString(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

// PropBool wraps b as a Properties value.
func PropBool(b bool) json.RawMessage {
	raw, _ := json.Marshal(b)
	return raw
}

// PropUint64 wraps v as a Properties value.
func PropUint64(v uint64) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

// PropJSON marshals an arbitrary Go value into a Properties value.
func PropJSON(v interface{}) (json.RawMessage, error) {
	return json.Marshal(v)
}

// AsString decodes a Properties value as a string.
func AsString(raw json.RawMessage) (string, error) {
	var s string
	err := json.Unmarshal(raw, &s)
	return s, convErr(err)
}

// AsBool decodes a Properties value as a bool.
func AsBool(raw json.RawMessage) (bool, error) {
	var b bool
	err := json.Unmarshal(raw, &b)
	return b, convErr(err)
}

// AsUint64 decodes a Properties value as a uint64.
func AsUint64(raw json.RawMessage) (uint64, error) {
	var v uint64
	err := json.Unmarshal(raw, &v)
	return v, convErr(err)
}

// Reserved property keys, spec §6.
const (
	KeyIsGraphRoot = "is_graph_root"
	KeyStateID     = "state_id"
	KeyCommand     = "command"
	KeyStartNode   = "start-node"
	KeyInputName   = "input_name"
	KeyOutputName  = "output_name"

	KeyNameMarker    = "NAME_MARKER"
	KeyKeypairMarker = "KEYPAIR_MARKER"
	KeyPubkeyMarker  = "PUBKEY_MARKER"
)
