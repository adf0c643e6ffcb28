package ledger

import "github.com/ugorji/go/codec"

// State entries are stored CBOR-encoded. Canonical encoding keeps the byte
// representation of an entry stable across processes.
var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// Marshal encodes a state entry for storage.
func Marshal(v any) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unmarshal decodes a stored state entry.
func Unmarshal(data []byte, v any) error {
	return codec.NewDecoderBytes(data, cborHandle).Decode(v)
}
