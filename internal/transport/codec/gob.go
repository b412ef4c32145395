// Package codec registers a gob-based grpc codec. The overlay's wire
// format is the plain Go structs in internal/wire, not protobuf messages,
// so rather than hand-maintain a protoc-generated marshaler we plug gob in
// as the grpc wire codec via grpc-go's encoding.Codec extension point.
package codec

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// Name is the content-subtype negotiated between client and server; the
// client selects it with grpc.CallContentSubtype(Name).
const Name = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(gobCodec{})
}
