package grpc_control

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// -----------------------------------------------------------------------------
// JSON codec for the control surface
// -----------------------------------------------------------------------------

// CodecName is the gRPC content-subtype this codec answers to. Clients opt in
// with grpc.CallContentSubtype(CodecName).
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// -----------------------------------------------------------------------------

// jsonCodec marshals gRPC frames as plain JSON. The control surface carries
// low-volume management calls, so schema-free JSON keeps the message structs
// in one place without a code generation step.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}
