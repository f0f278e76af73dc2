package serializers

import (
	"encoding/json"
	"fmt"

	"stream-observer/src/interfaces"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// -----------------------------------------------------------------------------

// ProtoSerializer implements interfaces.ISerializer on top of protobuf's
// well-known Struct type. Objects are bridged through their JSON form, so any
// json-taggable struct can ride a protobuf wire without generated message
// types. Numbers survive as JSON does them: integers beyond 2^53 should be
// carried as strings by the object itself (the decimal fields already are).
type ProtoSerializer struct{}

// -----------------------------------------------------------------------------

// NewProtoSerializer creates a new instance of the protobuf serializer.
func NewProtoSerializer() interfaces.ISerializer {
	return &ProtoSerializer{}
}

// -----------------------------------------------------------------------------

// Marshal converts the object to a protobuf-encoded Struct.
func (p *ProtoSerializer) Marshal(obj interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("proto marshal error: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(jsonData, &fields); err != nil {
		return nil, fmt.Errorf("proto marshal error: object must encode to a JSON object: %w", err)
	}

	structValue, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("proto marshal error: %w", err)
	}

	data, err := proto.Marshal(structValue)
	if err != nil {
		return nil, fmt.Errorf("proto marshal error: %w", err)
	}
	return data, nil
}

// -----------------------------------------------------------------------------

// Unmarshal converts a protobuf-encoded Struct back into the target object.
func (p *ProtoSerializer) Unmarshal(data []byte, obj interface{}) error {
	var structValue structpb.Struct
	if err := proto.Unmarshal(data, &structValue); err != nil {
		return fmt.Errorf("proto unmarshal error: %w", err)
	}

	jsonData, err := json.Marshal(structValue.AsMap())
	if err != nil {
		return fmt.Errorf("proto unmarshal error: %w", err)
	}

	if err := json.Unmarshal(jsonData, obj); err != nil {
		return fmt.Errorf("proto unmarshal error: %w", err)
	}
	return nil
}
