// Package jsoncodec registers a JSON codec with gRPC so the POS services can
// exchange plain Go structs without generated protobuf messages. Importing the
// package is enough; callers select it with grpc.CallContentSubtype(Name).
package jsoncodec

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const Name = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(codec{})
}
