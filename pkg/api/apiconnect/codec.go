// Package apiconnect wires the tripsplit.v1 services to Connect handlers
// and clients.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec encodes messages as plain JSON. It is registered under the name
// "json", so Connect serves it for application/json requests.
var Codec connect.Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec)}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec)}, opts...)
}
