// Package api defines the Patungan RPC surface: message types, procedure
// names, Connect handlers and clients.
//
// Messages are plain Go structs carried by a JSON codec, so any Connect or
// plain HTTP client can call the server with
//
//	curl -H 'Content-Type: application/json' \
//	     -H 'Patungan-User-Email: sari@example.com' \
//	     -d '{"kind":"even","title":"Karaoke"}' \
//	     http://localhost:8080/patungan.v1.BillService/GetBill
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Identity headers. They partition data between users; they are not
// credentials.
const (
	HeaderUserEmail = "Patungan-User-Email"
	HeaderUserName  = "Patungan-User-Name"
)

// JSONCodec marshals messages with encoding/json.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}
