// Package statusgrpc provides the gRPC transport for ledger status
// queries. Status queries and outcomes travel as cramberry-encoded
// structs over a hand-written service descriptor.
package statusgrpc

import (
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"
)

const codecName = "cramberry"

var errNilMessage = errors.New("nil message")

// CramberryCodec encodes the status service messages with cramberry.
// It is forced on every call by Dial and selected by name on the
// server side.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("cramberry marshal: %w", errNilMessage)
	}
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal %T: %w", v, err)
	}
	return data, nil
}

func (CramberryCodec) Unmarshal(data []byte, v any) error {
	if v == nil {
		return fmt.Errorf("cramberry unmarshal: %w", errNilMessage)
	}
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cramberry unmarshal %T (%d bytes): %w", v, len(data), err)
	}
	return nil
}

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
