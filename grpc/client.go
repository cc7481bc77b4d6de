package statusgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

// Compile-time interface check.
var _ ledgerstatus.Connection = (*Client)(nil)

// Client implements ledgerstatus.Connection for a remote status
// server over gRPC using cramberry serialization.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote status server.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("ledgerstatus client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// Status queries the remote server. A rejected query is returned as a
// *ledgerstatus.RejectionError, as with a local server.
func (c *Client) Status(ctx context.Context, q types.StatusQuery) (types.Outcome, error) {
	resp := new(types.Outcome)
	if err := c.cc.Invoke(ctx, fullMethod("Status"), &q, resp); err != nil {
		return types.Outcome{}, fromStatus(err)
	}
	return *resp, nil
}

// Ping checks that the remote ledger is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.cc.Invoke(ctx, fullMethod("Ping"), &PingRequest{}, new(PingResponse))
}

func fromStatus(err error) error {
	if status.Code(err) == codes.InvalidArgument {
		return ledgerstatus.NewRejectionError(ledgerstatus.ReasonExactlyOneRequired)
	}
	return err
}
