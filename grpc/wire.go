package statusgrpc

// Transport-specific wrapper types for RPC methods whose interface
// signatures don't map to a single request/response struct.
// These are used only for gRPC serialization boundaries.

// PingRequest is the (empty) request for Ping.
type PingRequest struct{}

// PingResponse is the (empty) response for Ping.
type PingResponse struct{}
