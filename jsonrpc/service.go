// Package jsonrpc exposes ledger status queries as a JSON-RPC 2.0
// service.
package jsonrpc

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.uber.org/zap"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

const (
	// ServiceName is the prefix of every method, as in "status.GetStatus".
	ServiceName = "status"
	// Endpoint is where cmd/ledgerstatusd mounts the service.
	Endpoint = "/ext/status"

	// ErrCodeNotFound is returned when the ledger has no such entity.
	ErrCodeNotFound json2.ErrorCode = -32004
)

// GetStatusArgs names exactly one of a transaction or a block.
type GetStatusArgs struct {
	TxID    string `json:"txID"`
	BlockID string `json:"blockID"`
}

// GetStatusReply carries the status and any related links.
type GetStatusReply struct {
	Status types.Status      `json:"status"`
	Links  map[string]string `json:"links,omitempty"`
}

// Service is the JSON-RPC service for status queries.
type Service struct {
	srv ledgerstatus.Service
	log *zap.Logger
}

// NewService returns an http.Handler serving the status service.
func NewService(srv ledgerstatus.Service, log *zap.Logger) (http.Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	server := rpc.NewServer()
	codec := json2.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(&Service{srv: srv, log: log}, ServiceName)
}

// GetStatus returns the status of a transaction or a block.
func (s *Service) GetStatus(r *http.Request, args *GetStatusArgs, reply *GetStatusReply) error {
	s.log.Debug("API called",
		zap.String("service", ServiceName),
		zap.String("method", "getStatus"),
	)

	outcome, err := s.srv.Status(r.Context(), types.StatusQuery{TxID: args.TxID, BlockID: args.BlockID})
	if err != nil {
		if rej, ok := ledgerstatus.IsRejection(err); ok {
			return &json2.Error{Code: json2.E_BAD_PARAMS, Message: rej.Error()}
		}
		s.log.Error("status lookup failed", zap.Error(err))
		return &json2.Error{Code: json2.E_SERVER, Message: "internal error"}
	}
	if !outcome.Found {
		return &json2.Error{Code: ErrCodeNotFound, Message: "not found"}
	}

	reply.Status = outcome.Status
	reply.Links = outcome.LinkMap()
	return nil
}
