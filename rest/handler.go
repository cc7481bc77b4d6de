// Package rest serves ledger status queries over HTTP.
package rest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

const (
	StatusesPath = "/api/v1/statuses"
	HealthPath   = "/health"
	MetricsPath  = "/metrics"

	TxIDParam    = "tx_id"
	BlockIDParam = "block_id"
)

// StatusReply is the body of a successful status lookup.
type StatusReply struct {
	Status types.Status      `json:"status"`
	Links  map[string]string `json:"_links,omitempty"`
}

// ErrorReply is the body of every non-2xx response.
type ErrorReply struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// HealthReply is the body of a health check.
type HealthReply struct {
	Healthy bool `json:"healthy"`
}

// Backend is the part of server.Server the router needs.
type Backend interface {
	ledgerstatus.Service
	ledgerstatus.Pinger
}

type handler struct {
	srv Backend
	log *zap.Logger
}

// NewRouter returns a router serving status lookups, health and, if
// gatherer is non-nil, prometheus metrics. Callers may mount further
// routes on it.
func NewRouter(srv Backend, gatherer prometheus.Gatherer, log *zap.Logger) *mux.Router {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{srv: srv, log: log}

	r := mux.NewRouter()
	r.HandleFunc(StatusesPath, h.statuses).Methods(http.MethodGet)
	r.HandleFunc(HealthPath, h.health).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

func (h *handler) statuses(w http.ResponseWriter, r *http.Request) {
	args := r.URL.Query()
	if unknown := unknownArgs(args); len(unknown) > 0 {
		writeError(w, http.StatusBadRequest, "Unknown arguments: "+strings.Join(unknown, ", "))
		return
	}

	q := types.StatusQuery{
		TxID:    args.Get(TxIDParam),
		BlockID: args.Get(BlockIDParam),
	}
	outcome, err := h.srv.Status(r.Context(), q)
	if err != nil {
		if rej, ok := ledgerstatus.IsRejection(err); ok {
			writeError(w, http.StatusBadRequest, rej.Error())
			return
		}
		h.log.Error("status lookup failed",
			zap.String("txID", q.TxID),
			zap.String("blockID", q.BlockID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !outcome.Found {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, StatusReply{Status: outcome.Status, Links: outcome.LinkMap()})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.srv.Ping(r.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, HealthReply{Healthy: false})
		return
	}
	writeJSON(w, http.StatusOK, HealthReply{Healthy: true})
}

func unknownArgs(args map[string][]string) []string {
	var unknown []string
	for name := range args {
		if name != TxIDParam && name != BlockIDParam {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorReply{Status: code, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
