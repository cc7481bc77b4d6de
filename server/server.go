package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

// Compile-time interface check.
var _ ledgerstatus.Service = (*Server)(nil)

// Server answers status queries against a ledger. Transports
// interact with the ledger exclusively through this server.
type Server struct {
	ledger ledgerstatus.Ledger
	// Optional capability (nil if not supported).
	pinger ledgerstatus.Pinger

	log        *zap.Logger
	registerer prometheus.Registerer
	metrics    *serverMetrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger queries are logged to.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithRegisterer sets the registerer the server's metrics are
// registered on. By default a private registry is used.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Server) { s.registerer = registerer }
}

// New creates a new Server over the given ledger.
func New(ledger ledgerstatus.Ledger, opts ...Option) (*Server, error) {
	s := &Server{
		ledger: ledger,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registerer == nil {
		s.registerer = prometheus.NewRegistry()
	}

	m, err := newMetrics(s.registerer)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	s.pinger, _ = ledger.(ledgerstatus.Pinger)
	return s, nil
}

// Status validates q and resolves the status of the entity it names.
// Safe for concurrent use.
func (s *Server) Status(ctx context.Context, q types.StatusQuery) (types.Outcome, error) {
	id, err := Validate(q.TxID, q.BlockID)
	if err != nil {
		s.metrics.queries.WithLabelValues(kindNone, outcomeRejected).Inc()
		s.log.Debug("status query rejected",
			zap.Bool("txID", q.TxID != ""),
			zap.Bool("blockID", q.BlockID != ""),
		)
		return types.Outcome{}, err
	}

	kind := id.Kind.String()
	outcome, err := s.resolve(ctx, id)
	if err != nil {
		s.metrics.queries.WithLabelValues(kind, outcomeError).Inc()
		s.log.Warn("status lookup failed",
			zap.String("kind", kind),
			zap.String("id", id.ID),
			zap.Error(err),
		)
		return types.Outcome{}, err
	}

	result := outcomeFound
	if !outcome.Found {
		result = outcomeNotFound
	}
	s.metrics.queries.WithLabelValues(kind, result).Inc()
	s.log.Debug("status queried",
		zap.String("kind", kind),
		zap.String("id", id.ID),
		zap.String("outcome", result),
		zap.Stringer("status", outcome.Status),
	)
	return outcome, nil
}

func (s *Server) resolve(ctx context.Context, id types.Identifier) (types.Outcome, error) {
	s.metrics.inflight.Inc()
	defer s.metrics.inflight.Dec()

	start := time.Now()
	defer func() {
		s.metrics.duration.WithLabelValues(id.Kind.String()).Observe(time.Since(start).Seconds())
	}()

	return Resolve(ctx, id, s.ledger)
}

// Ping reports whether the ledger is reachable. Ledgers that do not
// implement ledgerstatus.Pinger are assumed healthy.
func (s *Server) Ping(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger.Ping(ctx)
}

// Close is a no-op for the server wrapper.
func (s *Server) Close() error { return nil }
