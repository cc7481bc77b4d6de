package rest

import (
	"context"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const maxConcurrentStreams = 64

// HTTPConfig holds the timeouts of the HTTP server.
type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

// Server serves an http.Handler on a listener with CORS and host
// filtering applied.
type Server struct {
	log             *zap.Logger
	shutdownTimeout time.Duration
	srv             *http.Server
	listener        net.Listener
}

// NewServer returns a server for handler. It does not start serving
// until Dispatch is called.
func NewServer(
	log *zap.Logger,
	listener net.Listener,
	handler http.Handler,
	allowedOrigins []string,
	allowedHosts []string,
	shutdownTimeout time.Duration,
	httpConfig HTTPConfig,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	httpServer := &http.Server{
		Handler: h2c.NewHandler(
			wrapHandler(handler, allowedOrigins, allowedHosts),
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	log.Info("API created",
		zap.String("addr", listener.Addr().String()),
		zap.Strings("allowedOrigins", allowedOrigins),
	)
	return &Server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		srv:             httpServer,
		listener:        listener,
	}
}

// Dispatch serves until Shutdown is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Shutdown stops the server, waiting up to the shutdown timeout for
// in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(handler http.Handler, allowedOrigins, allowedHosts []string) http.Handler {
	h := filterInvalidHosts(handler, allowedHosts)
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(h)
}

// filterInvalidHosts rejects requests whose Host is neither an IP
// address nor in allowedHosts. A "*" entry allows every host.
func filterInvalidHosts(handler http.Handler, allowedHosts []string) http.Handler {
	allowed := make([]string, 0, len(allowedHosts))
	for _, host := range allowedHosts {
		if host == "*" {
			return handler
		}
		allowed = append(allowed, strings.ToLower(host))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if host == "" || net.ParseIP(host) != nil || slices.Contains(allowed, strings.ToLower(host)) {
			handler.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusForbidden, "Forbidden host")
	})
}
