package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

const readHeaderTimeout = 10 * time.Second

// Server wraps the listening HTTP server, serving TLS when a certificate
// and key are configured.
type Server struct {
	Addr string

	httpServer  *http.Server
	tlsCertFile string
	tlsKeyFile  string
}

func NewServer(imposterConfig *config.ImposterConfig, handler http.Handler) *Server {
	addr := ":" + imposterConfig.ServerPort
	return &Server{
		Addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		tlsCertFile: imposterConfig.TLSCertFile,
		tlsKeyFile:  imposterConfig.TLSKeyFile,
	}
}

// ListenAndServe listens on the configured address and blocks until the
// server is shut down. A graceful shutdown returns nil.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l until the server is shut down.
func (s *Server) Serve(l net.Listener) error {
	var err error
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		logger.Infof("server is listening on %s (TLS)...", l.Addr())
		err = s.httpServer.ServeTLS(l, s.tlsCertFile, s.tlsKeyFile)
	} else {
		logger.Infof("server is listening on %s...", l.Addr())
		err = s.httpServer.Serve(l)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests,
// including delayed responses, until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
