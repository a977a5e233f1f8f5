// Package chassis runs the registry's two transports on one port:
// HTTP/1.1 and HTTP/2 over TCP, and QUIC over UDP. Incoming QUIC
// connections are demultiplexed by ALPN — "h3" goes to the HTTP/3
// server, "supp-mcp-v1" to the MCP stream handler.
//
// TCP responses carry an Alt-Svc header so HTTP/2 clients can discover
// and upgrade to HTTP/3 on the same port. Without cert/key files the
// chassis generates a self-signed ECDSA P-256 certificate, which is
// only suitable for development.
package chassis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"github.com/supptracker/compound-registry/pkg/mcpquic"
)

// Server binds the TCP and UDP listeners and owns their lifecycles.
type Server struct {
	addr    string
	logger  *slog.Logger
	tlsCfg  *tls.Config
	handler http.Handler
	mcp     *mcpquic.Handler

	mu   sync.Mutex
	tcp  *http.Server
	h3   *http3.Server
	quic *quic.Listener
}

// Config configures a chassis Server. Addr is used for both the TCP and
// the UDP listener. When TLS is nil, CertFile/KeyFile are loaded if set,
// otherwise a self-signed dev certificate is generated. A nil MCPServer
// disables the MCP ALPN entirely.
type Config struct {
	Addr      string
	TLS       *tls.Config
	CertFile  string
	KeyFile   string
	Handler   http.Handler
	MCPServer *server.MCPServer
	Logger    *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	tlsCfg, err := resolveTLS(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: cfg.Handler,
	}
	if cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

func resolveTLS(cfg Config) (*tls.Config, error) {
	if cfg.TLS != nil {
		return cfg.TLS, nil
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		tlsCfg, err := ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS cert: %w", err)
		}
		cfg.Logger.Info("TLS: certificate loaded", "cert", cfg.CertFile)
		return tlsCfg, nil
	}
	tlsCfg, err := DevelopmentTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("generate dev TLS: %w", err)
	}
	cfg.Logger.Info("TLS: self-signed dev cert generated")
	return tlsCfg, nil
}

// hardenHeaders adds the standard security headers to every response.
func hardenHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// advertiseH3 adds an Alt-Svc header pointing HTTP/3-capable clients at
// the UDP listener on the same port.
func advertiseH3(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "8420"
	}
	altSvc := fmt.Sprintf(`h3=":%s"; ma=86400`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", altSvc)
		next.ServeHTTP(w, r)
	})
}

// Start brings up both listeners and blocks until ctx is cancelled or a
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	handler := hardenHeaders(advertiseH3(s.addr, s.handler))

	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}

	qCfg := &quic.Config{
		MaxStreamReceiveWindow:     10 * 1024 * 1024,
		MaxConnectionReceiveWindow: 50 * 1024 * 1024,
		MaxIdleTimeout:             mcpquic.DefaultIdleTimeout,
		KeepAlivePeriod:            mcpquic.DefaultKeepAlive,
	}
	quicLn, err := quic.ListenAddr(s.addr, s.tlsCfg, qCfg)
	if err != nil {
		return fmt.Errorf("QUIC listen: %w", err)
	}

	s.mu.Lock()
	s.tcp = &http.Server{Addr: s.addr, Handler: handler, TLSConfig: tcpTLS}
	s.h3 = &http3.Server{Handler: handler}
	s.quic = quicLn
	s.mu.Unlock()

	s.logger.Info("chassis listening", "addr", s.addr,
		"tcp", "HTTP/1.1+HTTP/2", "udp", "HTTP/3+MCP")

	errCh := make(chan error, 2)
	go s.serveTCP(tcpTLS, errCh)
	go s.demuxQUIC(ctx, quicLn, errCh)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) serveTCP(tlsCfg *tls.Config, errCh chan<- error) {
	ln, err := tls.Listen("tcp", s.addr, tlsCfg)
	if err != nil {
		errCh <- fmt.Errorf("TCP listen: %w", err)
		return
	}
	if err := s.tcp.Serve(ln); err != nil && err != http.ErrServerClosed {
		errCh <- fmt.Errorf("TCP serve: %w", err)
	}
}

func (s *Server) demuxQUIC(ctx context.Context, ln *quic.Listener, errCh chan<- error) {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() == nil {
				errCh <- fmt.Errorf("QUIC accept: %w", err)
			}
			return
		}

		switch alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn {
		case "h3":
			go func() {
				if err := s.h3.ServeQUICConn(conn); err != nil {
					s.logger.Debug("HTTP/3 conn closed", "remote", conn.RemoteAddr(), "error", err)
				}
			}()
		case mcpquic.ALPNProtocolMCP:
			if s.mcp == nil {
				conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "MCP not enabled")
				continue
			}
			go s.mcp.ServeConn(ctx, conn)
		default:
			s.logger.Warn("rejecting unknown ALPN", "alpn", alpn, "remote", conn.RemoteAddr())
			conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
		}
	}
}

// Stop shuts down all listeners, draining in-flight HTTP requests until
// ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.tcp != nil {
		if err := s.tcp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.quic != nil {
		if err := s.quic.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.h3 != nil {
		if err := s.h3.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Info("chassis stopped")
	return firstErr
}
