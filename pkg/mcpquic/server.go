package mcpquic

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"

	"github.com/supptracker/compound-registry/pkg/kit"
)

// Handler serves MCP sessions on QUIC connections handed to it by an
// accept loop it does not own. The chassis feeds it connections after
// ALPN demuxing; Listener below wraps it for standalone use.
type Handler struct {
	srv    *server.MCPServer
	logger *slog.Logger
}

func NewHandler(srv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{srv: srv, logger: logger}
}

func newSessionID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "quic_" + hex.EncodeToString(b)
}

// ServeConn runs one MCP session over conn, blocking until the stream
// closes or ctx is cancelled.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Error("MCP stream accept failed", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "stream accept failed")
		return
	}

	// Clients that negotiated our ALPN but speak something else get cut
	// off before any JSON-RPC is parsed.
	if err := ValidateMagicBytes(stream); err != nil {
		h.logger.Error("MCP preamble rejected", "remote", remote, "error", err)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		stream.CancelRead(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid magic bytes")
		return
	}

	id := newSessionID()
	h.logger.Info("MCP session open", "session", id, "remote", remote)

	sess := newSession(id, stream)
	if err := h.srv.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("session register failed", "session", id, "error", err)
		stream.Close()
		return
	}
	defer h.srv.UnregisterSession(ctx, id)

	ctx = kit.WithTransport(ctx, "mcp_quic")
	ctx = h.srv.WithContext(ctx, sess)

	go sess.pumpNotifications(ctx)

	h.readLoop(ctx, id, stream)
	h.logger.Info("MCP session closed", "session", id, "remote", remote)
}

// readLoop consumes newline-delimited JSON-RPC messages from the stream
// and writes each response back followed by a newline.
func (h *Handler) readLoop(ctx context.Context, id string, stream *quic.Stream) {
	r := bufio.NewReader(stream)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				h.logger.Error("MCP read failed", "session", id, "error", err)
			}
			return
		}

		line = line[:len(line)-1]
		if len(line) == 0 {
			continue
		}

		resp := h.srv.HandleMessage(ctx, json.RawMessage(line))
		if resp == nil {
			continue
		}

		out, err := json.Marshal(resp)
		if err != nil {
			h.logger.Error("MCP response marshal failed", "session", id, "error", err)
			continue
		}
		if _, err := stream.Write(append(out, '\n')); err != nil {
			h.logger.Error("MCP write failed", "session", id, "error", err)
			return
		}
	}
}

// Listener owns a dedicated QUIC listener for MCP traffic, for running
// the MCP transport without the full chassis.
type Listener struct {
	ln      *quic.Listener
	handler *Handler
	logger  *slog.Logger
}

func NewListener(addr string, tlsCfg *tls.Config, srv *server.MCPServer, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := quic.ListenAddr(addr, tlsCfg, ProductionQUICConfig())
	if err != nil {
		return nil, err
	}
	logger.Info("MCP QUIC listener ready", "addr", addr)
	return &Listener{ln: ln, handler: NewHandler(srv, logger), logger: logger}, nil
}

func (l *Listener) Serve(ctx context.Context) error {
	for {
		conn, err := l.ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("QUIC accept failed", "error", err)
			continue
		}

		if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
			conn.CloseWithError(ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
			continue
		}
		go l.handler.ServeConn(ctx, conn)
	}
}

func (l *Listener) Close() error { return l.ln.Close() }

// session is the server.ClientSession for one QUIC stream.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
	stream        *quic.Stream
	writeMu       sync.Mutex
}

func newSession(id string, stream *quic.Stream) *session {
	return &session{
		id:            id,
		notifications: make(chan mcp.JSONRPCNotification, 100),
		stream:        stream,
	}
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

// pumpNotifications forwards server-initiated notifications onto the
// stream until ctx is cancelled.
func (s *session) pumpNotifications(ctx context.Context) {
	for {
		select {
		case notif := <-s.notifications:
			out, err := json.Marshal(notif)
			if err != nil {
				continue
			}
			s.writeMu.Lock()
			_, _ = s.stream.Write(append(out, '\n'))
			s.writeMu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
