package mcpquic

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/quic-go/quic-go"
)

// Client dials an MCP server over QUIC and exposes the usual tool calls.
type Client struct {
	addr   string
	tlsCfg *tls.Config
	conn   *quic.Conn
	stream *quic.Stream
	mcp    *client.Client
}

// NewClient prepares a client for addr. A nil tlsCfg falls back to an
// insecure dev config that skips certificate verification.
func NewClient(addr string, tlsCfg *tls.Config) *Client {
	if tlsCfg == nil {
		tlsCfg = ClientTLSConfig(true)
	}
	return &Client{addr: addr, tlsCfg: tlsCfg}
}

// Connect dials, opens the stream, sends the magic-byte preamble, and
// runs the MCP initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}

	mcpClient := client.NewClient(transport.NewIO(c.stream, streamWriter{c.stream}, eofReader{}))
	if err := mcpClient.Start(ctx); err != nil {
		c.closeTransport()
		return fmt.Errorf("mcp start: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "compound-registry-quic-client",
		Version: "1.0.0",
	}

	initCtx, cancel := context.WithTimeout(ctx, DefaultHandshakeTimeout)
	defer cancel()
	if _, err := mcpClient.Initialize(initCtx, initReq); err != nil {
		c.closeTransport()
		return fmt.Errorf("mcp initialize: %w", err)
	}

	c.mcp = mcpClient
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, err := quic.DialAddr(ctx, c.addr, c.tlsCfg, ProductionQUICConfig())
	if err != nil {
		return fmt.Errorf("quic dial %s: %w", c.addr, err)
	}

	if alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn != ALPNProtocolMCP {
		conn.CloseWithError(ConnErrorUnsupportedALPN, "bad ALPN")
		return fmt.Errorf("%w: got %q", ErrUnsupportedALPN, alpn)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(ConnErrorProtocolViolation, "stream open failed")
		return fmt.Errorf("open stream: %w", err)
	}

	if err := SendMagicBytes(stream); err != nil {
		stream.Close()
		conn.CloseWithError(ConnErrorProtocolViolation, "magic bytes failed")
		return err
	}

	c.conn = conn
	c.stream = stream
	return nil
}

func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	if c.mcp == nil {
		return nil, ErrConnectionClosed
	}
	return c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
}

func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if c.mcp == nil {
		return nil, ErrConnectionClosed
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return c.mcp.CallTool(ctx, req)
}

func (c *Client) Ping(ctx context.Context) error {
	if c.mcp == nil {
		return ErrConnectionClosed
	}
	return c.mcp.Ping(ctx)
}

func (c *Client) Close() error {
	if c.mcp != nil {
		c.mcp.Close()
	}
	return c.closeTransport()
}

func (c *Client) closeTransport() error {
	if c.stream != nil {
		c.stream.Close()
	}
	if c.conn != nil {
		c.conn.CloseWithError(ConnErrorNoError, "client closing")
	}
	return nil
}

// Underlying exposes the wrapped MCP client for callers that need the
// full API surface.
func (c *Client) Underlying() *client.Client { return c.mcp }

// streamWriter adapts the write half of the QUIC stream for the MCP IO
// transport, which takes reader and writer as separate values.
type streamWriter struct{ stream *quic.Stream }

func (w streamWriter) Write(p []byte) (int, error) { return w.stream.Write(p) }
func (w streamWriter) Close() error                { return w.stream.Close() }

// eofReader fills the transport's stderr reader slot.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
func (eofReader) Close() error             { return nil }
