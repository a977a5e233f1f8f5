package mcpquic

import (
	"errors"

	"github.com/quic-go/quic-go"
)

// Stream-level error codes used when resetting a misbehaving stream.
const (
	StreamErrorNoError           quic.StreamErrorCode = 0x00
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
)

// Connection-level error codes sent with CloseWithError.
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
)

var (
	ErrInvalidMagicBytes = errors.New("invalid magic bytes: expected MCP1")
	ErrUnsupportedALPN   = errors.New("ALPN negotiation failed: supp-mcp-v1 not selected")
	ErrConnectionClosed  = errors.New("QUIC connection closed")
)
