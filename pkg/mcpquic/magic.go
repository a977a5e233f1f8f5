package mcpquic

import (
	"bytes"
	"fmt"
	"io"
)

// SendMagicBytes writes the "MCP1" preamble. Clients send it as the
// first bytes on a freshly opened stream, before any JSON-RPC.
func SendMagicBytes(w io.Writer) error {
	if _, err := w.Write([]byte(MagicBytesMCP)); err != nil {
		return fmt.Errorf("write magic bytes: %w", err)
	}
	return nil
}

// ValidateMagicBytes consumes the preamble from r and checks it.
func ValidateMagicBytes(r io.Reader) error {
	buf := make([]byte, len(MagicBytesMCP))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read magic bytes: %w", err)
	}
	if !bytes.Equal(buf, []byte(MagicBytesMCP)) {
		return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, buf)
	}
	return nil
}
