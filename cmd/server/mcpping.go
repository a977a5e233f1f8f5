package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/supptracker/compound-registry/pkg/mcpquic"
)

// cmdMCPPing dials a running server's QUIC transport, lists the MCP
// tools it advertises, and verifies the session with a ping. Useful for
// checking that the UDP side of the chassis is reachable.
func cmdMCPPing(args []string) {
	fs := flag.NewFlagSet("mcp-ping", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8420", "server address (host:port)")
	insecure := fs.Bool("insecure", true, "skip TLS certificate verification")
	timeout := fs.Duration("timeout", 15*time.Second, "overall timeout")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := mcpquic.NewClient(*addr, mcpquic.ClientTLSConfig(*insecure))
	if err := client.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ping: %v\n", err)
		os.Exit(1)
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list tools: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d tools\n", *addr, len(tools.Tools))
	for _, tool := range tools.Tools {
		fmt.Printf("  %-20s %s\n", tool.Name, tool.Description)
	}
}
