// Package kit holds the transport-agnostic plumbing shared by the HTTP
// and MCP surfaces: the Endpoint abstraction, its middleware, and
// request-scoped context helpers.
package kit

import "context"

// Endpoint is one registry action (search, resolve, interaction check)
// detached from any transport. HTTP handlers and MCP tools both
// dispatch into the same Endpoint values.
type Endpoint func(ctx context.Context, request any) (response any, err error)

// Middleware decorates an Endpoint with a cross-cutting concern.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right, so the first argument ends
// up outermost: Chain(a, b)(ep) behaves as a(b(ep)).
func Chain(outer Middleware, rest ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(rest) - 1; i >= 0; i-- {
			next = rest[i](next)
		}
		return outer(next)
	}
}
