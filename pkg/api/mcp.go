package api

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/supptracker/compound-registry/pkg/kit"
)

// RegisterMCPTools registers the registry's MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *Service) {
	registerSearchCompounds(srv, svc)
	registerResolveCompound(srv, svc)
	registerCheckInteraction(srv, svc)
	registerCheckStack(srv, svc)
}

func registerSearchCompounds(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("search_compounds",
		mcp.WithDescription("Search the supplement and drug compound catalog by name, synonym, or identifier."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10, max 50)")),
	)

	kit.RegisterMCPTool(srv, tool, searchEndpoint(svc), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		query, _ := args["query"].(string)
		limit := 0
		if v, ok := args["limit"].(float64); ok {
			limit = int(v)
		}
		return &searchReq{Query: query, Limit: limit}, nil
	})
}

func registerResolveCompound(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("resolve_compound",
		mcp.WithDescription("Resolve any compound identifier (canonical id, name, synonym, or external id like pubchem:2519) to its catalog record."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("The identifier to resolve")),
	)

	kit.RegisterMCPTool(srv, tool, resolveEndpoint(svc), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		id, _ := args["identifier"].(string)
		return &resolveReq{Identifier: id}, nil
	})
}

func registerCheckInteraction(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("check_interaction",
		mcp.WithDescription("Check whether two compounds have a known interaction and score its risk."),
		mcp.WithString("a", mcp.Required(), mcp.Description("First compound (any resolvable identifier)")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second compound (any resolvable identifier)")),
	)

	kit.RegisterMCPTool(srv, tool, interactionEndpoint(svc), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		a, _ := args["a"].(string)
		b, _ := args["b"].(string)
		return &interactionReq{A: a, B: b}, nil
	})
}

func registerCheckStack(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("check_stack",
		mcp.WithDescription("Check every pairwise interaction in a supplement stack (up to 25 items) and return a scored matrix."),
		mcp.WithString("items", mcp.Required(), mcp.Description("Comma-separated list of compound identifiers")),
	)

	kit.RegisterMCPTool(srv, tool, stackEndpoint(svc), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		raw, _ := args["items"].(string)
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return &stackReq{Items: items}, nil
	})
}
