package api

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/supptracker/compound-registry/pkg/compound"
	"github.com/supptracker/compound-registry/pkg/interaction"
	"github.com/supptracker/compound-registry/pkg/kit"
)

// errNotFound marks lookups that should surface as HTTP 404 rather than
// a server error.
var errNotFound = errors.New("not found")

const maxStackItems = 25

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Query string
	Limit int
}

type searchResponse struct {
	Query   string               `json:"query"`
	Count   int                  `json:"count"`
	Results []*compound.Compound `json:"results"`
}

type resolveReq struct {
	Identifier string
}

type resolveResponse struct {
	Input    string             `json:"input"`
	ID       string             `json:"id"`
	Compound *compound.Compound `json:"compound"`
}

type interactionReq struct {
	A string
	B string
}

type interactionResponse struct {
	A           string                   `json:"a"`
	B           string                   `json:"b"`
	Found       bool                     `json:"found"`
	Interaction *interaction.Interaction `json:"interaction,omitempty"`
	Assessment  *interaction.Assessment  `json:"assessment,omitempty"`
	Sources     []interaction.Source     `json:"sources,omitempty"`
}

type stackReq struct {
	Items []string
}

type stackResponse struct {
	interaction.StackReport
	Unresolved []string `json:"unresolved,omitempty"`
}

type sourcesResponse struct {
	Sources []interaction.Source `json:"sources"`
}

func searchEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		results := svc.Registry().Search(req.Query, req.Limit)
		return searchResponse{Query: req.Query, Count: len(results), Results: results}, nil
	}
}

func resolveEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		id, ok := svc.Registry().Resolve(req.Identifier)
		if !ok {
			return nil, fmt.Errorf("%w: no compound matches %q", errNotFound, req.Identifier)
		}
		rec, _ := svc.Registry().Get(id)
		return resolveResponse{Input: req.Identifier, ID: id, Compound: rec}, nil
	}
}

func interactionEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*interactionReq)
		a, ok := svc.Registry().Resolve(req.A)
		if !ok {
			return nil, fmt.Errorf("%w: no compound matches %q", errNotFound, req.A)
		}
		b, ok := svc.Registry().Resolve(req.B)
		if !ok {
			return nil, fmt.Errorf("%w: no compound matches %q", errNotFound, req.B)
		}

		set, rules := svc.interactions()
		resp := interactionResponse{A: a, B: b}
		in, found := set.Find(a, b)
		if found {
			assessed := rules.Score(in)
			resp.Found = true
			resp.Interaction = in
			resp.Assessment = &assessed
			resp.Sources = svc.lookupSources(in.SourceIDs)
		}
		return resp, nil
	}
}

func stackEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*stackReq)
		if len(req.Items) < 2 {
			return nil, fmt.Errorf("a stack needs at least 2 items")
		}
		if len(req.Items) > maxStackItems {
			return nil, fmt.Errorf("too many items (max %d, got %d)", maxStackItems, len(req.Items))
		}

		var ids, unresolved []string
		seen := map[string]bool{}
		for _, item := range req.Items {
			id, ok := svc.Registry().Resolve(item)
			if !ok {
				unresolved = append(unresolved, item)
				continue
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		set, rules := svc.interactions()
		return stackResponse{
			StackReport: set.CheckStack(ids, rules),
			Unresolved:  unresolved,
		}, nil
	}
}

func listSourcesEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		m := svc.sourceMap()
		out := make([]interaction.Source, 0, len(m))
		for _, src := range m {
			out = append(out, src)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return sourcesResponse{Sources: out}, nil
	}
}

// lookupSources maps a record's source ids to full references, skipping
// ids the sources dataset does not know.
func (s *Service) lookupSources(ids []string) []interaction.Source {
	m := s.sourceMap()
	var out []interaction.Source
	for _, id := range ids {
		if src, ok := m[id]; ok {
			out = append(out, src)
		}
	}
	return out
}
